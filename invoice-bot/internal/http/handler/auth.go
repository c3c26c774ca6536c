package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	jwtToken "notaFacilBot/invoice-bot/internal/pkg/jwt"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"

	"github.com/google/uuid"
)

const SessionCookieName = "session_token"

type SessionStore interface {
	Create(ctx context.Context) (uuid.UUID, *collectorservice.Collector, error)
	Get(id uuid.UUID) (*collectorservice.Collector, error)
	Close(id uuid.UUID) error
}

type HistorySearcher interface {
	Search(ctx context.Context, query string, period string) (historyservice.Result, error)
}

var errNoToken = errors.New("no session token")

// sessionFromRequest достаёт токен из заголовка Authorization либо из куки.
func sessionFromRequest(r *http.Request, secret []byte) (uuid.UUID, error) {
	token := ""

	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}

	if token == "" {
		cookie, err := r.Cookie(SessionCookieName)
		if err == nil {
			token = cookie.Value
		}
	}

	if token == "" {
		return uuid.Nil, errNoToken
	}

	sessionId, err := jwtToken.VerifyToken(token, secret)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(sessionId)
	if err != nil {
		return uuid.Nil, jwtToken.ErrInvalidToken
	}

	return id, nil
}

// collectorFromRequest проверяет токен и находит коллектор. При ошибке ответ уже записан.
func collectorFromRequest(
	w http.ResponseWriter,
	r *http.Request,
	store SessionStore,
	secret []byte,
) (*collectorservice.Collector, bool) {
	id, err := sessionFromRequest(r, secret)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil, false
	}

	c, err := store.Get(id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}

	return c, true
}
