package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	jwtToken "notaFacilBot/invoice-bot/internal/pkg/jwt"
	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"
)

type CreateSessionResponse struct {
	Token     string                 `json:"token"`
	SessionID string                 `json:"session_id"`
	State     collectorservice.State `json:"state"`
}

func CreateSessionHandler(
	log *slog.Logger,
	store SessionStore,
	secret []byte,
	tokenTTL time.Duration,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.CreateSessionHandler"

		log := log.With(slog.String("op", op))

		id, c, err := store.Create(r.Context())
		if err != nil {
			log.Error("failed to create session", sl.Err(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		token, err := jwtToken.New(id.String(), tokenTTL, secret)
		if err != nil {
			log.Error("failed to sign token", sl.Err(err))
			_ = store.Close(id)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(tokenTTL),
		})

		response := CreateSessionResponse{
			Token:     token,
			SessionID: id.String(),
			State:     c.Snapshot(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("failed to encode response", sl.Err(err))
			return
		}

		log.Info("session started", slog.String("session_id", id.String()))
	}
}
