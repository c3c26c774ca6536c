package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	draftmodel "notaFacilBot/invoice-bot/internal/domain/model/draft"
	"notaFacilBot/invoice-bot/internal/repository/memory"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"
	sessionservice "notaFacilBot/invoice-bot/internal/service/session"

	"github.com/google/uuid"
)

var testSecret = []byte("handler-secret")

type heldTask struct{}

func (heldTask) Stop() bool { return true }

// heldScheduler никогда не запускает задачи: коллектор остаётся в "раздумьях".
type heldScheduler struct{}

func (heldScheduler) AfterFunc(time.Duration, func()) collectorservice.Task { return heldTask{} }

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := sessionservice.New(log, func(id uuid.UUID) (*collectorservice.Collector, error) {
		return collectorservice.New(log, id.String(), draftmodel.DefaultSchema(), collectorservice.Config{}, heldScheduler{}, nil)
	}, time.Hour)

	brt := time.FixedZone("BRT", -3*60*60)
	history := historyservice.New(log, memory.NewFixture(), brt).
		WithClock(func() time.Time { return time.Date(2024, time.January, 30, 12, 0, 0, 0, brt) })

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sessions", CreateSessionHandler(log, store, testSecret, time.Hour))
	mux.HandleFunc("GET /api/sessions/state", GetSessionStateHandler(log, store, testSecret))
	mux.HandleFunc("POST /api/sessions/answer", SubmitAnswerHandler(log, store, testSecret))
	mux.HandleFunc("POST /api/sessions/keypress", KeyPressHandler(log, store, testSecret))
	mux.HandleFunc("PUT /api/sessions/notifications", UpdateNotificationsHandler(log, store, testSecret))
	mux.HandleFunc("DELETE /api/sessions", CloseSessionHandler(log, store, testSecret))
	mux.HandleFunc("GET /api/invoices", GetInvoicesHandler(log, history))

	return mux
}

func do(t *testing.T, mux http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return v
}

func TestSessionRoundTrip(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/sessions", "", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	created := decode[CreateSessionResponse](t, rec)
	if created.Token == "" || created.SessionID == "" {
		t.Fatalf("token and session id are required: %+v", created)
	}
	if len(created.State.Messages) != 1 || !created.State.Messages[0].IsFromAssistant {
		t.Fatalf("expected greeting, got %+v", created.State.Messages)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookieName {
		t.Errorf("expected session cookie, got %v", cookies)
	}

	token := created.Token

	// пустой ответ молча игнорируется
	rec = do(t, mux, http.MethodPost, "/api/sessions/answer", token, `{"text":"   "}`)
	if got := decode[SubmitAnswerResponse](t, rec); got.Accepted {
		t.Error("blank answer must not be accepted")
	}

	rec = do(t, mux, http.MethodPost, "/api/sessions/answer", token, `{"text":"Consultoria"}`)
	answer := decode[SubmitAnswerResponse](t, rec)
	if !answer.Accepted {
		t.Fatal("answer must be accepted")
	}
	if answer.State.Phase != collectorservice.PhaseThinking || !answer.State.Disabled {
		t.Errorf("expected disabled thinking state, got %+v", answer.State)
	}
	if answer.State.Draft[draftmodel.FieldService] != "Consultoria" {
		t.Errorf("draft was not updated: %v", answer.State.Draft)
	}

	// пока ассистент "думает", ввод закрыт
	rec = do(t, mux, http.MethodPost, "/api/sessions/keypress", token, `{"key":"Enter","input":"ACME"}`)
	if got := decode[KeyPressResponse](t, rec); got.Submitted {
		t.Error("input must be disabled while thinking")
	}

	rec = do(t, mux, http.MethodPut, "/api/sessions/notifications", token, `{"email":true,"whatsapp":false}`)
	if got := decode[collectorservice.State](t, rec); !got.Notifications.Email || got.Notifications.WhatsApp {
		t.Errorf("unexpected notifications %+v", got.Notifications)
	}

	rec = do(t, mux, http.MethodGet, "/api/sessions/state", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := decode[collectorservice.State](t, rec); len(got.Messages) != 2 {
		t.Errorf("expected 2 messages, got %d", len(got.Messages))
	}

	rec = do(t, mux, http.MethodDelete, "/api/sessions", token, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = do(t, mux, http.MethodGet, "/api/sessions/state", token, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after close, got %d", rec.Code)
	}
}

func TestKeyPressShiftEnter(t *testing.T) {
	mux := newTestMux(t)

	created := decode[CreateSessionResponse](t, do(t, mux, http.MethodPost, "/api/sessions", "", ""))

	rec := do(t, mux, http.MethodPost, "/api/sessions/keypress", created.Token, `{"key":"Enter","shift":true,"input":"linha 1"}`)
	got := decode[KeyPressResponse](t, rec)
	if got.Submitted {
		t.Fatal("Shift+Enter must not submit")
	}
	if got.State.Input != "linha 1\n" {
		t.Errorf("expected newline appended, got %q", got.State.Input)
	}

	rec = do(t, mux, http.MethodPost, "/api/sessions/keypress", created.Token, `{"key":"Enter"}`)
	if got := decode[KeyPressResponse](t, rec); !got.Submitted {
		t.Error("Enter must submit the buffer")
	}
}

func TestSessionUnauthorized(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name  string
		token string
	}{
		{"без токена", ""},
		{"мусорный токен", "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodGet, "/api/sessions/state", tt.token, "")
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestSessionTokenFromCookie(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/sessions", "", "")
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/state", nil)
	req.AddCookie(cookie)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestGetInvoices(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name       string
		target     string
		wantCode   int
		wantIds    []string
		wantEmpty  string
		queryEmpty bool
	}{
		{
			name:       "вся история",
			target:     "/api/invoices",
			wantCode:   http.StatusOK,
			wantIds:    []string{"NF-001", "NF-002", "NF-003"},
			queryEmpty: true,
		},
		{
			name:     "поиск по клиенту",
			target:   "/api/invoices?q=TECH",
			wantCode: http.StatusOK,
			wantIds:  []string{"NF-002"},
		},
		{
			name:       "вчера",
			target:     "/api/invoices?period=yesterday",
			wantCode:   http.StatusOK,
			wantIds:    []string{"NF-001"},
			queryEmpty: true,
		},
		{
			name:      "ничего не найдено",
			target:    "/api/invoices?q=inexistente",
			wantCode:  http.StatusOK,
			wantEmpty: historyservice.EmptyStateRefineHint,
		},
		{
			name:     "неизвестный период",
			target:   "/api/invoices?period=month",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodGet, tt.target, "", "")
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			got := decode[GetInvoicesResponse](t, rec)

			if len(got.Invoices) != len(tt.wantIds) {
				t.Fatalf("expected %v, got %+v", tt.wantIds, got.Invoices)
			}
			for i, id := range tt.wantIds {
				if got.Invoices[i].Id != id {
					t.Errorf("position %d: expected %s, got %s", i, id, got.Invoices[i].Id)
				}
			}

			if got.QueryEmpty != tt.queryEmpty {
				t.Errorf("query_empty = %v, want %v", got.QueryEmpty, tt.queryEmpty)
			}

			if tt.wantEmpty == "" {
				if got.EmptyState != nil {
					t.Errorf("unexpected empty state %+v", got.EmptyState)
				}
				return
			}
			if got.EmptyState == nil || got.EmptyState.Message != tt.wantEmpty {
				t.Errorf("expected empty state %q, got %+v", tt.wantEmpty, got.EmptyState)
			}
		})
	}
}
