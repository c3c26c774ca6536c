package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"
)

type KeyPressRequest struct {
	Key   string  `json:"key"`
	Shift bool    `json:"shift"`
	Input *string `json:"input,omitempty"`
}

type KeyPressResponse struct {
	Submitted bool                   `json:"submitted"`
	State     collectorservice.State `json:"state"`
}

// KeyPressHandler повторяет поведение поля ввода: input синхронизирует буфер,
// Enter отправляет, Shift+Enter переносит строку.
func KeyPressHandler(
	log *slog.Logger,
	store SessionStore,
	secret []byte,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.KeyPressHandler"

		log := log.With(slog.String("op", op))

		c, ok := collectorFromRequest(w, r, store, secret)
		if !ok {
			return
		}

		var req KeyPressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Info("failed to decode request body", sl.Err(err))
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		if req.Key == "" {
			http.Error(w, "key is required", http.StatusBadRequest)
			return
		}

		if req.Input != nil {
			c.SetInput(*req.Input)
		}

		response := KeyPressResponse{
			Submitted: c.KeyPress(req.Key, req.Shift),
			State:     c.Snapshot(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("failed to encode response", sl.Err(err))
		}
	}
}
