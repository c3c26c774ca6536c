package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
)

func GetSessionStateHandler(
	log *slog.Logger,
	store SessionStore,
	secret []byte,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.GetSessionStateHandler"

		log := log.With(slog.String("op", op))

		c, ok := collectorFromRequest(w, r, store, secret)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(c.Snapshot()); err != nil {
			log.Error("failed to encode response", sl.Err(err))
		}
	}
}
