package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"
)

func UpdateNotificationsHandler(
	log *slog.Logger,
	store SessionStore,
	secret []byte,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.UpdateNotificationsHandler"

		log := log.With(slog.String("op", op))

		c, ok := collectorFromRequest(w, r, store, secret)
		if !ok {
			return
		}

		var req collectorservice.Notifications
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Info("failed to decode request body", sl.Err(err))
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		c.SetNotifications(req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(c.Snapshot()); err != nil {
			log.Error("failed to encode response", sl.Err(err))
			return
		}

		log.Info("notification preferences updated",
			slog.String("session_id", c.ID()),
			slog.Bool("email", req.Email),
			slog.Bool("whatsapp", req.WhatsApp))
	}
}
