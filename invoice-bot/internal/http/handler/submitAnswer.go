package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
	collectorservice "notaFacilBot/invoice-bot/internal/service/collector"
)

type SubmitAnswerRequest struct {
	Text string `json:"text"`
}

type SubmitAnswerResponse struct {
	Accepted bool                   `json:"accepted"`
	State    collectorservice.State `json:"state"`
}

func SubmitAnswerHandler(
	log *slog.Logger,
	store SessionStore,
	secret []byte,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.SubmitAnswerHandler"

		log := log.With(slog.String("op", op))

		c, ok := collectorFromRequest(w, r, store, secret)
		if !ok {
			return
		}

		var req SubmitAnswerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Info("failed to decode request body", sl.Err(err))
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}

		// пустой ответ и ответ во время генерации не ошибка, просто не принимаются
		accepted := c.SubmitAnswer(req.Text)

		response := SubmitAnswerResponse{
			Accepted: accepted,
			State:    c.Snapshot(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("failed to encode response", sl.Err(err))
			return
		}

		log.Debug("answer handled", slog.Bool("accepted", accepted), slog.String("session_id", c.ID()))
	}
}
