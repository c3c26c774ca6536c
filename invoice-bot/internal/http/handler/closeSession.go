package handler

import (
	"log/slog"
	"net/http"
)

func CloseSessionHandler(
	log *slog.Logger,
	store SessionStore,
	secret []byte,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.CloseSessionHandler"

		log := log.With(slog.String("op", op))

		id, err := sessionFromRequest(r, secret)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := store.Close(id); err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})

		w.WriteHeader(http.StatusNoContent)

		log.Info("session closed", slog.String("session_id", id.String()))
	}
}
