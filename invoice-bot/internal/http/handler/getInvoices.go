package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"
)

type EmptyState struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type GetInvoicesResponse struct {
	Invoices   []historyservice.InvoiceView `json:"invoices"`
	Query      string                       `json:"query"`
	Period     historyservice.Period        `json:"period"`
	QueryEmpty bool                         `json:"query_empty"`
	EmptyState *EmptyState                  `json:"empty_state,omitempty"`
}

func GetInvoicesHandler(
	log *slog.Logger,
	history HistorySearcher,
) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.GetInvoicesHandler"

		log := log.With(slog.String("op", op))

		q := r.URL.Query()

		result, err := history.Search(r.Context(), q.Get("q"), q.Get("period"))
		if err != nil {
			if errors.Is(err, historyservice.ErrInvalidPeriod) {
				http.Error(w, "invalid period", http.StatusBadRequest)
				return
			}

			log.Error("failed to search history", sl.Err(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		response := GetInvoicesResponse{
			Invoices:   result.Views(),
			Query:      result.Query,
			Period:     result.Period,
			QueryEmpty: result.QueryEmpty,
		}

		if result.Empty() {
			response.EmptyState = &EmptyState{
				Title:   historyservice.EmptyStateTitle,
				Message: result.EmptyStateMessage(),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Error("failed to encode response", sl.Err(err))
		}
	}
}
