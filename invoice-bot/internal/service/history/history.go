package historyservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
	"notaFacilBot/invoice-bot/internal/pkg/logger/sl"
)

// Repository - источник истории. Реализация может сузить выборку по Criteria,
// окончательную фильтрацию всегда делает Filter.
type Repository interface {
	Query(ctx context.Context, c Criteria) ([]invoicemodel.Invoice, error)
}

type History struct {
	log  *slog.Logger
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

func New(log *slog.Logger, repo Repository, loc *time.Location) *History {
	if loc == nil {
		loc = time.UTC
	}

	return &History{
		log:  log,
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// WithClock подменяет часы. Используется в тестах и CLI (--today).
func (h *History) WithClock(now func() time.Time) *History {
	h.now = now

	return h
}

func (h *History) Search(ctx context.Context, query string, period string) (Result, error) {
	const op = "History.Search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("query", query),
		slog.String("period", period),
	)

	p, err := ParsePeriod(period)
	if err != nil {
		log.Info("invalid period")

		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	c := Criteria{Query: query, Period: p}

	records, err := h.repo.Query(ctx, c)
	if err != nil {
		log.Error("failed to query history", sl.Err(err))

		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	invoices := Filter(records, c, h.now().In(h.loc))

	log.Debug("history filtered", slog.Int("total", len(records)), slog.Int("matched", len(invoices)))

	return Result{
		Invoices:   invoices,
		Query:      query,
		Period:     p,
		QueryEmpty: query == "",
	}, nil
}
