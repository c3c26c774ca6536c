package memory

import (
	"context"
	"fmt"

	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"
)

// Repository хранит провалидированную историю в памяти.
type Repository struct {
	records []invoicemodel.Invoice
}

// New валидирует записи при загрузке: первая же некорректная запись - ошибка.
func New(records []invoicemodel.Invoice) (*Repository, error) {
	const op = "memory.New"

	normalized := make([]invoicemodel.Invoice, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, r := range records {
		n, err := r.Normalize()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if _, ok := seen[n.Id]; ok {
			return nil, fmt.Errorf("%s: %w: duplicate id %s", op, invoicemodel.ErrInvalidRecord, n.Id)
		}
		seen[n.Id] = struct{}{}
		normalized = append(normalized, n)
	}

	return &Repository{records: normalized}, nil
}

// Query отдаёт копию всей истории, фильтрация выполняется сервисом.
func (r *Repository) Query(_ context.Context, _ historyservice.Criteria) ([]invoicemodel.Invoice, error) {
	out := make([]invoicemodel.Invoice, len(r.records))
	copy(out, r.records)

	return out, nil
}

func (r *Repository) Len() int {
	return len(r.records)
}
