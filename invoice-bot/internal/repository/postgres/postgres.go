package postgres

import (
	"context"
	"fmt"
	"time"

	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.User,
		c.Pass,
		c.Host,
		c.Port,
		c.DBName,
	)
}

func NewConnPool(config *Config) (*pgxpool.Pool, error) {
	pgxPollConfig, err := pgxpool.ParseConfig(config.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.MaxConns > 0 {
		pgxPollConfig.MaxConns = int32(config.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPollConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	err = pool.Ping(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return pool, nil
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

const selectInvoices = `
	SELECT id, description, value, issued_on, status, client
	FROM invoices
	ORDER BY position`

// Query отдаёт всю историю в порядке загрузки. Поиск по подстроке и период
// применяет сервис истории: регистр в БД зависит от LC_CTYPE.
func (r *Repository) Query(ctx context.Context, _ historyservice.Criteria) ([]invoicemodel.Invoice, error) {
	const op = "postgres.Query"

	rows, err := r.db.Query(ctx, selectInvoices)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records, err := pgx.CollectRows(rows, scanInvoice)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]invoicemodel.Invoice, 0, len(records))
	for _, rec := range records {
		n, err := rec.Normalize()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, n)
	}

	return out, nil
}

func scanInvoice(row pgx.CollectableRow) (invoicemodel.Invoice, error) {
	var (
		inv    invoicemodel.Invoice
		date   time.Time
		status string
	)

	if err := row.Scan(&inv.Id, &inv.Description, &inv.Value, &date, &status, &inv.Client); err != nil {
		return invoicemodel.Invoice{}, err
	}

	inv.Date = invoicemodel.NewDate(date.Year(), date.Month(), date.Day())
	inv.Status = invoicemodel.Status(status)

	return inv, nil
}
