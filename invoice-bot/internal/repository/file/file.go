package file

import (
	"errors"
	"fmt"
	"io"
	"os"

	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
	"notaFacilBot/invoice-bot/internal/repository/memory"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Path string `yaml:"path" env:"HISTORY_FILE" env-default:"./config/history.yaml"`
}

type record struct {
	Id          string  `yaml:"id"`
	Description string  `yaml:"description"`
	Value       float64 `yaml:"value"`
	Date        string  `yaml:"date"`
	Status      string  `yaml:"status"`
	Client      string  `yaml:"client"`
}

type document struct {
	Invoices []record `yaml:"invoices"`
}

// Decode читает историю в формате YAML. Статус допускается в pt-BR.
func Decode(r io.Reader) ([]invoicemodel.Invoice, error) {
	const op = "file.Decode"

	var doc document

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]invoicemodel.Invoice, 0, len(doc.Invoices))

	for _, rec := range doc.Invoices {
		date, err := invoicemodel.ParseDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %s: bad date %q", op, invoicemodel.ErrInvalidRecord, rec.Id, rec.Date)
		}

		out = append(out, invoicemodel.Invoice{
			Id:          rec.Id,
			Description: rec.Description,
			Value:       rec.Value,
			Date:        date,
			Status:      invoicemodel.Status(rec.Status),
			Client:      rec.Client,
		})
	}

	return out, nil
}

// Load читает файл целиком и валидирует каждую запись.
func Load(path string) (*memory.Repository, error) {
	const op = "file.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repo, err := memory.New(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return repo, nil
}
