package memory

import (
	"time"

	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
)

func Fixture() []invoicemodel.Invoice {
	return []invoicemodel.Invoice{
		{
			Id:          "NF-001",
			Description: "Consultoria em marketing digital",
			Value:       2000,
			Date:        invoicemodel.NewDate(2024, time.January, 29),
			Status:      invoicemodel.StatusIssued,
			Client:      "Empresa XYZ Ltda",
		},
		{
			Id:          "NF-002",
			Description: "Desenvolvimento de website",
			Value:       5500,
			Date:        invoicemodel.NewDate(2024, time.January, 28),
			Status:      invoicemodel.StatusSent,
			Client:      "Tech Solutions",
		},
		{
			Id:          "NF-003",
			Description: "Auditoria de sistemas",
			Value:       1200,
			Date:        invoicemodel.NewDate(2024, time.January, 25),
			Status:      invoicemodel.StatusIssued,
			Client:      "Inovação Corp",
		},
	}
}

// NewFixture - репозиторий со встроенной демонстрационной историей.
func NewFixture() *Repository {
	r, err := New(Fixture())
	if err != nil {
		panic(err)
	}

	return r
}
