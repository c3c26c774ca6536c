package memory

import (
	"context"
	"errors"
	"testing"

	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
	historyservice "notaFacilBot/invoice-bot/internal/service/history"
)

func TestNewRejectsInvalidRecords(t *testing.T) {
	records := Fixture()
	records[1].Value = -10

	if _, err := New(records); !errors.Is(err, invoicemodel.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestNewRejectsDuplicateIds(t *testing.T) {
	records := Fixture()
	records[2].Id = records[0].Id

	if _, err := New(records); !errors.Is(err, invoicemodel.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
}

func TestQueryReturnsCopy(t *testing.T) {
	repo := NewFixture()

	got, err := repo.Query(context.Background(), historyservice.Criteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}

	got[0].Client = "changed"

	again, _ := repo.Query(context.Background(), historyservice.Criteria{})
	if again[0].Client != "Empresa XYZ Ltda" {
		t.Error("repository state must not be mutated through query results")
	}
}
