package historyservice

import (
	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
)

const (
	EmptyStateTitle      = "Nenhuma nota fiscal encontrada"
	EmptyStateRefineHint = "Tente ajustar sua pesquisa"
	EmptyStateNoInvoices = "Você ainda não emitiu nenhuma nota fiscal"
)

type Result struct {
	Invoices   []invoicemodel.Invoice `json:"invoices"`
	Query      string                 `json:"query"`
	Period     Period                 `json:"period"`
	QueryEmpty bool                   `json:"query_empty"`
}

func (r Result) Empty() bool {
	return len(r.Invoices) == 0
}

// EmptyStateMessage - подсказка для пустого списка. Для непустого результата "".
func (r Result) EmptyStateMessage() string {
	if !r.Empty() {
		return ""
	}
	if r.QueryEmpty {
		return EmptyStateNoInvoices
	}

	return EmptyStateRefineHint
}
