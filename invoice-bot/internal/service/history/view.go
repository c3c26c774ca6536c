package historyservice

import (
	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
)

// InvoiceView - запись истории в том виде, в каком её показывают пользователю.
type InvoiceView struct {
	Id             string  `json:"id"`
	Description    string  `json:"description"`
	Client         string  `json:"client"`
	Value          float64 `json:"value"`
	ValueFormatted string  `json:"value_formatted"`
	Date           string  `json:"date"`
	DateFormatted  string  `json:"date_formatted"`
	Status         string  `json:"status"`
	StatusLabel    string  `json:"status_label"`
}

func NewView(inv invoicemodel.Invoice) InvoiceView {
	return InvoiceView{
		Id:             inv.Id,
		Description:    inv.Description,
		Client:         inv.Client,
		Value:          inv.Value,
		ValueFormatted: FormatCurrency(inv.Value),
		Date:           inv.Date.Format(invoicemodel.DateLayout),
		DateFormatted:  FormatDate(inv.Date),
		Status:         string(inv.Status),
		StatusLabel:    inv.Status.Label(),
	}
}

func (r Result) Views() []InvoiceView {
	views := make([]InvoiceView, 0, len(r.Invoices))
	for _, inv := range r.Invoices {
		views = append(views, NewView(inv))
	}

	return views
}
