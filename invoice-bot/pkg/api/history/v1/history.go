package historyv1

import (
	"google.golang.org/protobuf/types/known/structpb"
)

type FilterRequest struct {
	Query  string
	Period string
}

type Invoice struct {
	Id             string
	Description    string
	Client         string
	Value          float64
	ValueFormatted string
	Date           string
	DateFormatted  string
	Status         string
	StatusLabel    string
}

type FilterResponse struct {
	Invoices        []Invoice
	QueryEmpty      bool
	EmptyStateTitle string
	EmptyState      string
}

func (r *FilterRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"query":  r.Query,
		"period": r.Period,
	})
}

func FilterRequestFromStruct(s *structpb.Struct) *FilterRequest {
	fields := s.GetFields()

	return &FilterRequest{
		Query:  fields["query"].GetStringValue(),
		Period: fields["period"].GetStringValue(),
	}
}

func (r *FilterResponse) ToStruct() (*structpb.Struct, error) {
	invoices := make([]interface{}, 0, len(r.Invoices))

	for _, inv := range r.Invoices {
		invoices = append(invoices, map[string]interface{}{
			"id":              inv.Id,
			"description":     inv.Description,
			"client":          inv.Client,
			"value":           inv.Value,
			"value_formatted": inv.ValueFormatted,
			"date":            inv.Date,
			"date_formatted":  inv.DateFormatted,
			"status":          inv.Status,
			"status_label":    inv.StatusLabel,
		})
	}

	return structpb.NewStruct(map[string]interface{}{
		"invoices":          invoices,
		"query_empty":       r.QueryEmpty,
		"empty_state_title": r.EmptyStateTitle,
		"empty_state":       r.EmptyState,
	})
}

func FilterResponseFromStruct(s *structpb.Struct) *FilterResponse {
	fields := s.GetFields()

	resp := &FilterResponse{
		QueryEmpty:      fields["query_empty"].GetBoolValue(),
		EmptyStateTitle: fields["empty_state_title"].GetStringValue(),
		EmptyState:      fields["empty_state"].GetStringValue(),
	}

	for _, v := range fields["invoices"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()

		resp.Invoices = append(resp.Invoices, Invoice{
			Id:             f["id"].GetStringValue(),
			Description:    f["description"].GetStringValue(),
			Client:         f["client"].GetStringValue(),
			Value:          f["value"].GetNumberValue(),
			ValueFormatted: f["value_formatted"].GetStringValue(),
			Date:           f["date"].GetStringValue(),
			DateFormatted:  f["date_formatted"].GetStringValue(),
			Status:         f["status"].GetStringValue(),
			StatusLabel:    f["status_label"].GetStringValue(),
		})
	}

	return resp
}
