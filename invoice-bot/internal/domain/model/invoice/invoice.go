package invoicemodel

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Status string

const (
	StatusIssued     Status = "issued"
	StatusSent       Status = "sent"
	StatusProcessing Status = "processing"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidRecord = errors.New("invalid invoice record")
	ErrUnknownStatus = errors.New("unknown invoice status")
)

var idPattern = regexp.MustCompile(`^NF-\d{3,}$`)

// Invoice - запись истории. Только для чтения.
type Invoice struct {
	Id          string    `json:"id"`
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	Date        time.Time `json:"date"`
	Status      Status    `json:"status"`
	Client      string    `json:"client"`
}

// ParseStatus принимает как английские значения, так и подписи со страницы.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "issued", "emitida":
		return StatusIssued, nil
	case "sent", "enviada":
		return StatusSent, nil
	case "processing", "processando":
		return StatusProcessing, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

func (s Status) Label() string {
	switch s {
	case StatusIssued:
		return "emitida"
	case StatusSent:
		return "enviada"
	case StatusProcessing:
		return "processando"
	default:
		return string(s)
	}
}

// NewDate возвращает календарную дату (полночь UTC).
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// FormatId собирает номер вида NF-001.
func FormatId(seq int) string {
	return fmt.Sprintf("NF-%03d", seq)
}

func (i Invoice) Validate() error {
	if !idPattern.MatchString(i.Id) {
		return fmt.Errorf("%w: id %q does not match NF-<seq>", ErrInvalidRecord, i.Id)
	}
	if i.Value < 0 {
		return fmt.Errorf("%w: %s has negative value", ErrInvalidRecord, i.Id)
	}
	if i.Date.IsZero() {
		return fmt.Errorf("%w: %s has no date", ErrInvalidRecord, i.Id)
	}
	if _, err := ParseStatus(string(i.Status)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRecord, i.Id, err)
	}
	if strings.TrimSpace(i.Client) == "" {
		return fmt.Errorf("%w: %s has empty client", ErrInvalidRecord, i.Id)
	}

	return nil
}

// Normalize приводит статус к каноническому виду и дату к календарному дню.
func (i Invoice) Normalize() (Invoice, error) {
	if err := i.Validate(); err != nil {
		return Invoice{}, err
	}

	st, _ := ParseStatus(string(i.Status))
	i.Status = st
	i.Date = NewDate(i.Date.Year(), i.Date.Month(), i.Date.Day())

	return i, nil
}
