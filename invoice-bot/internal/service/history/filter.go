package historyservice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	invoicemodel "notaFacilBot/invoice-bot/internal/domain/model/invoice"
)

type Period string

const (
	PeriodAll       Period = "all"
	PeriodYesterday Period = "yesterday"
	PeriodLastWeek  Period = "lastWeek"
)

var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod понимает также "week" - так период назывался на странице.
func ParsePeriod(s string) (Period, error) {
	switch strings.TrimSpace(s) {
	case "", "all":
		return PeriodAll, nil
	case "yesterday":
		return PeriodYesterday, nil
	case "lastWeek", "week", "last_week":
		return PeriodLastWeek, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

type Criteria struct {
	Query  string
	Period Period
}

// Filter возвращает записи, прошедшие и текстовый фильтр, и фильтр по периоду.
// Порядок входа сохраняется, records не изменяется. "Сегодня" считается по now
// в его собственной таймзоне.
func Filter(records []invoicemodel.Invoice, c Criteria, now time.Time) []invoicemodel.Invoice {
	query := strings.ToLower(c.Query)
	today := calendarDay(now)

	out := make([]invoicemodel.Invoice, 0, len(records))
	for _, r := range records {
		if !matchesQuery(r, query) {
			continue
		}
		if !inPeriod(r.Date, c.Period, today) {
			continue
		}
		out = append(out, r)
	}

	return out
}

func matchesQuery(r invoicemodel.Invoice, query string) bool {
	if query == "" {
		return true
	}

	return strings.Contains(strings.ToLower(r.Description), query) ||
		strings.Contains(strings.ToLower(r.Client), query) ||
		strings.Contains(strings.ToLower(r.Id), query)
}

func inPeriod(date time.Time, p Period, today time.Time) bool {
	day := invoicemodel.NewDate(date.Year(), date.Month(), date.Day())

	switch p {
	case PeriodYesterday:
		return day.Equal(today.AddDate(0, 0, -1))
	case PeriodLastWeek:
		return !day.Before(today.AddDate(0, 0, -7))
	case PeriodAll, "":
		return true
	default:
		// неизвестный период ничего не пропускает
		return false
	}
}

func calendarDay(t time.Time) time.Time {
	return invoicemodel.NewDate(t.Year(), t.Month(), t.Day())
}
