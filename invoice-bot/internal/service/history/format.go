package historyservice

import (
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatCurrency форматирует сумму в реалах по правилам pt-BR.
func FormatCurrency(value float64) string {
	return ptBR.Sprint(currency.Symbol(currency.BRL.Amount(value)))
}

func FormatDate(date time.Time) string {
	return date.Format("02/01/2006")
}
