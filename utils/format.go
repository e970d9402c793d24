package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brazil = message.NewPrinter(language.BrazilianPortuguese)

const (
	// ISODateLayout is the storage layout of every calendar date in the system
	ISODateLayout = "2006-01-02"

	// MissingDate is displayed when an order carries no delivery date
	MissingDate = "--/--"
	// InvalidDate is displayed when a stored date cannot be read
	InvalidDate = "Data Inv."
)

// IsISODate reports whether s is a valid YYYY-MM-DD calendar date
func IsISODate(s string) bool {
	if len(s) != len(ISODateLayout) {
		return false
	}
	_, err := time.Parse(ISODateLayout, s)
	return err == nil
}

// Today returns the current calendar date in loc as YYYY-MM-DD
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(ISODateLayout)
}

// FormatDate renders a stored YYYY-MM-DD date as DD/MM/YYYY.
// Malformed values degrade to a placeholder instead of failing.
func FormatDate(date string) string {
	if date == "" {
		return MissingDate
	}
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return InvalidDate
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// FormatMoney renders an amount in Brazilian reais, e.g. R$ 1.234,50
func FormatMoney(value decimal.Decimal) string {
	amount := currency.BRL.Amount(value.Abs().InexactFloat64())
	formatted := brazil.Sprint(currency.Symbol(amount))
	if value.IsNegative() {
		return "-" + formatted
	}
	return formatted
}
