package forms

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary input as typed by the user. It accepts a JSON string
// or number and is only interpreted when the form is submitted.
type Amount string

// UnmarshalJSON keeps the raw text of numbers and strings alike
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(data)
	return nil
}

// Decimal parses the amount, returning zero when it cannot be read.
// A lone comma is taken as the decimal separator ("500,50").
func (a Amount) Decimal() decimal.Decimal {
	s := strings.TrimSpace(string(a))
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// AmountOf renders a stored value back into form input, blank for zero
func AmountOf(d decimal.Decimal) Amount {
	if d.IsZero() {
		return ""
	}
	return Amount(d.String())
}
