// Package board computes the live order board: payment totals, lateness and
// the search/mode filter over the most recent order snapshot.
package board

import (
	"strings"

	"github.com/labmanager/labmanager-api/models"
	"github.com/shopspring/decimal"
)

// Mode selects which side of the production line is shown
type Mode string

const (
	ModeActive    Mode = "active"
	ModeCompleted Mode = "completed"
)

// ParseMode maps a query value to a Mode, defaulting to active.
// The page names used by the shell (pedidos, historico) are accepted too.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "active", "ativos", "pedidos":
		return ModeActive, true
	case "completed", "concluidos", "historico":
		return ModeCompleted, true
	}
	return ModeActive, false
}

// Summary holds the aggregates of the unfiltered order set
type Summary struct {
	Received    decimal.Decimal `json:"received"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Late        int             `json:"late"`
}

// IsLate reports whether an order still in production has passed its promised date.
// Dates are compared as YYYY-MM-DD strings, whose lexical order is calendar order.
func IsLate(o models.Order, today string) bool {
	return !o.IsReady() && o.DeliveryDate < today
}

// Summarize computes the received and outstanding totals and the late count
func Summarize(orders []models.Order, today string) Summary {
	s := Summary{Received: decimal.Zero, Outstanding: decimal.Zero}
	for _, o := range orders {
		if o.Paid {
			s.Received = s.Received.Add(o.Value)
		} else {
			s.Outstanding = s.Outstanding.Add(o.Value)
		}
		if IsLate(o, today) {
			s.Late++
		}
	}
	return s
}
