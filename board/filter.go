package board

import (
	"strings"

	"github.com/labmanager/labmanager-api/models"
)

// Matches reports whether query is a case-insensitive substring of the
// patient, dentist or service of the order. An empty query matches everything.
func Matches(o models.Order, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(o.PatientName), q) ||
		strings.Contains(strings.ToLower(o.DentistName), q) ||
		strings.Contains(strings.ToLower(o.ServiceType), q)
}

// InMode reports whether the order belongs to the given board mode
func InMode(o models.Order, mode Mode) bool {
	if mode == ModeCompleted {
		return o.IsReady()
	}
	return !o.IsReady()
}

// Filter applies the text match and then the mode filter, keeping the input order
func Filter(orders []models.Order, query string, mode Mode) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if !Matches(o, query) {
			continue
		}
		if !InMode(o, mode) {
			continue
		}
		out = append(out, o)
	}
	return out
}
