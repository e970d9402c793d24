package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/labmanager/labmanager-api/models"
	"github.com/labmanager/labmanager-api/utils"
)

// ErrNoDeliveryDate is returned for orders whose delivery date cannot be scheduled
var ErrNoDeliveryDate = errors.New("order has no valid delivery date")

const calendarBaseURL = "https://calendar.google.com/calendar/render?action=TEMPLATE"

// CalendarLink builds a Google Calendar link for an all-day delivery event
func CalendarLink(o models.Order) (string, error) {
	if !utils.IsISODate(o.DeliveryDate) {
		return "", ErrNoDeliveryDate
	}

	day := strings.ReplaceAll(o.DeliveryDate, "-", "")
	notes := o.Notes
	if notes == "" {
		notes = "-"
	}

	title := fmt.Sprintf("Entrega: %s (%s)", o.PatientName, o.ServiceType)
	details := fmt.Sprintf("Dentista: %s\nServiço: %s\nValor: %s\nObs: %s",
		o.DentistName, o.ServiceType, utils.FormatMoney(o.Value), notes)

	return calendarBaseURL +
		"&text=" + escapeComponent(title) +
		"&dates=" + day + "/" + day +
		"&details=" + escapeComponent(details), nil
}

// escapeComponent percent-encodes a query value using %20 for spaces
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
