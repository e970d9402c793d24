package forms

import (
	"strings"
	"time"

	"github.com/labmanager/labmanager-api/models"
	"github.com/labmanager/labmanager-api/utils"
)

// OrderForm is the state of the order create/edit form. Clients receive it
// from the API, fill it in and post it back on submit.
type OrderForm struct {
	Mode          FormMode           `json:"mode"`
	OrderID       uint               `json:"order_id,omitempty"`
	DentistName   string             `json:"dentist_name"`
	PatientName   string             `json:"patient_name"`
	ServiceSelect string             `json:"service_select"` // catalog value or OUTRO
	ServiceManual string             `json:"service_manual"`
	ManualService bool               `json:"manual_service"`
	DeliveryDate  string             `json:"delivery_date" binding:"omitempty,isodate"`
	Value         Amount             `json:"value"`
	Notes         string             `json:"notes"`
	Status        models.OrderStatus `json:"status"`
	Paid          bool               `json:"paid"`
}

// NewOrderForm returns a blank form in create mode
func NewOrderForm() OrderForm {
	return OrderForm{
		Mode:   ModeCreate,
		Status: models.StatusInProduction,
	}
}

// EditOrderForm loads a stored order into the form. A service type outside
// the catalog switches the form to manual entry so the stored text survives.
func EditOrderForm(o models.Order) OrderForm {
	f := OrderForm{
		Mode:         ModeEdit,
		OrderID:      o.ID,
		DentistName:  o.DentistName,
		PatientName:  o.PatientName,
		DeliveryDate: o.DeliveryDate,
		Value:        AmountOf(o.Value),
		Notes:        o.Notes,
		Status:       o.Status,
		Paid:         o.Paid,
	}
	if models.InCatalog(o.ServiceType) {
		f.ServiceSelect = o.ServiceType
	} else {
		f.ServiceSelect = models.OtherService
		f.ServiceManual = o.ServiceType
		f.ManualService = true
	}
	return f
}

// SelectService applies a choice from the service select
func (f *OrderForm) SelectService(option string) {
	if option == models.OtherService {
		f.ManualService = true
		f.ServiceSelect = models.OtherService
		f.ServiceManual = ""
		return
	}
	f.ManualService = false
	f.ServiceSelect = option
	f.ServiceManual = ""
}

// Service returns the service type the form currently holds
func (f OrderForm) Service() string {
	if f.ManualService {
		return f.ServiceManual
	}
	if f.ServiceSelect == models.OtherService {
		return ""
	}
	return f.ServiceSelect
}

// Validate checks the form before anything is sent to storage
func (f OrderForm) Validate() error {
	if strings.TrimSpace(f.Service()) == "" {
		return &ValidationError{Field: "service_type", Message: "Service type is required"}
	}
	if f.DeliveryDate != "" && !utils.IsISODate(f.DeliveryDate) {
		return &ValidationError{Field: "delivery_date", Message: "Delivery date must use the YYYY-MM-DD format"}
	}
	if f.Value.Decimal().IsNegative() {
		return &ValidationError{Field: "value", Message: "Value must not be negative"}
	}
	if f.Status != "" && !f.Status.Valid() {
		return &ValidationError{Field: "status", Message: "Status must be em_producao or pronto"}
	}
	return nil
}

// Build validates the form and produces the record to store. When existing
// is nil a new order is stamped with now; otherwise the stored creation
// timestamp and identifier are kept and every other field is overwritten.
func (f OrderForm) Build(existing *models.Order, now time.Time) (models.Order, error) {
	if err := f.Validate(); err != nil {
		return models.Order{}, err
	}

	o := models.Order{
		DentistName:  f.DentistName,
		PatientName:  f.PatientName,
		ServiceType:  f.Service(),
		DeliveryDate: f.DeliveryDate,
		Value:        f.Value.Decimal(),
		Notes:        f.Notes,
		Status:       f.Status,
		Paid:         f.Paid,
	}

	if existing == nil {
		if o.Status == "" {
			o.Status = models.StatusInProduction
		}
		o.CreatedAt = now
		return o, nil
	}

	o.ID = existing.ID
	o.CreatedAt = existing.CreatedAt
	if o.Status == "" {
		o.Status = existing.Status
	}
	return o, nil
}
