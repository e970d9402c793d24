package forms

import (
	"strings"
	"time"

	"github.com/labmanager/labmanager-api/models"
)

// DentistForm is the state of the dentist directory form. A non-zero ID
// means a record is loaded and the form is editing it.
type DentistForm struct {
	ID      uint   `json:"id,omitempty"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// EditDentistForm loads a stored dentist into the form
func EditDentistForm(d models.Dentist) DentistForm {
	return DentistForm{
		ID:      d.ID,
		Name:    d.Name,
		Phone:   d.Phone,
		Email:   d.Email,
		Address: d.Address,
		City:    d.City,
	}
}

// Mode reports whether the form creates or edits
func (f DentistForm) Mode() FormMode {
	if f.ID != 0 {
		return ModeEdit
	}
	return ModeCreate
}

// Validate checks the required fields
func (f DentistForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Message: "Name is required"}
	}
	return nil
}

// Build produces the record to store. Creating sets the registration and
// update timestamps to the same instant; editing only moves the update one.
func (f DentistForm) Build(existing *models.Dentist, now time.Time) (models.Dentist, error) {
	if err := f.Validate(); err != nil {
		return models.Dentist{}, err
	}

	d := models.Dentist{
		Name:      f.Name,
		Phone:     MaskPhone(f.Phone),
		Email:     f.Email,
		Address:   f.Address,
		City:      f.City,
		UpdatedAt: now,
	}
	if existing == nil {
		d.RegisteredAt = now
		return d, nil
	}
	d.ID = existing.ID
	d.RegisteredAt = existing.RegisteredAt
	return d, nil
}
