// Package forms holds the create/edit form logic for orders and dentists:
// input validation, value parsing and the form state handed back to clients.
package forms

// FormMode tells whether a form creates a new record or edits a loaded one
type FormMode string

const (
	ModeCreate FormMode = "create"
	ModeEdit   FormMode = "edit"
)

// ValidationError represents a form field that blocks submission
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
