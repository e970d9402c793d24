package realtime

import (
	"time"

	"github.com/labmanager/labmanager-api/auth"
	"github.com/labmanager/labmanager-api/models"
)

// Server frame types
const (
	TypeSession     = "session"
	TypeBoard       = "board"
	TypeDentists    = "dentists"
	TypeSignInError = "sign_in_error"
	TypeError       = "error"
)

// Client frame types
const (
	TypeAuth    = "auth"
	TypeSignIn  = "sign_in"
	TypeSignOut = "sign_out"
	TypeFilter  = "filter"
)

// Envelope wraps every frame sent to the client
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientFrame is any frame a client may send
type ClientFrame struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Query    string `json:"query,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// SessionPayload reports the gate state after every transition
type SessionPayload struct {
	State auth.State     `json:"state"`
	User  *auth.Identity `json:"user,omitempty"`
	Token string         `json:"token,omitempty"`
}

// DentistsPayload is the live dentist directory
type DentistsPayload struct {
	Count    int              `json:"count"`
	Dentists []models.Dentist `json:"dentists"`
}

// ErrorPayload describes a rejected client frame
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
