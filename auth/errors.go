package auth

import "errors"

var (
	// ErrInvalidCredential means the email/password pair was rejected
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrRateLimited means too many failed attempts locked the account for a while
	ErrRateLimited = errors.New("too many failed sign-in attempts")
	// ErrSignInDisabled means sign-in is delegated to an external identity provider
	ErrSignInDisabled = errors.New("password sign-in is disabled")
)

// Reason classifies a failed sign-in for the login form
type Reason string

const (
	ReasonInvalidCredential Reason = "invalid_credential"
	ReasonRateLimited       Reason = "rate_limited"
	ReasonOther             Reason = "other"
)

// Failure is the inline error shown after a rejected sign-in
type Failure struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Classify maps a sign-in error to one of the three user-facing failures
func Classify(err error) Failure {
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return Failure{Reason: ReasonInvalidCredential, Message: "E-mail ou senha incorretos."}
	case errors.Is(err, ErrRateLimited):
		return Failure{Reason: ReasonRateLimited, Message: "Muitas tentativas falhas. Tente mais tarde."}
	default:
		return Failure{Reason: ReasonOther, Message: "Erro ao acessar. Verifique seus dados."}
	}
}
