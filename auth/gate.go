// Package auth holds the session gate state machine, the sign-in failure
// taxonomy and the JWT claims shared by the HTTP and stream surfaces.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the authentication status of one session
type State string

const (
	StateUnknown         State = "unknown"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// ErrInvalidTransition is returned when a gate event does not apply to the current state
var ErrInvalidTransition = errors.New("invalid auth gate transition")

// Identity is the signed-in user carried by a session
type Identity struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Gate tracks one session from bootstrap to sign-out.
//
//	unknown --Resolve--> authenticated | unauthenticated
//	unauthenticated --SignedIn--> authenticated
//	authenticated --SignOut--> unauthenticated
//
// Nothing ever returns to unknown.
type Gate struct {
	mu       sync.Mutex
	state    State
	identity *Identity
}

// NewGate returns a gate in the unknown state
func NewGate() *Gate {
	return &Gate{state: StateUnknown}
}

// State returns the current state
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Identity returns the signed-in user, or nil outside the authenticated state
func (g *Gate) Identity() *Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.identity
}

// Resolve applies the session-restoration result. A nil identity means no
// session could be restored. It is accepted only once, while unknown.
func (g *Gate) Resolve(id *Identity) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateUnknown {
		return fmt.Errorf("%w: resolve from %s", ErrInvalidTransition, g.state)
	}
	if id == nil {
		g.state = StateUnauthenticated
		return nil
	}
	g.state = StateAuthenticated
	g.identity = id
	return nil
}

// SignedIn records a successful credential check
func (g *Gate) SignedIn(id *Identity) error {
	if id == nil {
		return fmt.Errorf("%w: sign-in without identity", ErrInvalidTransition)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateUnauthenticated {
		return fmt.Errorf("%w: sign-in from %s", ErrInvalidTransition, g.state)
	}
	g.state = StateAuthenticated
	g.identity = id
	return nil
}

// SignOut ends an authenticated session and returns the identity that left
func (g *Gate) SignOut() (*Identity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateAuthenticated {
		return nil, fmt.Errorf("%w: sign-out from %s", ErrInvalidTransition, g.state)
	}
	id := g.identity
	g.state = StateUnauthenticated
	g.identity = nil
	return id, nil
}
