package services

import (
	"errors"
	"sync"
)

// ErrBusy is returned while the same submission is still running
var ErrBusy = errors.New("operation already in progress")

// InFlight is the busy flag of the forms: a key stays held from submit until
// the storage round trip finishes, and a second submit for it is refused.
type InFlight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewInFlight creates an empty guard
func NewInFlight() *InFlight {
	return &InFlight{active: make(map[string]struct{})}
}

// Acquire marks key busy. The returned release must be called when the
// operation ends, successfully or not.
func (g *InFlight) Acquire(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return nil, ErrBusy
	}
	g.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether key is currently held
func (g *InFlight) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[key]
	return busy
}
