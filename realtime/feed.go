// Package realtime pushes live collection snapshots to connected clients:
// latest-value feeds, the cross-instance change relay and the WebSocket sessions.
package realtime

import (
	"context"
	"sync"
)

// Source is a live collection a session can follow. The channel delivers
// whole snapshots; cancel stops delivery and closes it.
type Source[T any] interface {
	Subscribe(ctx context.Context) (<-chan T, func(), error)
}

// Feed is a push-based observable of full snapshots. Every watcher gets the
// most recent snapshot on subscription and afterwards only ever the newest
// one: a slow watcher skips intermediate snapshots instead of queueing them.
type Feed[T any] struct {
	mu       sync.Mutex
	latest   T
	has      bool
	watchers map[uint64]chan T
	nextID   uint64
}

// NewFeed creates a feed with no snapshot yet
func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{watchers: make(map[uint64]chan T)}
}

// Publish replaces the latest snapshot and hands it to every watcher
func (f *Feed[T]) Publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = v
	f.has = true
	for _, ch := range f.watchers {
		deliver(ch, v)
	}
}

// deliver swaps the pending value of a one-slot channel for v.
// Only Publish and Watch send, both under the feed lock, so it never blocks.
func deliver[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}

// Latest returns the last published snapshot
func (f *Feed[T]) Latest() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.has
}

// Watch registers a watcher. The returned cancel func is idempotent.
func (f *Feed[T]) Watch() (<-chan T, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	ch := make(chan T, 1)
	f.watchers[id] = ch
	if f.has {
		ch <- f.latest
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.watchers, id)
			close(ch)
			f.mu.Unlock()
		})
	}
}

// Watchers returns the number of registered watchers
func (f *Feed[T]) Watchers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}
