package board

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/labmanager/labmanager-api/models"
	"github.com/labmanager/labmanager-api/utils"
)

// Row is one rendered order on the board
type Row struct {
	models.Order
	Late                bool   `json:"late"`
	DeliveryDateDisplay string `json:"delivery_date_display"`
	ValueDisplay        string `json:"value_display"`
}

// View is what the board renders for one search/mode combination
type View struct {
	Mode    Mode    `json:"mode"`
	Query   string  `json:"query"`
	Today   string  `json:"today"`
	Summary Summary `json:"summary"`
	Count   int     `json:"count"`
	Orders  []Row   `json:"orders"`
	Loaded  bool    `json:"loaded"`
}

// Board keeps the latest order snapshot. Each snapshot replaces the previous
// one as a whole, so a view never mixes records from two snapshots.
type Board struct {
	snapshot atomic.Pointer[[]models.Order]
	location *time.Location
	now      func() time.Time
}

// Option configures a Board
type Option func(*Board)

// WithLocation sets the timezone used to decide what "today" is
func WithLocation(loc *time.Location) Option {
	return func(b *Board) { b.location = loc }
}

// WithClock overrides the time source, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

// New creates an empty board
func New(opts ...Option) *Board {
	b := &Board{location: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Replace swaps in a new snapshot
func (b *Board) Replace(orders []models.Order) {
	snap := make([]models.Order, len(orders))
	copy(snap, orders)
	b.snapshot.Store(&snap)
}

// Snapshot returns the current snapshot and whether one has arrived yet
func (b *Board) Snapshot() ([]models.Order, bool) {
	p := b.snapshot.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Today returns the board's current date as YYYY-MM-DD
func (b *Board) Today() string {
	return utils.Today(b.now(), b.location)
}

// Run replaces the snapshot on every emission until ctx is done or the
// source channel is closed.
func (b *Board) Run(ctx context.Context, snapshots <-chan []models.Order) {
	for {
		select {
		case <-ctx.Done():
			return
		case orders, ok := <-snapshots:
			if !ok {
				return
			}
			b.Replace(orders)
		}
	}
}

// View renders the current snapshot for a query and mode
func (b *Board) View(query string, mode Mode) View {
	orders, loaded := b.Snapshot()
	v := Build(orders, query, mode, b.Today())
	v.Loaded = loaded
	return v
}

// Build computes a view over an arbitrary snapshot
func Build(orders []models.Order, query string, mode Mode, today string) View {
	filtered := Filter(orders, query, mode)
	rows := make([]Row, 0, len(filtered))
	for _, o := range filtered {
		rows = append(rows, Row{
			Order:               o,
			Late:                IsLate(o, today),
			DeliveryDateDisplay: utils.FormatDate(o.DeliveryDate),
			ValueDisplay:        utils.FormatMoney(o.Value),
		})
	}
	return View{
		Mode:    mode,
		Query:   query,
		Today:   today,
		Summary: Summarize(orders, today),
		Count:   len(rows),
		Orders:  rows,
		Loaded:  true,
	}
}
