// Package app assembles the lab manager: stores, live feeds, the auth
// gate and the HTTP routes that expose them.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/go-redis/redis/v8"
	"github.com/labmanager/labmanager-api/auth"
	"github.com/labmanager/labmanager-api/board"
	"github.com/labmanager/labmanager-api/config"
	"github.com/labmanager/labmanager-api/realtime"
	"github.com/labmanager/labmanager-api/services"
	"github.com/labmanager/labmanager-api/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries the optional backends. A nil Redis client keeps caches and
// change notices in process; a nil Objects store disables the label archive.
type Options struct {
	Redis   *redis.Client
	Objects services.ObjectStore
}

// App holds every long-lived component of one API instance
type App struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *zap.Logger

	Orders   *store.OrderStore
	Dentists *store.DentistStore
	Board    *board.Board
	Auth     *services.AuthService
	Labels   *services.LabelService
	Hub      *realtime.Hub
	InFlight *services.InFlight

	validator *validator.Validator
	profiles  services.ProfileFetcher
	relay     realtime.Relay
	cancel    context.CancelFunc
	cleanup   []func()
	wg        sync.WaitGroup
}

// New wires the components together. Nothing runs until Start is called.
func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger, opts Options) (*App, error) {
	var (
		cache services.Cache = services.NewMemoryCache()
		relay realtime.Relay = realtime.NopRelay{}
	)
	if opts.Redis != nil {
		cache = services.NewRedisCache(opts.Redis)
		relay = realtime.NewRedisRelay(opts.Redis, logger)
	}

	v, err := auth.NewValidator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up token validation: %w", err)
	}

	lab := &App{
		cfg:       cfg,
		db:        db,
		logger:    logger,
		Orders:    store.NewOrderStore(db, relay, logger),
		Dentists:  store.NewDentistStore(db, relay, logger),
		Board:     board.New(board.WithLocation(cfg.Location())),
		Auth:      services.NewAuthService(db, cache, auth.NewIssuer(cfg), v, cfg, logger),
		Labels:    services.NewLabelService(cfg.LabName, opts.Objects, logger),
		Hub:       realtime.NewHub(logger),
		InFlight:  services.NewInFlight(),
		validator: v,
		relay:     relay,
	}
	if cfg.UsesAuth0() {
		lab.profiles = services.NewAuth0Service(cfg)
	}
	return lab, nil
}

// Start seeds the admin account, loads the first snapshots and keeps the
// board and the feeds current until Close is called.
func (a *App) Start(ctx context.Context) error {
	if a.cfg.AdminEmail != "" && a.cfg.AdminPassword != "" && !a.cfg.UsesAuth0() {
		if err := a.Auth.SeedAdmin(ctx, a.cfg.AdminEmail, a.cfg.AdminPassword); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	orders, stopOrders, err := a.Orders.Subscribe(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to load orders: %w", err)
	}
	a.cleanup = append(a.cleanup, stopOrders)

	if err := a.Dentists.Refresh(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to load dentists: %w", err)
	}

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.Board.Run(ctx, orders)
	}()
	go func() {
		defer a.wg.Done()
		if err := a.relay.Listen(ctx, a.onRemoteChange(ctx)); err != nil {
			a.logger.Error("Change relay stopped", zap.Error(err))
		}
	}()
	return nil
}

// onRemoteChange re-queries a collection another instance has written to
func (a *App) onRemoteChange(ctx context.Context) func(collection string) {
	return func(collection string) {
		var err error
		switch collection {
		case realtime.CollectionOrders:
			err = a.Orders.Refresh(ctx)
		case realtime.CollectionDentists:
			err = a.Dentists.Refresh(ctx)
		default:
			a.logger.Warn("Ignoring change notice for unknown collection", zap.String("collection", collection))
			return
		}
		if err != nil {
			a.logger.Error("Failed to refresh after remote change", zap.String("collection", collection), zap.Error(err))
		}
	}
}

// DentistCount is the size of the latest directory snapshot
func (a *App) DentistCount() int {
	dentists, _ := a.Dentists.Latest()
	return len(dentists)
}

// StreamDeps are the collaborators handed to every stream session
func (a *App) StreamDeps() realtime.Deps {
	return realtime.Deps{
		Auth:     a.Auth,
		Orders:   a.Orders,
		Dentists: a.Dentists,
		Today:    a.Board.Today,
		Logger:   a.logger,
	}
}

// Close disconnects stream clients and stops the background loops
func (a *App) Close() {
	a.Hub.CloseAll()
	for _, fn := range a.cleanup {
		fn()
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
}
