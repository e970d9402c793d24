package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/labmanager/labmanager-api/models"
	"github.com/labmanager/labmanager-api/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderStore reads and writes orders and publishes the full order list,
// ordered by promised delivery date, after every change.
type OrderStore struct {
	db     *gorm.DB
	feed   *realtime.Feed[[]models.Order]
	relay  realtime.Relay
	logger *zap.Logger
}

// NewOrderStore creates a store. relay may be nil for a single instance.
func NewOrderStore(db *gorm.DB, relay realtime.Relay, logger *zap.Logger) *OrderStore {
	if relay == nil {
		relay = realtime.NopRelay{}
	}
	return &OrderStore{
		db:     db,
		feed:   realtime.NewFeed[[]models.Order](),
		relay:  relay,
		logger: logger,
	}
}

// List returns every order by delivery date, oldest first
func (s *OrderStore) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Order("delivery_date asc, id asc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Get returns one order
func (s *OrderStore) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return &order, nil
}

// Create inserts a new order
func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	s.changed(ctx)
	return nil
}

// Update overwrites every field of an order except its id and creation timestamp
func (s *OrderStore) Update(ctx context.Context, order *models.Order) error {
	result := s.db.WithContext(ctx).
		Model(&models.Order{ID: order.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(order)
	if result.Error != nil {
		return fmt.Errorf("failed to update order %d: %w", order.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.changed(ctx)
	return nil
}

// MarkReady sets the status of one order to ready and touches nothing else
func (s *OrderStore) MarkReady(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.Order{ID: id}).
		UpdateColumn("status", models.StatusReady)
	if result.Error != nil {
		return fmt.Errorf("failed to mark order %d ready: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.changed(ctx)
	return nil
}

// Delete removes an order for good
func (s *OrderStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Order{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.changed(ctx)
	return nil
}

// Refresh re-queries the collection and publishes it as the new snapshot
func (s *OrderStore) Refresh(ctx context.Context) error {
	orders, err := s.List(ctx)
	if err != nil {
		return err
	}
	s.feed.Publish(orders)
	return nil
}

// Subscribe follows the live order list. The current snapshot arrives first.
func (s *OrderStore) Subscribe(ctx context.Context) (<-chan []models.Order, func(), error) {
	if _, ok := s.feed.Latest(); !ok {
		if err := s.Refresh(ctx); err != nil {
			return nil, nil, err
		}
	}
	ch, cancel := s.feed.Watch()
	return ch, cancel, nil
}

// changed republishes after a successful write. The write already happened,
// so a failing refresh or notice is logged and not returned.
func (s *OrderStore) changed(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("Failed to refresh order feed", zap.Error(err))
	}
	if err := s.relay.Notify(ctx, realtime.CollectionOrders); err != nil {
		s.logger.Warn("Failed to relay order change", zap.Error(err))
	}
}
