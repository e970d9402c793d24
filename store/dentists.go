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

// DentistStore reads and writes the dentist directory
type DentistStore struct {
	db     *gorm.DB
	feed   *realtime.Feed[[]models.Dentist]
	relay  realtime.Relay
	logger *zap.Logger
}

// NewDentistStore creates a store. relay may be nil for a single instance.
func NewDentistStore(db *gorm.DB, relay realtime.Relay, logger *zap.Logger) *DentistStore {
	if relay == nil {
		relay = realtime.NopRelay{}
	}
	return &DentistStore{
		db:     db,
		feed:   realtime.NewFeed[[]models.Dentist](),
		relay:  relay,
		logger: logger,
	}
}

// List returns the directory ordered by name
func (s *DentistStore) List(ctx context.Context) ([]models.Dentist, error) {
	var dentists []models.Dentist
	if err := s.db.WithContext(ctx).Order("name asc, id asc").Find(&dentists).Error; err != nil {
		return nil, fmt.Errorf("failed to list dentists: %w", err)
	}
	return dentists, nil
}

// Names is the one-shot query that fills the dentist select of the order form
func (s *DentistStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.WithContext(ctx).Model(&models.Dentist{}).Order("name asc").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list dentist names: %w", err)
	}
	return names, nil
}

// Get returns one dentist
func (s *DentistStore) Get(ctx context.Context, id uint) (*models.Dentist, error) {
	var dentist models.Dentist
	err := s.db.WithContext(ctx).First(&dentist, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dentist %d: %w", id, err)
	}
	return &dentist, nil
}

// Create inserts a new dentist
func (s *DentistStore) Create(ctx context.Context, dentist *models.Dentist) error {
	if err := s.db.WithContext(ctx).Create(dentist).Error; err != nil {
		return fmt.Errorf("failed to create dentist: %w", err)
	}
	s.changed(ctx)
	return nil
}

// Update overwrites a dentist, keeping its registration timestamp
func (s *DentistStore) Update(ctx context.Context, dentist *models.Dentist) error {
	result := s.db.WithContext(ctx).
		Model(&models.Dentist{ID: dentist.ID}).
		Select("*").
		Omit("id", "registered_at").
		Updates(dentist)
	if result.Error != nil {
		return fmt.Errorf("failed to update dentist %d: %w", dentist.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.changed(ctx)
	return nil
}

// Delete removes a dentist. Orders keep their copy of the name.
func (s *DentistStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Dentist{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete dentist %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.changed(ctx)
	return nil
}

// Refresh re-queries the directory and publishes it as the new snapshot
func (s *DentistStore) Refresh(ctx context.Context) error {
	dentists, err := s.List(ctx)
	if err != nil {
		return err
	}
	s.feed.Publish(dentists)
	return nil
}

// Subscribe follows the live directory. The current snapshot arrives first.
func (s *DentistStore) Subscribe(ctx context.Context) (<-chan []models.Dentist, func(), error) {
	if _, ok := s.feed.Latest(); !ok {
		if err := s.Refresh(ctx); err != nil {
			return nil, nil, err
		}
	}
	ch, cancel := s.feed.Watch()
	return ch, cancel, nil
}

func (s *DentistStore) changed(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("Failed to refresh dentist feed", zap.Error(err))
	}
	if err := s.relay.Notify(ctx, realtime.CollectionDentists); err != nil {
		s.logger.Warn("Failed to relay dentist change", zap.Error(err))
	}
}

// Latest returns the most recently published directory snapshot
func (s *DentistStore) Latest() ([]models.Dentist, bool) {
	return s.feed.Latest()
}
