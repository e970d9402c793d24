package realtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChangesChannel is the Redis channel carrying collection change notices
const ChangesChannel = "labmanager:changes"

const (
	CollectionOrders   = "orders"
	CollectionDentists = "dentists"
)

// Relay spreads "collection changed" notices between API instances so that
// each one can re-query and republish its feeds.
type Relay interface {
	Notify(ctx context.Context, collection string) error
	Listen(ctx context.Context, onChange func(collection string)) error
}

// NopRelay is used by a single instance without Redis
type NopRelay struct{}

func (NopRelay) Notify(context.Context, string) error { return nil }

// Listen blocks until ctx is done
func (NopRelay) Listen(ctx context.Context, _ func(string)) error {
	<-ctx.Done()
	return nil
}

// RedisRelay publishes notices over Redis pub/sub
type RedisRelay struct {
	client   *redis.Client
	instance string
	logger   *zap.Logger
}

// NewRedisRelay creates a relay with a fresh instance id
func NewRedisRelay(client *redis.Client, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{client: client, instance: uuid.NewString(), logger: logger}
}

// Notify announces that collection changed on this instance
func (r *RedisRelay) Notify(ctx context.Context, collection string) error {
	if err := r.client.Publish(ctx, ChangesChannel, r.instance+"|"+collection).Err(); err != nil {
		return fmt.Errorf("failed to publish change notice: %w", err)
	}
	return nil
}

// Listen calls onChange for every notice sent by another instance until ctx is done
func (r *RedisRelay) Listen(ctx context.Context, onChange func(collection string)) error {
	sub := r.client.Subscribe(ctx, ChangesChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", ChangesChannel, err)
	}
	r.logger.Info("Listening for change notices", zap.String("channel", ChangesChannel), zap.String("instance", r.instance))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			origin, collection, found := strings.Cut(msg.Payload, "|")
			if !found {
				r.logger.Warn("Ignoring malformed change notice", zap.String("payload", msg.Payload))
				continue
			}
			if origin == r.instance {
				continue
			}
			onChange(collection)
		}
	}
}
