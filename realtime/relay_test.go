package realtime

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNopRelay(t *testing.T) {
	var relay Relay = NopRelay{}
	assert.NoError(t, relay.Notify(context.Background(), CollectionOrders))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.NoError(t, relay.Listen(ctx, func(string) { t.Fatal("nop relay never calls back") }))
}

// Requires a Redis server at REDIS_ADDR
func TestRedisRelayBetweenInstances(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sender := NewRedisRelay(client, zap.NewNop())
	receiver := NewRedisRelay(client, zap.NewNop())

	received := make(chan string, 2)
	go func() { _ = receiver.Listen(ctx, func(c string) { received <- c }) }()
	go func() { _ = sender.Listen(ctx, func(c string) { received <- "echo:" + c }) }()

	// give both subscriptions time to register
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, sender.Notify(ctx, CollectionDentists))

	select {
	case c := <-received:
		assert.Equal(t, CollectionDentists, c, "the sending instance ignores its own notice")
	case <-ctx.Done():
		t.Fatal("no change notice received")
	}
}
