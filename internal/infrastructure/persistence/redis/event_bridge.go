package redis

import (
	"context"
	"sync"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/infrastructure/messaging"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENT BRIDGE
// ══════════════════════════════════════════════════════════════════════════════

// EventBridge adapts the shared Redis connection to the client interface
// the Redis event bus consumes. It owns the subscriptions it opens and
// closes them with the bridge; the underlying connection stays open for
// the answer store.
type EventBridge struct {
	cache *Cache
	mu    sync.Mutex
	subs  []*redis.PubSub
}

// NewEventBridge creates a bridge over an established Redis connection.
func NewEventBridge(cache *Cache) *EventBridge {
	return &EventBridge{cache: cache}
}

// Publish sends a message to a channel.
func (b *EventBridge) Publish(ctx context.Context, channel string, message interface{}) error {
	return b.cache.Client().Publish(ctx, channel, message).Err()
}

// Subscribe opens a subscription and returns its message stream. The
// stream closes when the bridge is closed.
func (b *EventBridge) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	sub := b.cache.Client().Subscribe(ctx, channels...)

	// Wait for the subscription confirmation so nothing published right
	// after this call can slip past.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	out := make(chan messaging.RedisMessage)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			out <- messaging.RedisMessage{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()

	return out, nil
}

// Close tears down every subscription opened through the bridge.
func (b *EventBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var firstErr error
	for _, sub := range b.subs {
		if err := sub.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	b.subs = nil

	return firstErr
}
