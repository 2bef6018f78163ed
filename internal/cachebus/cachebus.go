// Package cachebus provides optional cross-process invalidation of
// in-memory hash caches via Redis pub/sub. A nil *Bus is a valid,
// inert no-op — the single-process story never depends on Redis being
// configured.
package cachebus

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const invalidationChannel = "icu:hash-invalidate"

// Bus publishes and subscribes to hash-invalidation events for a
// single reputation store shared across multiple ICU processes (e.g.
// a long-running watcher alongside an ad-hoc CLI scan).
type Bus struct {
	client *redis.Client
	logger *slog.Logger
}

// New connects to the Redis instance at addr. A connection failure is
// returned so the caller can decide whether to run without a bus.
func New(addr string, logger *slog.Logger) (*Bus, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Bus{client: client, logger: logger}, nil
}

// PublishInvalidate announces that hash should be dropped from every
// subscriber's in-memory cache. Best-effort: publish errors are logged,
// never returned, since a missed invalidation only costs a stale cache
// entry, not correctness (the reputation store remains authoritative).
func (b *Bus) PublishInvalidate(ctx context.Context, hash string) {
	if b == nil {
		return
	}
	if err := b.client.Publish(ctx, invalidationChannel, hash).Err(); err != nil {
		b.logger.Warn("cachebus publish failed", "hash", hash, "error", err)
	}
}

// Subscribe invokes onInvalidate for every hash published by another
// process, until ctx is canceled.
func (b *Bus) Subscribe(ctx context.Context, onInvalidate func(hash string)) error {
	if b == nil {
		return nil
	}
	sub := b.client.Subscribe(ctx, invalidationChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			onInvalidate(msg.Payload)
		}
	}
}

// Close releases the underlying Redis client. Safe to call on a nil
// *Bus.
func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	return b.client.Close()
}
