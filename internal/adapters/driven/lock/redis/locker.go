// Package redis provides a driven.Locker backed by Redis leases, for
// several daylog processes writing the same vault and state store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/daylog/internal/core/ports/driven"
	"github.com/custodia-labs/daylog/internal/logger"
)

// Ensure Locker implements the interface.
var _ driven.Locker = (*Locker)(nil)

const (
	defaultTTL   = 2 * time.Minute
	retryBackoff = 50 * time.Millisecond
	keyPrefix    = "daylog:lock:"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lease taken over by another process is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker takes per-key leases with SET NX PX.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLocker connects to redisURL and verifies the connection.
// A zero ttl uses the default lease of two minutes.
func NewLocker(redisURL string, ttl time.Duration) (*Locker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewLockerWithClient(client, ttl), nil
}

// NewLockerWithClient creates a locker from an existing client.
func NewLockerWithClient(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Locker{client: client, ttl: ttl}
}

// Lock polls until the lease on key is acquired or ctx is done.
// The lease expires after the TTL even if the holder dies.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	redisKey := keyPrefix + key

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
			logger.Warn("release lock %s: %v", key, err)
		}
	}, nil
}

// Close closes the Redis connection.
func (l *Locker) Close() error {
	return l.client.Close()
}
