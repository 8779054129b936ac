package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Options tune how long a lock lives and how hard Lock tries to get it
type Options struct {
	TTL     time.Duration
	Retries int
	Backoff time.Duration
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 30 * time.Second
	}
	if o.Backoff <= 0 {
		o.Backoff = 100 * time.Millisecond
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	return o
}

// RedisLocker holds per-inventory locks in Redis
type RedisLocker struct {
	client *redislock.Client
	opts   Options
	prefix string
	logger *zap.Logger
}

// NewRedisLocker creates a locker on an existing client
func NewRedisLocker(client redis.UniversalClient, opts Options, logger *zap.Logger) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client: redislock.New(client),
		opts:   opts.withDefaults(),
		prefix: "stockflow:",
		logger: logger,
	}
}

// Lock obtains the key or fails with LOCK_NOT_OBTAINED once retries run out
func (l *RedisLocker) Lock(ctx context.Context, key string) (workflow.ReleaseFunc, error) {
	strategy := redislock.NoRetry()
	if l.opts.Retries > 0 {
		strategy = redislock.LimitRetry(redislock.LinearBackoff(l.opts.Backoff), l.opts.Retries)
	}

	lk, err := l.client.Obtain(ctx, l.prefix+key, l.opts.TTL, &redislock.Options{RetryStrategy: strategy})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	return func(ctx context.Context) {
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("Failed to release workflow lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

var _ workflow.InventoryLocker = (*RedisLocker)(nil)
