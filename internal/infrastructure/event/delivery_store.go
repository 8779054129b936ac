package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeliveryStore remembers which event deliveries already happened
type DeliveryStore interface {
	// MarkDelivered records the key and reports whether it was new
	MarkDelivered(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryDeliveryStore keeps delivery keys in process memory
type MemoryDeliveryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryDeliveryStore creates an empty store
func NewMemoryDeliveryStore() *MemoryDeliveryStore {
	return &MemoryDeliveryStore{entries: make(map[string]time.Time), now: time.Now}
}

// MarkDelivered records the key. Expired keys are swept on write.
func (s *MemoryDeliveryStore) MarkDelivered(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, k)
		}
	}
	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

// RedisDeliveryStore shares delivery keys between instances using SETNX
type RedisDeliveryStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisDeliveryStore creates a store on an existing client
func NewRedisDeliveryStore(client redis.UniversalClient, prefix string) *RedisDeliveryStore {
	if prefix == "" {
		prefix = "event:delivered:"
	}
	return &RedisDeliveryStore{client: client, prefix: prefix}
}

// MarkDelivered sets the key if absent
func (s *RedisDeliveryStore) MarkDelivered(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record event delivery: %w", err)
	}
	return ok, nil
}
