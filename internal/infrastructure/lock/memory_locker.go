package lock

import (
	"context"
	"sync"
	"time"

	"github.com/stockflow/backend/internal/application/workflow"
	"github.com/stockflow/backend/internal/domain/shared"
)

// MemoryLocker is a keyed mutex for single-instance deployments.
// Lock waits at most Retries*Backoff for the key.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

// NewMemoryLocker creates a locker with the wait derived from opts
func NewMemoryLocker(opts Options) *MemoryLocker {
	opts = opts.withDefaults()
	return &MemoryLocker{
		slots: make(map[string]chan struct{}),
		wait:  time.Duration(opts.Retries) * opts.Backoff,
	}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

// Lock takes the key
func (l *MemoryLocker) Lock(ctx context.Context, key string) (workflow.ReleaseFunc, error) {
	s := l.slot(key)

	select {
	case s <- struct{}{}:
		return release(s), nil
	default:
	}
	if l.wait <= 0 {
		return nil, shared.ErrLockNotObtained
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()
	select {
	case s <- struct{}{}:
		return release(s), nil
	case <-timer.C:
		return nil, shared.ErrLockNotObtained
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func release(s chan struct{}) workflow.ReleaseFunc {
	var once sync.Once
	return func(context.Context) {
		once.Do(func() { <-s })
	}
}

var _ workflow.InventoryLocker = (*MemoryLocker)(nil)
