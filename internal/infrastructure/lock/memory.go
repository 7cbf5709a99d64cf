package lock

import (
	"context"
	"sync"
	"time"

	"github.com/janhq/support-chat-api/internal/infrastructure/metrics"
)

// MemoryLocker is an in-process keyed mutex. Entries are dropped once no
// goroutine holds or waits for a key.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem     chan struct{}
	waiters int
}

// NewMemoryLocker creates an empty keyed mutex.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]*slot)}
}

// Lock blocks until key is free or ctx is done.
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	start := time.Now()

	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.waiters++
	l.mu.Unlock()

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}
	metrics.RecordLockWait("memory", time.Since(start).Seconds())

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.sem
			l.release(key, s)
		})
	}, nil
}

func (l *MemoryLocker) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		delete(l.slots, key)
	}
}

// Size returns the number of keys currently held or awaited.
func (l *MemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
