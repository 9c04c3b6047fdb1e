package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker serializes keys inside one process. Used when Redis is not
// configured and in tests.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewMemoryLocker(wait time.Duration) *MemoryLocker {
	if wait <= 0 {
		wait = DefaultOptions().Wait
	}
	return &MemoryLocker{slots: make(map[string]*slot), wait: wait}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	s := l.ref(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-s.ch
				l.unref(key)
			})
		}, nil
	case <-timer.C:
		l.unref(key)
		return nil, ErrNotAcquired
	case <-ctx.Done():
		l.unref(key)
		return nil, ctx.Err()
	}
}

func (l *MemoryLocker) ref(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
