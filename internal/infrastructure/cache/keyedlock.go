package cache

import (
	"context"
	"sync"
	"time"
)

const defaultLockPollInterval = 100 * time.Millisecond

// MemoryKeyedLock is an in-process advisory lock keyed by string. It only
// serializes callers inside one process.
type MemoryKeyedLock struct {
	mu           sync.Mutex
	held         map[string]struct{}
	pollInterval time.Duration
}

func NewMemoryKeyedLock(pollInterval time.Duration) *MemoryKeyedLock {
	if pollInterval <= 0 {
		pollInterval = defaultLockPollInterval
	}
	return &MemoryKeyedLock{
		held:         make(map[string]struct{}),
		pollInterval: pollInterval,
	}
}

// Acquire polls until key is free or timeout elapses. ok is false on timeout.
// The returned release func is safe to call more than once.
func (l *MemoryKeyedLock) Acquire(ctx context.Context, key string, timeout time.Duration) (func(), bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		if l.tryLock(key) {
			var once sync.Once
			return func() { once.Do(func() { l.unlock(key) }) }, true, nil
		}
		if !time.Now().Before(deadline) {
			return nil, false, nil
		}

		timer := time.NewTimer(l.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, false, ctx.Err()
		case <-timer.C:
		}
	}
}

// Held reports whether key is currently locked.
func (l *MemoryKeyedLock) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

func (l *MemoryKeyedLock) tryLock(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false
	}
	l.held[key] = struct{}{}
	return true
}

func (l *MemoryKeyedLock) unlock(key string) {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
}
