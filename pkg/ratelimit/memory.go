package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter in-memory скользящее окно
type MemoryLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	closed   bool
}

type MemoryOption func(*MemoryLimiter)

// WithClock подменяет часы (тесты)
func WithClock(now func() time.Time) MemoryOption {
	return func(l *MemoryLimiter) { l.now = now }
}

// WithCleanup запускает фоновую очистку ключей, простаивающих дольше окна
func WithCleanup(interval time.Duration) MemoryOption {
	return func(l *MemoryLimiter) {
		if interval > 0 {
			go l.cleanup(interval)
		}
	}
}

func NewMemoryLimiter(limit int, window time.Duration, opts ...MemoryOption) *MemoryLimiter {
	l := &MemoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return Decision{}, ErrLimiterClosed
	}

	now := l.now()
	valid := l.prune(key, now)

	d := Decision{Limit: l.limit}
	if len(valid) < l.limit {
		valid = append(valid, now)
		l.requests[key] = valid
		d.Allowed = true
		d.Remaining = l.limit - len(valid)
		return d, nil
	}

	// самый старый вызов покинет окно первым
	d.RetryAfter = valid[0].Add(l.window).Sub(now)
	return d, nil
}

// prune оставляет вызовы внутри окна; вызывается под мьютексом
func (l *MemoryLimiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-l.window)
	stamps := l.requests[key]

	i := 0
	for i < len(stamps) && !stamps[i].After(windowStart) {
		i++
	}
	if i == len(stamps) {
		delete(l.requests, key)
		return nil
	}
	valid := stamps[i:]
	l.requests[key] = valid
	return valid
}

func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	close(l.stopCh)
	l.requests = nil
	return nil
}

func (l *MemoryLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *MemoryLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key := range l.requests {
		l.prune(key, now)
	}
}

// keys число отслеживаемых клиентов
func (l *MemoryLimiter) keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}
