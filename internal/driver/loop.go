package driver

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs fn once at the next display refresh. Only one request is
// pending at a time; a new request replaces the old one. cancel drops the
// request if it has not fired yet.
type Scheduler interface {
	RequestFrame(fn func()) (cancel func())
}

// Loop is a fixed-rate Scheduler for hosts without a display, driven by Run.
type Loop struct {
	interval time.Duration

	mu      sync.Mutex
	pending func()
	seq     uint64
}

// NewLoop returns a Loop ticking fps times per second.
func NewLoop(fps int) *Loop {
	if fps <= 0 {
		fps = 30
	}
	return &Loop{interval: time.Second / time.Duration(fps)}
}

func (l *Loop) RequestFrame(fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	id := l.seq
	l.pending = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.seq == id {
			l.pending = nil
		}
	}
}

// Run fires pending frames until ctx is done. Callbacks run on the calling
// goroutine.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Fire()
		}
	}
}

// Fire runs the pending callback, if any, now.
func (l *Loop) Fire() bool {
	l.mu.Lock()
	fn := l.pending
	l.pending = nil
	l.mu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}
