package pacing

import (
	"context"
	"sync"
	"time"
)

// Delay blocks for d or until ctx is done, whichever comes first.
// It returns ctx.Err() when the wait was cut short.
func Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Timer runs a callback once after a delay unless stopped first.
// After Stop returns the callback is guaranteed not to start.
type Timer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fired   bool
}

// AfterFunc schedules fn to run after d.
func AfterFunc(d time.Duration, fn func()) *Timer {
	t := &Timer{}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.stopped {
			t.mu.Unlock()
			return
		}
		t.fired = true
		t.mu.Unlock()

		fn()
	})
	return t
}

// Stop cancels the timer. It reports whether the callback was prevented from running.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}

// Fired reports whether the callback has started.
func (t *Timer) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
