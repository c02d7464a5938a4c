package pacing_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dom/atelier-korea/internal/pacing"
	"github.com/stretchr/testify/assert"
)

func TestDelay_Completes(t *testing.T) {
	start := time.Now()
	err := pacing.Delay(context.Background(), 20*time.Millisecond)

	assert.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestDelay_Zero(t *testing.T) {
	assert.NoError(t, pacing.Delay(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, errors.Is(pacing.Delay(ctx, 0), context.Canceled))
}

func TestDelay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := pacing.Delay(ctx, 5*time.Second)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTimer_Fires(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})

	timer := pacing.AfterFunc(10*time.Millisecond, func() {
		calls.Add(1)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	assert.True(t, timer.Fired())
	assert.False(t, timer.Stop())
	assert.Equal(t, int32(1), calls.Load())
}

func TestTimer_StopPreventsCallback(t *testing.T) {
	var calls atomic.Int32

	timer := pacing.AfterFunc(50*time.Millisecond, func() {
		calls.Add(1)
	})

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, timer.Fired())
}
