package bme280

import (
	"context"
	"time"
)

// Delayer waits between commanding a conversion and reading it back.
type Delayer interface {
	Delay(ctx context.Context, d time.Duration) error
}

// DelayFunc adapts a function to Delayer.
type DelayFunc func(ctx context.Context, d time.Duration) error

func (f DelayFunc) Delay(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// SleepDelay blocks the calling goroutine for the whole duration and ignores
// the context.
type SleepDelay struct{}

func (SleepDelay) Delay(_ context.Context, d time.Duration) error {
	time.Sleep(d)
	return nil
}

// TimerDelay waits on a timer and gives up early when ctx is done.
type TimerDelay struct{}

func (TimerDelay) Delay(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
