// Package clock abstracts wall time, delayed callbacks and display frames so
// the quiz timing can be driven by real timers in production and stepped
// manually in tests.
package clock

import (
	"time"
)

// DefaultFrameInterval approximates a 60 Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// CancelFunc cancels a scheduled callback. Calling it more than once, or
// after the callback ran, is a no-op.
type CancelFunc func()

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	Clock
	Schedule(delay time.Duration, fn func()) CancelFunc
}

// FrameSource calls back on the next display frame with the frame timestamp.
type FrameSource interface {
	Clock
	RequestFrame(fn func(now time.Time)) CancelFunc
}

// Real implements Scheduler and FrameSource with the runtime timers.
// Callbacks run on their own goroutine.
type Real struct {
	frameInterval time.Duration
}

// NewReal creates a real clock whose frames fire every frameInterval.
func NewReal(frameInterval time.Duration) *Real {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	return &Real{frameInterval: frameInterval}
}

func (r *Real) Now() time.Time {
	return time.Now()
}

func (r *Real) Schedule(delay time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}

func (r *Real) RequestFrame(fn func(now time.Time)) CancelFunc {
	t := time.AfterFunc(r.frameInterval, func() { fn(time.Now()) })
	return func() { t.Stop() }
}
