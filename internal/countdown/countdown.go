// Package countdown implements a frame-driven countdown: the remaining time
// is re-sampled on every display frame rather than on an independent ticker.
package countdown

import (
	"sync"
	"time"
	"vocab-quiz/internal/clock"
)

// Countdown counts a total duration down to zero while running and invokes
// the finish callback once when it reaches zero.
type Countdown struct {
	mu        sync.Mutex
	frames    clock.FrameSource
	onFinish  func()
	total     time.Duration
	remaining time.Duration
	running   bool
	startedAt time.Time
	cancel    clock.CancelFunc
	// gen invalidates frames requested before the last start/stop/reset.
	gen uint64
}

// New creates a stopped countdown. onFinish may be nil.
func New(frames clock.FrameSource, total time.Duration, onFinish func()) *Countdown {
	if total < 0 {
		total = 0
	}
	return &Countdown{
		frames:    frames,
		onFinish:  onFinish,
		total:     total,
		remaining: total,
	}
}

// SetOnFinish replaces the finish callback.
func (c *Countdown) SetOnFinish(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinish = fn
}

// Total returns the configured duration.
func (c *Countdown) Total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Remaining returns the time left as of the last frame.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Running reports whether frames are being scheduled.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SetRunning starts or stops the clock. Starting restarts from the full
// total; stopping cancels the pending frame and freezes the remaining time.
func (c *Countdown) SetRunning(running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if running == c.running {
		return
	}
	if running {
		c.startLocked()
		return
	}
	c.remaining = c.remainingAt(c.frames.Now())
	c.stopLocked()
}

// SetTotal changes the duration. While stopped only the remaining time is
// reset; while running the countdown restarts from the new total.
func (c *Countdown) SetTotal(total time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if total < 0 {
		total = 0
	}
	c.total = total
	if c.running {
		c.stopLocked()
		c.startLocked()
		return
	}
	c.remaining = total
}

func (c *Countdown) startLocked() {
	c.gen++
	c.running = true
	c.startedAt = c.frames.Now()
	c.remaining = c.total
	c.requestLocked()
}

func (c *Countdown) stopLocked() {
	c.gen++
	c.running = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Countdown) requestLocked() {
	gen := c.gen
	c.cancel = c.frames.RequestFrame(func(now time.Time) {
		c.tick(gen, now)
	})
}

func (c *Countdown) tick(gen uint64, now time.Time) {
	c.mu.Lock()
	if gen != c.gen || !c.running {
		c.mu.Unlock()
		return
	}

	c.remaining = c.remainingAt(now)
	if c.remaining > 0 {
		c.requestLocked()
		c.mu.Unlock()
		return
	}

	c.gen++
	c.running = false
	c.cancel = nil
	onFinish := c.onFinish
	c.mu.Unlock()

	if onFinish != nil {
		onFinish()
	}
}

func (c *Countdown) remainingAt(now time.Time) time.Duration {
	left := c.total - now.Sub(c.startedAt)
	if left < 0 {
		return 0
	}
	return left
}
