package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler and FrameSource. Time only moves when
// Advance is called; due callbacks run synchronously on the caller's
// goroutine, in due order.
type Manual struct {
	mu            sync.Mutex
	now           time.Time
	frameInterval time.Duration
	seq           uint64
	pending       map[uint64]*manualTask
}

type manualTask struct {
	id  uint64
	due time.Time
	run func(now time.Time)
}

// NewManual starts a manual clock at start.
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:           start,
		frameInterval: DefaultFrameInterval,
		pending:       make(map[uint64]*manualTask),
	}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Schedule(delay time.Duration, fn func()) CancelFunc {
	return m.add(delay, func(time.Time) { fn() })
}

func (m *Manual) RequestFrame(fn func(now time.Time)) CancelFunc {
	return m.add(m.frameInterval, fn)
}

// Pending reports how many callbacks are waiting.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Advance moves time forward by d, running every callback that becomes due,
// including callbacks scheduled by other callbacks within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := m.nextDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		delete(m.pending, next.id)
		if next.due.After(m.now) {
			m.now = next.due
		}
		now := m.now
		m.mu.Unlock()

		next.run(now)
	}
}

func (m *Manual) add(delay time.Duration, run func(time.Time)) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.pending[id] = &manualTask{id: id, due: m.now.Add(delay), run: run}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.pending, id)
	}
}

func (m *Manual) nextDue(limit time.Time) *manualTask {
	due := make([]*manualTask, 0, len(m.pending))
	for _, t := range m.pending {
		if !t.due.After(limit) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})
	return due[0]
}
