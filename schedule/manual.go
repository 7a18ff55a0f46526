package schedule

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic scheduler driven by Advance. Callbacks run on
// the goroutine that calls Advance.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	seq      uint64
	due      time.Time
	fn       func()
	canceled bool
}

// NewManual creates a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the manual clock.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After queues fn to run once the clock has advanced by d.
func (m *Manual) After(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{seq: m.seq, due: m.now.Add(d), fn: fn}
	m.tasks = append(m.tasks, t)
	return func() {
		m.mu.Lock()
		t.canceled = true
		m.mu.Unlock()
	}
}

// Advance moves the clock forward by d and runs every task that becomes due,
// earliest first (ties in registration order). Tasks queued by a callback run
// too if they fall inside the window. It returns the number of tasks run.
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	ran := 0
	for {
		m.mu.Lock()
		t := m.popDueLocked(target)
		if t == nil {
			m.now = target
			m.mu.Unlock()
			return ran
		}
		m.now = t.due
		m.mu.Unlock()

		t.fn()
		ran++
	}
}

// Pending returns the number of queued, uncanceled tasks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.canceled {
			n++
		}
	}
	return n
}

func (m *Manual) popDueLocked(target time.Time) *manualTask {
	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.canceled {
			live = append(live, t)
		}
	}
	m.tasks = live

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due.Equal(m.tasks[j].due) {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].due.Before(m.tasks[j].due)
	})
	if len(m.tasks) == 0 || m.tasks[0].due.After(target) {
		return nil
	}
	t := m.tasks[0]
	m.tasks = m.tasks[1:]
	return t
}
