package schedule

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManualAdvanceRunsDueTasksInOrder(t *testing.T) {
	m := NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	var order []string
	m.After(2*time.Second, func() { order = append(order, "b") })
	m.After(time.Second, func() { order = append(order, "a") })
	m.After(2*time.Second, func() { order = append(order, "c") })
	m.After(5*time.Second, func() { order = append(order, "late") })

	if ran := m.Advance(2 * time.Second); ran != 3 {
		t.Fatalf("Advance() ran %d, want 3", ran)
	}
	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("order = %v", order)
	}
	if m.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", m.Pending())
	}
}

func TestManualCancelAndNestedTasks(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManual(start)
	var fired []time.Time

	cancel := m.After(time.Second, func() { t.Fatal("canceled task ran") })
	cancel()

	m.After(time.Second, func() {
		m.After(500*time.Millisecond, func() { fired = append(fired, m.Now()) })
	})
	m.Advance(2 * time.Second)

	if len(fired) != 1 || !fired[0].Equal(start.Add(1500*time.Millisecond)) {
		t.Fatalf("nested task fired at %v", fired)
	}
	if !m.Now().Equal(start.Add(2 * time.Second)) {
		t.Fatalf("Now() = %v", m.Now())
	}
}

func TestManualNeverRunsSynchronously(t *testing.T) {
	m := NewManual(time.Now())
	ran := false
	m.After(0, func() { ran = true })
	if ran {
		t.Fatal("After ran fn synchronously")
	}
	m.Advance(0)
	if !ran {
		t.Fatal("zero-delay task did not run on Advance(0)")
	}
}

func TestSchedulerAfterAndCancel(t *testing.T) {
	s := New()
	defer s.Stop()

	done := make(chan struct{})
	s.After(10*time.Millisecond, func() { close(done) })

	var canceled atomic.Bool
	cancel := s.After(10*time.Millisecond, func() { canceled.Store(true) })
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	time.Sleep(20 * time.Millisecond)
	if canceled.Load() {
		t.Fatal("canceled timer fired")
	}
	if s.Pending() != 0 {
		t.Fatalf("Pending() = %d", s.Pending())
	}
}

func TestSchedulerStopDropsTimers(t *testing.T) {
	s := New()
	var fired atomic.Bool
	s.After(20*time.Millisecond, func() { fired.Store(true) })
	s.Stop()

	time.Sleep(50 * time.Millisecond)
	if fired.Load() {
		t.Fatal("timer fired after Stop")
	}
	s.After(time.Millisecond, func() { fired.Store(true) })
	time.Sleep(20 * time.Millisecond)
	if fired.Load() {
		t.Fatal("After accepted work after Stop")
	}
}

func TestSchedulerPanicIsRecovered(t *testing.T) {
	s := New()
	defer s.Stop()
	done := make(chan struct{})
	s.After(time.Millisecond, func() { panic("boom") })
	s.After(5*time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second timer did not fire")
	}
}

func TestEveryValidatesSpec(t *testing.T) {
	s := New()
	defer s.Stop()
	if _, err := s.Every("sweep", "", func() {}); err == nil {
		t.Fatal("expected error for empty spec")
	}
	if _, err := s.Every("sweep", "not a spec", func() {}); err == nil {
		t.Fatal("expected error for invalid spec")
	}
	remove, err := s.Every("sweep", "@every 1h", func() {})
	if err != nil {
		t.Fatalf("Every() error = %v", err)
	}
	remove()
}
