package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/linanwx/tripbot/planner"
	"github.com/linanwx/tripbot/schedule"
)

func TestManagerGetUsesCache(t *testing.T) {
	mgr := NewManager(time.Minute, nil)

	first := mgr.Get("cache:key")
	second := mgr.Get("cache:key")
	if first != second {
		t.Fatalf("Get() should return cached pointer for same key")
	}
	if mgr.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", mgr.Len())
	}
}

func TestManagerNormalizesKeys(t *testing.T) {
	mgr := NewManager(time.Minute, nil)

	a := mgr.Get("   ")
	b := mgr.Get("main")
	if a != b {
		t.Fatal("blank key should map to the default session")
	}
	if got := mgr.Keys(); len(got) != 1 || got[0] != "main" {
		t.Fatalf("Keys() = %v, want [main]", got)
	}
}

func TestManagerLookupDoesNotCreate(t *testing.T) {
	mgr := NewManager(time.Minute, nil)
	if _, ok := mgr.Lookup("web:missing"); ok {
		t.Fatal("Lookup() should not create sessions")
	}
	if _, ok := mgr.Snapshot("web:missing"); ok {
		t.Fatal("Snapshot() should report missing session")
	}

	mgr.Get("web:present")
	state, ok := mgr.Snapshot("web:present")
	if !ok {
		t.Fatal("Snapshot() should find created session")
	}
	if len(state.Messages) != 1 {
		t.Fatalf("new session should hold the greeting, got %d messages", len(state.Messages))
	}
}

func TestManagerSweepClosesIdleSessions(t *testing.T) {
	mgr := NewManager(10*time.Millisecond, nil)
	s := mgr.Get("idle")

	time.Sleep(30 * time.Millisecond)
	if closed := mgr.Sweep(); closed != 1 {
		t.Fatalf("Sweep() closed %d, want 1", closed)
	}
	if _, ok := mgr.Lookup("idle"); ok {
		t.Fatal("idle session should be gone after sweep")
	}
	if err := s.SetPreference(planner.FieldDestination, "Rome"); !errors.Is(err, planner.ErrSessionClosed) {
		t.Fatalf("SetPreference() on swept session error = %v, want ErrSessionClosed", err)
	}
}

func TestManagerSweepKeepsBusySessions(t *testing.T) {
	clock := schedule.NewManual(time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC))
	mgr := NewManager(10*time.Millisecond, func(key string) *planner.Session {
		return planner.NewSession(planner.Options{Key: key, Scheduler: clock, Now: clock.Now})
	})

	s := mgr.Get("busy")
	if err := s.SearchFlights(context.Background()); err != nil {
		t.Fatalf("SearchFlights() error = %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if closed := mgr.Sweep(); closed != 0 {
		t.Fatalf("Sweep() closed %d busy sessions, want 0", closed)
	}
	if _, ok := mgr.Lookup("busy"); !ok {
		t.Fatal("busy session should survive the sweep")
	}
}

func TestManagerRemoveAndCloseAll(t *testing.T) {
	mgr := NewManager(time.Minute, nil)
	mgr.Get("a")
	mgr.Get("b")
	mgr.Get("c")

	mgr.Remove("a")
	if mgr.Len() != 2 {
		t.Fatalf("Len() after Remove = %d, want 2", mgr.Len())
	}
	mgr.CloseAll()
	if mgr.Len() != 0 {
		t.Fatalf("Len() after CloseAll = %d, want 0", mgr.Len())
	}
}
