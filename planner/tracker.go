package planner

import "sync"

// OperationKind names a tracked asynchronous operation.
type OperationKind int

const (
	OpFlightSearch OperationKind = iota
	OpItinerary
)

func (k OperationKind) String() string {
	if k == OpItinerary {
		return "itinerary generation"
	}
	return "flight search"
}

// AsyncFlags reports which operations are in flight.
type AsyncFlags struct {
	SearchingFlights    bool `json:"isSearchingFlights"`
	GeneratingItinerary bool `json:"isGeneratingItinerary"`
}

// Busy reports whether any operation is in flight.
func (f AsyncFlags) Busy() bool {
	return f.SearchingFlights || f.GeneratingItinerary
}

// Tracker allows at most one outstanding operation per kind.
type Tracker struct {
	mu    sync.Mutex
	flags AsyncFlags
}

// Begin marks kind as in flight. It returns false when one is already running.
func (t *Tracker) Begin(kind OperationKind) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := t.flag(kind)
	if *p {
		return false
	}
	*p = true
	return true
}

// End clears kind.
func (t *Tracker) End(kind OperationKind) {
	t.mu.Lock()
	*t.flag(kind) = false
	t.mu.Unlock()
}

// Flags returns the current flags.
func (t *Tracker) Flags() AsyncFlags {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flags
}

func (t *Tracker) flag(kind OperationKind) *bool {
	if kind == OpItinerary {
		return &t.flags.GeneratingItinerary
	}
	return &t.flags.SearchingFlights
}
