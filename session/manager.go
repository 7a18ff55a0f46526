// Package session keeps live planning sessions in memory and expires idle ones.
package session

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linanwx/tripbot/logger"
	"github.com/linanwx/tripbot/planner"
	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
)

const defaultKey = "main"

// Factory builds a new session for key.
type Factory func(key string) *planner.Session

// Manager maps session keys to live sessions. The cache tracks each
// session's idle deadline; sessions idle longer than the TTL are closed by
// Sweep.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*planner.Session
	cache    *gocache.Cache
	ttl      time.Duration
	factory  Factory
}

// NewManager creates a manager. Expired sessions are only removed by Sweep,
// which the caller schedules.
func NewManager(ttl time.Duration, factory Factory) *Manager {
	if factory == nil {
		factory = func(key string) *planner.Session {
			return planner.NewSession(planner.Options{Key: key})
		}
	}
	c := gocache.New(ttl, 0)
	c.OnEvicted(func(key string, v any) {
		if s, ok := v.(*planner.Session); ok {
			s.Close()
		}
		logger.Info("session closed", "key", key)
	})
	return &Manager{
		sessions: make(map[string]*planner.Session),
		cache:    c,
		ttl:      ttl,
		factory:  factory,
	}
}

// NormalizeKey trims key and falls back to "main" when empty.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return defaultKey
	}
	return key
}

// Get returns the session for key, creating it on first use. Every Get
// extends the idle deadline.
func (m *Manager) Get(key string) *planner.Session {
	key = NormalizeKey(key)

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[key]
	if !ok {
		s = m.factory(key)
		m.sessions[key] = s
		logger.Info("session created", "key", key)
	}
	m.cache.SetDefault(key, s)
	return s
}

// Lookup returns an existing session without creating one.
func (m *Manager) Lookup(key string) (*planner.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[NormalizeKey(key)]
	return s, ok
}

// Snapshot returns the state of an existing session.
func (m *Manager) Snapshot(key string) (planner.State, bool) {
	s, ok := m.Lookup(key)
	if !ok {
		return planner.State{}, false
	}
	return s.Snapshot(), true
}

// Remove closes and forgets the session for key.
func (m *Manager) Remove(key string) {
	key = NormalizeKey(key)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[key]; !ok {
		return
	}
	m.cache.Delete(key)
	delete(m.sessions, key)
}

// Sweep closes sessions idle past the TTL. Sessions with an operation in
// flight get their deadline extended instead. It returns how many closed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, s := range m.sessions {
		if s.Flags().Busy() {
			m.cache.SetDefault(key, s)
		}
	}

	m.cache.DeleteExpired()

	closed := 0
	for key := range m.sessions {
		if _, live := m.cache.Get(key); !live {
			delete(m.sessions, key)
			closed++
		}
	}
	if closed > 0 {
		logger.Info("idle sessions swept", "closed", closed, "live", len(m.sessions))
	}
	return closed
}

// Keys returns live session keys, sorted.
func (m *Manager) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := lo.Keys(m.sessions)
	sort.Strings(keys)
	return keys
}

// Len returns the number of sessions not yet swept.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	for _, key := range m.Keys() {
		m.Remove(key)
	}
}
