// Package schedule runs delayed one-shot callbacks and recurring cron jobs.
package schedule

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/linanwx/tripbot/logger"
	robfigcron "github.com/robfig/cron/v3"
)

// Scheduler owns one-shot timers and a cron runner. Stop cancels both.
type Scheduler struct {
	cron *robfigcron.Cron

	mu      sync.Mutex
	timers  map[uint64]*time.Timer
	next    uint64
	stopped bool
}

// New creates a scheduler. Call Start to begin running cron jobs; one-shot
// timers run as soon as they are due.
func New() *Scheduler {
	return &Scheduler{
		cron:   robfigcron.New(),
		timers: make(map[uint64]*time.Timer),
	}
}

// After runs fn once after d. The returned func cancels it if still pending.
func (s *Scheduler) After(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return func() {}
	}

	s.next++
	id := s.next
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()
		if !live {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				logger.Error("scheduled task panic", "task", id, "panic", r)
			}
		}()
		fn()
	})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t, ok := s.timers[id]; ok {
			t.Stop()
			delete(s.timers, id)
		}
	}
}

// Every registers fn on a cron spec ("@every 1m", "*/5 * * * *").
func (s *Scheduler) Every(name, spec string, fn func()) (func(), error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("schedule %s: spec is required", name)
	}
	entryID, err := s.cron.AddFunc(spec, func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("cron job panic", "job", name, "panic", r)
			}
		}()
		fn()
	})
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", name, err)
	}
	logger.Debug("cron job registered", "job", name, "spec", spec)
	return func() { s.cron.Remove(entryID) }, nil
}

// Pending returns the number of one-shot timers not yet fired.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop cancels pending timers and waits for running cron jobs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
}
