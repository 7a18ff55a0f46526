// Package planner implements the travel-planning chat core: preferences, the
// conversation log, intent classification, mock flight and itinerary
// generators, and the session controller that ties them together.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/linanwx/tripbot/logger"
	"github.com/linanwx/tripbot/schedule"
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("session closed")

const greeting = "Hello! I'm your personal travel assistant 🌍 I'll help you plan the perfect family vacation " +
	"based on your children's school holidays, budget, and comfort preferences. " +
	"Let's start by telling me about your dream destination!"

// Mode is the view mode the session is in.
type Mode string

const (
	ModePreferences Mode = "preferences"
	ModeChatting    Mode = "chatting"
)

// Scheduler runs fn once after d. The returned cancel stops a pending run.
// Implementations must not call fn synchronously from After.
type Scheduler interface {
	After(d time.Duration, fn func()) (cancel func())
}

// defaultScheduler serves sessions created without one. It is never stopped.
var defaultScheduler = sync.OnceValue(schedule.New)

// Delays are the simulated latencies of each response path.
type Delays struct {
	Reply        time.Duration
	FlightSearch time.Duration
	Itinerary    time.Duration
}

// DefaultDelays match the reference timings.
var DefaultDelays = Delays{
	Reply:        1000 * time.Millisecond,
	FlightSearch: 2000 * time.Millisecond,
	Itinerary:    2500 * time.Millisecond,
}

// EventType describes a state change reported to the observer.
type EventType string

const (
	EventMessage     EventType = "message"
	EventPreferences EventType = "preferences"
	EventFlags       EventType = "flags"
	EventFlights     EventType = "flights"
	EventItinerary   EventType = "itinerary"
	EventMode        EventType = "mode"
)

// Event is delivered to the observer after the change is visible in Snapshot.
type Event struct {
	Type    EventType
	Message Message // set for EventMessage
}

// Options configures a Session. Zero values select the defaults.
type Options struct {
	Persona   Persona
	Scheduler Scheduler
	Random    RandomSource
	Flights   FlightProvider
	Itinerary ItineraryProvider
	Delays    Delays
	Now       func() time.Time
	Observer  func(Event)
	Key       string // used in log lines only
}

// State is a deep-copied snapshot for rendering.
type State struct {
	Preferences Preferences    `json:"preferences"`
	Messages    []Message      `json:"messages"`
	Flights     []FlightOffer  `json:"flights"`
	Itinerary   []ItineraryDay `json:"itinerary"`
	Flags       AsyncFlags     `json:"flags"`
	Mode        Mode           `json:"mode"`
}

// Session is the single controller for one traveller's planning session.
type Session struct {
	opts Options

	mu        sync.Mutex
	prefs     Preferences
	log       *Conversation
	tracker   Tracker
	flights   []FlightOffer
	itinerary []ItineraryDay
	mode      Mode
	closed    bool

	nextTask uint64
	pending  map[uint64]func()
}

// NewSession creates a session and appends the assistant greeting.
func NewSession(opts Options) *Session {
	if opts.Scheduler == nil {
		opts.Scheduler = defaultScheduler()
	}
	if opts.Random == nil {
		opts.Random = DefaultRandom()
	}
	if opts.Flights == nil {
		opts.Flights = MockFlights{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Itinerary == nil {
		opts.Itinerary = MockItinerary{Now: opts.Now}
	}
	if opts.Delays == (Delays{}) {
		opts.Delays = DefaultDelays
	}

	s := &Session{
		opts:    opts,
		prefs:   NewPreferences(opts.Persona),
		log:     NewConversation(opts.Now),
		mode:    ModePreferences,
		pending: make(map[uint64]func()),
	}
	s.log.AppendAssistant(greeting)
	return s
}

// SetPreference assigns a scalar preference field.
func (s *Session) SetPreference(field Field, value string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	err := s.prefs.SetField(field, value)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.emit(Event{Type: EventPreferences})
	return nil
}

// ToggleInterest flips membership of an interest tag and reports whether it
// is now selected.
func (s *Session) ToggleInterest(tag string) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}
	on, err := s.prefs.ToggleInterest(tag)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	s.emit(Event{Type: EventPreferences})
	return on, nil
}

// RequestStartPlanning validates the required fields, leaves preferences
// mode and appends a confirmation. On validation failure nothing changes.
func (s *Session) RequestStartPlanning() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err := s.prefs.ValidateForPlanningStart(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mode = ModeChatting
	msg := s.log.AppendAssistant(planningConfirmation(s.prefs))
	s.mu.Unlock()

	s.emit(Event{Type: EventMode}, Event{Type: EventMessage, Message: msg})
	return nil
}

// EditPreferences returns the session to preferences mode.
func (s *Session) EditPreferences() {
	s.mu.Lock()
	changed := s.mode != ModePreferences
	s.mode = ModePreferences
	s.mu.Unlock()
	if changed {
		s.emit(Event{Type: EventMode})
	}
}

// SubmitUserMessage appends the user's text and starts the response the
// classifier selects. Blank input is ignored with ErrEmptyMessage.
func (s *Session) SubmitUserMessage(ctx context.Context, text string) (Intent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return IntentGenericReply, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return IntentGenericReply, ErrSessionClosed
	}
	msg := s.log.AppendUser(text)
	intent := Classify(text)
	events := []Event{{Type: EventMessage, Message: msg}}

	var (
		more []Event
		err  error
	)
	switch intent {
	case IntentFlightSearch:
		more, err = s.startFlightSearchLocked(ctx)
	case IntentItinerary:
		more, err = s.startItineraryLocked(ctx)
	default:
		more = s.startReplyLocked()
	}
	s.mu.Unlock()

	logger.Debug("user message classified", "session", s.opts.Key, "intent", intent.String())
	s.emit(append(events, more...)...)
	return intent, err
}

// SearchFlights starts a mock flight search directly.
func (s *Session) SearchFlights(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	events, err := s.startFlightSearchLocked(ctx)
	s.mu.Unlock()
	s.emit(events...)
	return err
}

// GenerateItinerary starts a mock itinerary generation directly.
func (s *Session) GenerateItinerary(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	events, err := s.startItineraryLocked(ctx)
	s.mu.Unlock()
	s.emit(events...)
	return err
}

// Snapshot returns a consistent copy of the whole session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Preferences: s.prefs.Clone(),
		Messages:    s.log.Messages(),
		Flights:     append([]FlightOffer{}, s.flights...),
		Itinerary:   append([]ItineraryDay{}, s.itinerary...),
		Flags:       s.tracker.Flags(),
		Mode:        s.mode,
	}
}

// Preferences returns a copy of the current preferences.
func (s *Session) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Clone()
}

// Flags returns the current async flags.
func (s *Session) Flags() AsyncFlags {
	return s.tracker.Flags()
}

// Close cancels pending completions. Later operations fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, cancel := range s.pending {
		cancel()
		delete(s.pending, id)
	}
}

func (s *Session) startFlightSearchLocked(ctx context.Context) ([]Event, error) {
	if !s.tracker.Begin(OpFlightSearch) {
		msg := s.log.AppendAssistant("I'm still searching for flights, your results will be ready in just a moment!")
		return []Event{{Type: EventMessage, Message: msg}}, fmt.Errorf("%w: %s", ErrOperationInFlight, OpFlightSearch)
	}
	prefs := s.prefs.Clone()
	ctx = context.WithoutCancel(ctx)
	s.scheduleLocked(s.opts.Delays.FlightSearch, func() {
		offers, err := s.opts.Flights.SearchFlights(ctx, prefs)
		s.completeFlightSearch(prefs, offers, err)
	})
	logger.Info("flight search started", "session", s.opts.Key, "destination", prefs.Destination, "budget", prefs.Budget)
	return []Event{{Type: EventFlags}}, nil
}

func (s *Session) completeFlightSearch(prefs Preferences, offers []FlightOffer, err error) {
	s.mu.Lock()
	s.tracker.End(OpFlightSearch)
	events := []Event{{Type: EventFlags}}
	var msg Message
	if err != nil {
		logger.Warn("flight search failed", "session", s.opts.Key, "err", err)
		msg = s.log.AppendAssistant(failureMessage(OpFlightSearch, err))
	} else {
		s.flights = offers
		events = append(events, Event{Type: EventFlights})
		msg = s.log.AppendAssistant(FlightSummary(offers, prefs.Destination))
	}
	s.mu.Unlock()

	s.emit(append(events, Event{Type: EventMessage, Message: msg})...)
}

func (s *Session) startItineraryLocked(ctx context.Context) ([]Event, error) {
	if !s.tracker.Begin(OpItinerary) {
		msg := s.log.AppendAssistant("I'm still putting your itinerary together. Hang tight!")
		return []Event{{Type: EventMessage, Message: msg}}, fmt.Errorf("%w: %s", ErrOperationInFlight, OpItinerary)
	}
	prefs := s.prefs.Clone()
	ctx = context.WithoutCancel(ctx)
	s.scheduleLocked(s.opts.Delays.Itinerary, func() {
		days, err := s.opts.Itinerary.BuildItinerary(ctx, prefs)
		s.completeItinerary(prefs, days, err)
	})
	logger.Info("itinerary generation started", "session", s.opts.Key, "destination", prefs.Destination)
	return []Event{{Type: EventFlags}}, nil
}

func (s *Session) completeItinerary(prefs Preferences, days []ItineraryDay, err error) {
	s.mu.Lock()
	s.tracker.End(OpItinerary)
	events := []Event{{Type: EventFlags}}
	var msg Message
	if err != nil {
		logger.Warn("itinerary generation failed", "session", s.opts.Key, "err", err)
		msg = s.log.AppendAssistant(failureMessage(OpItinerary, err))
	} else {
		s.itinerary = days
		events = append(events, Event{Type: EventItinerary})
		msg = s.log.AppendAssistant(ItinerarySummary(days, prefs))
	}
	s.mu.Unlock()

	s.emit(append(events, Event{Type: EventMessage, Message: msg})...)
}

func (s *Session) startReplyLocked() []Event {
	body := GenericReply(s.prefs, s.opts.Random)
	s.scheduleLocked(s.opts.Delays.Reply, func() {
		s.mu.Lock()
		msg := s.log.AppendAssistant(body)
		s.mu.Unlock()
		s.emit(Event{Type: EventMessage, Message: msg})
	})
	return nil
}

// scheduleLocked registers fn with the scheduler; fn is skipped once the
// session is closed.
func (s *Session) scheduleLocked(d time.Duration, fn func()) {
	s.nextTask++
	id := s.nextTask
	s.pending[id] = s.opts.Scheduler.After(d, func() {
		s.mu.Lock()
		delete(s.pending, id)
		closed := s.closed
		s.mu.Unlock()
		if closed {
			return
		}
		fn()
	})
}

func (s *Session) emit(events ...Event) {
	if s.opts.Observer == nil {
		return
	}
	for _, ev := range events {
		s.opts.Observer(ev)
	}
}

func planningConfirmation(p Preferences) string {
	interests := strings.Join(p.Interests[:min(3, len(p.Interests))], ", ")
	if len(p.Interests) > 3 {
		interests += " and more"
	}
	return fmt.Sprintf("Perfect! I have all the details I need. Based on your preferences for %s, "+
		"traveling from %s to %s with a %s budget and %s comfort level, I'm creating a personalized travel plan. "+
		"Let me search for the best family-friendly options that match your interests in %s! 🏖️✈️",
		p.Destination, p.StartDate, p.EndDate,
		orDefault(string(p.Budget), "flexible"),
		orDefault(string(p.Comfort), "flexible"),
		orDefault(interests, "everything the destination has to offer"))
}

func failureMessage(kind OperationKind, err error) string {
	if errors.Is(err, ErrInvalidDateRange) {
		return "Hmm, those travel dates don't look right. Please make sure both dates use YYYY-MM-DD " +
			"and the end date is on or after the start date, then ask me again."
	}
	return fmt.Sprintf("Sorry, the %s service isn't responding right now. Please try again in a moment.", kind)
}
