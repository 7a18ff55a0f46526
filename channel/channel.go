// Package channel provides messaging channel interfaces and implementations.
package channel

import (
	"context"
	"fmt"
	"sort"

	"github.com/linanwx/tripbot/logger"
	"github.com/linanwx/tripbot/planner"
)

// Response metadata keys and kinds.
const (
	MetaKind = "kind" // one of the Kind* values
	MetaView = "view" // for KindState: preferences, flags, flights, itinerary, mode

	KindNotice  = "notice"  // command feedback, errors, help
	KindMessage = "message" // an assistant chat message
	KindState   = "state"   // session state changed; Text may carry a rendered view
)

// Message represents an incoming message from a channel.
type Message struct {
	ID        string            // Unique message ID
	ChannelID string            // Channel identifier (e.g., "web:<session>")
	UserID    string            // User identifier
	Username  string            // Human-readable username
	Text      string            // Message text
	Metadata  map[string]string // Channel-specific metadata
}

// Response represents a response to send back.
type Response struct {
	Text     string            // Markdown text
	ReplyTo  string            // Channel-local session id ("" for single-session channels)
	Metadata map[string]string // MetaKind, MetaView
}

// Kind returns the response kind, KindNotice when unset.
func (r *Response) Kind() string {
	if k := r.Metadata[MetaKind]; k != "" {
		return k
	}
	return KindNotice
}

// StateSource returns the current state of a session, creating it if needed.
type StateSource func(key string) planner.State

// Channel is the interface for messaging channels.
type Channel interface {
	// Name returns the channel name ("cli" or "web").
	Name() string

	// Start begins listening for messages.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the channel.
	Stop() error

	// Send sends a response message.
	Send(ctx context.Context, resp *Response) error

	// Messages returns a channel for receiving incoming messages.
	Messages() <-chan *Message
}

// Manager manages multiple channels as a pure registry.
type Manager struct {
	channels map[string]Channel
}

// NewManager creates a new channel manager.
func NewManager() *Manager {
	return &Manager{
		channels: make(map[string]Channel),
	}
}

// Register adds a channel to the manager and logs it. Nil is silently ignored.
func (m *Manager) Register(ch Channel) {
	if ch == nil {
		return
	}
	m.channels[ch.Name()] = ch
	logger.Info("channel registered", "channel", ch.Name())
}

// Get returns a channel by name.
func (m *Manager) Get(name string) (Channel, bool) {
	ch, ok := m.channels[name]
	return ch, ok
}

// SendTo sends a response to a named channel.
func (m *Manager) SendTo(ctx context.Context, channelName string, resp *Response) error {
	ch, ok := m.channels[channelName]
	if !ok {
		return fmt.Errorf("channel not found: %s", channelName)
	}
	return ch.Send(ctx, resp)
}

// StartAll starts all registered channels. The web channel starts first so
// its address is logged before the terminal is taken over.
func (m *Manager) StartAll(ctx context.Context) error {
	for _, name := range m.names() {
		if err := m.channels[name].Start(ctx); err != nil {
			return fmt.Errorf("start %s channel: %w", name, err)
		}
	}
	return nil
}

// StopAll stops all registered channels.
func (m *Manager) StopAll() error {
	for _, ch := range m.channels {
		if err := ch.Stop(); err != nil {
			return err
		}
	}
	return nil
}

// Each iterates over all registered channels.
func (m *Manager) Each(fn func(Channel)) {
	for _, ch := range m.channels {
		fn(ch)
	}
}

func (m *Manager) names() []string {
	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "cli" || names[j] == "cli" {
			return names[j] == "cli"
		}
		return names[i] < names[j]
	})
	return names
}
