package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linanwx/tripbot/channel"
	"github.com/linanwx/tripbot/command"
	"github.com/linanwx/tripbot/logger"
	"github.com/linanwx/tripbot/planner"
	"github.com/linanwx/tripbot/render"
	"github.com/linanwx/tripbot/session"
)

// Dispatcher routes channel messages to planning sessions. It is the bridge
// between the channel layer (pure I/O) and the planner sessions, and it
// forwards every session change back to the channel that owns the session.
type Dispatcher struct {
	channels  *channel.Manager
	sessions  *session.Manager
	base      planner.Options
	exportDir string
}

// NewDispatcher creates a dispatcher. base is the template for new
// sessions; its Observer and Key are set per session.
func NewDispatcher(channels *channel.Manager, base planner.Options, idleTTL time.Duration) *Dispatcher {
	d := &Dispatcher{channels: channels, base: base}
	d.sessions = session.NewManager(idleTTL, d.newSession)
	return d
}

// Sessions exposes the session registry.
func (d *Dispatcher) Sessions() *session.Manager { return d.sessions }

// SetExportDir sets where terminal /export writes calendar files.
func (d *Dispatcher) SetExportDir(dir string) { d.exportDir = dir }

// State returns the snapshot of key, creating the session on first use.
func (d *Dispatcher) State(key string) planner.State {
	return d.sessions.Get(key).Snapshot()
}

// Run starts a goroutine for each channel that reads messages and dispatches
// them to sessions. Blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.channels.Each(func(ch channel.Channel) {
		go d.processChannel(ctx, ch)
	})
	<-ctx.Done()
}

// Greet sends the existing conversation of key to its channel. Used when a
// channel opens so the greeting is shown before the first input.
func (d *Dispatcher) Greet(ctx context.Context, key string) {
	st := d.State(key)
	for _, m := range st.Messages {
		if m.Author == planner.AuthorAssistant {
			d.send(ctx, key, channel.KindMessage, "", m.Body)
		}
	}
	d.send(ctx, key, channel.KindNotice, "", "Type /help to see what I can do.")
}

func (d *Dispatcher) processChannel(ctx context.Context, ch channel.Channel) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch.Messages():
			if !ok {
				return
			}
			d.dispatch(ctx, msg)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, msg *channel.Message) {
	key := d.route(msg)
	logger.Debug("dispatching message",
		"channelID", msg.ChannelID,
		"session", key,
		"text", truncate(msg.Text, 50),
	)

	reply := d.handle(ctx, key, msg.Text)
	if reply != "" {
		d.send(ctx, key, channel.KindNotice, "", reply)
	}
}

// handle executes one line of input against the session for key and
// returns the notice to show, if any. Assistant messages reach the channel
// through the session observer.
func (d *Dispatcher) handle(ctx context.Context, key, text string) string {
	cmd, err := command.Parse(text)
	if err != nil {
		return fmt.Sprintf("⚠️ %v. Type /help for the list of commands.", err)
	}
	s := d.sessions.Get(key)

	switch cmd.Kind {
	case command.Say:
		_, err = s.SubmitUserMessage(ctx, cmd.Arg)
	case command.Set:
		err = s.SetPreference(planner.Field(cmd.Field), cmd.Arg)
		if err == nil && cmd.Arg == "" {
			return fmt.Sprintf("✅ %s cleared.", cmd.Field)
		}
		if err == nil {
			return fmt.Sprintf("✅ %s set to %s.", cmd.Field, cmd.Arg)
		}
	case command.Toggle:
		var on bool
		if on, err = s.ToggleInterest(cmd.Arg); err == nil {
			if on {
				return "✅ Added interest: " + cmd.Arg
			}
			return "Removed interest: " + cmd.Arg
		}
	case command.Start:
		err = s.RequestStartPlanning()
	case command.Edit:
		s.EditPreferences()
		return "Editing preferences. Use /set and /toggle, then /start when ready."
	case command.Flights:
		err = s.SearchFlights(ctx)
	case command.Itinerary:
		err = s.GenerateItinerary(ctx)
	case command.Prefs:
		return render.Preferences(s.Preferences())
	case command.Interests:
		return render.Interests(s.Preferences())
	case command.Export:
		return d.export(key, s.Snapshot())
	case command.Help:
		return command.HelpText()
	}
	return errorNotice(err)
}

func errorNotice(err error) string {
	var missing *planner.MissingFieldError
	switch {
	case err == nil,
		errors.Is(err, planner.ErrOperationInFlight),
		errors.Is(err, planner.ErrEmptyMessage):
		// In-flight requests already produced an assistant notice.
		return ""
	case errors.As(err, &missing):
		names := make([]string, 0, len(missing.Fields))
		for _, f := range missing.Fields {
			names = append(names, string(f))
		}
		return "⚠️ Please fill in " + strings.Join(names, ", ") + " before we start. Use /set <field> <value>."
	case errors.Is(err, planner.ErrUnknownField):
		return fmt.Sprintf("⚠️ %v. Fields: %s.", err, fieldList())
	case errors.Is(err, planner.ErrUnknownInterest):
		return fmt.Sprintf("⚠️ %v. Type /interests to see the choices.", err)
	default:
		return fmt.Sprintf("⚠️ %v", err)
	}
}

func fieldList() string {
	names := make([]string, 0, len(planner.Fields))
	for _, f := range planner.Fields {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func (d *Dispatcher) export(key string, st planner.State) string {
	if len(st.Itinerary) == 0 {
		return "There's no itinerary to export yet. Ask me to plan your days first."
	}
	if _, sid, ok := strings.Cut(key, channel.WebKeyPrefix); ok && sid != "" {
		return "[Download your itinerary](/api/itinerary.ics)"
	}

	dir := d.exportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Sprintf("⚠️ export failed: %v", err)
	}
	path := filepath.Join(dir, "itinerary-"+safeFileName(key)+".ics")
	if err := os.WriteFile(path, []byte(render.Calendar(st.Itinerary, st.Preferences, time.Now())), 0o644); err != nil {
		return fmt.Sprintf("⚠️ export failed: %v", err)
	}
	logger.Info("itinerary exported", "session", key, "path", path)
	return "📅 Itinerary saved to " + path
}

// newSession is the session.Factory. The observer forwards session changes
// to the channel owning key.
func (d *Dispatcher) newSession(key string) *planner.Session {
	opts := d.base
	opts.Key = key
	var s *planner.Session
	opts.Observer = func(ev planner.Event) { d.forward(key, s, ev) }
	s = planner.NewSession(opts)
	return s
}

func (d *Dispatcher) forward(key string, s *planner.Session, ev planner.Event) {
	ctx := context.Background()
	switch ev.Type {
	case planner.EventMessage:
		if ev.Message.Author == planner.AuthorAssistant {
			d.send(ctx, key, channel.KindMessage, "", ev.Message.Body)
		}
	case planner.EventFlights:
		d.send(ctx, key, channel.KindState, string(ev.Type), render.Flights(s.Snapshot().Flights))
	case planner.EventItinerary:
		d.send(ctx, key, channel.KindState, string(ev.Type), render.Itinerary(s.Snapshot().Itinerary))
	default:
		d.send(ctx, key, channel.KindState, string(ev.Type), "")
	}
}

func (d *Dispatcher) send(ctx context.Context, key, kind, view, text string) {
	name, replyTo := target(key)
	if name == "" {
		return
	}
	resp := &channel.Response{
		Text:     text,
		ReplyTo:  replyTo,
		Metadata: map[string]string{channel.MetaKind: kind},
	}
	if view != "" {
		resp.Metadata[channel.MetaView] = view
	}
	if err := d.channels.SendTo(ctx, name, resp); err != nil {
		logger.Warn("send to channel failed", "channel", name, "session", key, "err", err)
	}
}

// route determines the session key for a message.
func (d *Dispatcher) route(msg *channel.Message) string {
	if msg == nil || msg.ChannelID == "cli:local" {
		return "cli"
	}
	if strings.HasPrefix(msg.ChannelID, channel.WebKeyPrefix) {
		return msg.ChannelID
	}
	sessionKey := msg.ChannelID
	if msg.UserID != "" {
		sessionKey = msg.ChannelID + ":" + msg.UserID
	}
	return sessionKey
}

// target maps a session key back to the channel name and channel-local id.
func target(key string) (name, replyTo string) {
	switch {
	case key == "cli":
		return "cli", ""
	case strings.HasPrefix(key, channel.WebKeyPrefix):
		return "web", strings.TrimPrefix(key, channel.WebKeyPrefix)
	default:
		return "", ""
	}
}

func safeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, s)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
