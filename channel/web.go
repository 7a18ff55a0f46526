package channel

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/linanwx/tripbot/internal/health"
	"github.com/linanwx/tripbot/logger"
	"github.com/linanwx/tripbot/render"
)

const (
	webMessageBufferSize = 64
	webSessionCookie     = "tripbot_session"
	webWriteTimeout      = 5 * time.Second
	webShutdownTimeout   = 3 * time.Second
	webMaxBodyBytes      = 16 << 10

	// WebKeyPrefix prefixes web session ids in session keys and channel ids.
	WebKeyPrefix = "web:"
)

//go:embed webui/index.html
var webIndexHTML []byte

// WebConfig configures the browser channel.
type WebConfig struct {
	Addr   string
	State  StateSource
	Health func() health.Snapshot
	Now    func() time.Time
}

// WebChannel serves a single-page chat UI. Each browser gets its own
// planning session, identified by a cookie. Responses are pushed over a
// websocket; the page reloads full state from /api/state.
type WebChannel struct {
	cfg      WebConfig
	server   *http.Server
	messages chan *Message
	msgID    atomic.Int64

	mu    sync.Mutex
	conns map[string]map[*websocket.Conn]struct{}

	// sendMu guards messages against close while a handler is queueing.
	sendMu   sync.RWMutex
	stopped  bool
	done     chan struct{}
	stopOnce sync.Once
}

// NewWebChannel creates the web channel.
func NewWebChannel(cfg WebConfig) *WebChannel {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &WebChannel{
		cfg:      cfg,
		messages: make(chan *Message, webMessageBufferSize),
		conns:    make(map[string]map[*websocket.Conn]struct{}),
		done:     make(chan struct{}),
	}
}

func (c *WebChannel) Name() string { return "web" }

// Handler returns the HTTP routes of the channel.
func (c *WebChannel) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", c.handleUI)
	mux.HandleFunc("GET /api/state", c.handleState)
	mux.HandleFunc("POST /api/send", c.handleSend)
	mux.HandleFunc("GET /api/itinerary.ics", c.handleCalendar)
	mux.HandleFunc("GET /api/health", c.handleHealth)
	mux.HandleFunc("GET /ws", c.handleWS)
	return mux
}

func (c *WebChannel) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("web channel listen %s: %w", c.cfg.Addr, err)
	}
	c.server = &http.Server{
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		if err := c.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web channel server error", "err", err)
		}
	}()
	logger.Info("web channel started", "addr", "http://"+ln.Addr().String())
	return nil
}

func (c *WebChannel) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		for _, set := range c.conns {
			for conn := range set {
				_ = conn.Close(websocket.StatusGoingAway, "server stopping")
			}
		}
		c.conns = make(map[string]map[*websocket.Conn]struct{})
		c.mu.Unlock()

		if c.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), webShutdownTimeout)
			defer cancel()
			err = c.server.Shutdown(ctx)
		}
		c.sendMu.Lock()
		c.stopped = true
		close(c.messages)
		c.sendMu.Unlock()
		logger.Info("web channel stopped")
	})
	return err
}

// Send pushes a response to every socket open for the session in ReplyTo.
// Responses for sessions without an open socket are dropped; the page
// recovers them from /api/state.
func (c *WebChannel) Send(ctx context.Context, resp *Response) error {
	payload, err := c.encodeEvent(resp)
	if err != nil {
		return err
	}

	c.mu.Lock()
	targets := make([]*websocket.Conn, 0, len(c.conns[resp.ReplyTo]))
	for conn := range c.conns[resp.ReplyTo] {
		targets = append(targets, conn)
	}
	c.mu.Unlock()

	for _, conn := range targets {
		wctx, cancel := context.WithTimeout(ctx, webWriteTimeout)
		if err := conn.Write(wctx, websocket.MessageText, payload); err != nil {
			logger.Debug("web push failed", "session", resp.ReplyTo, "err", err)
			c.removeConn(resp.ReplyTo, conn)
		}
		cancel()
	}
	return nil
}

func (c *WebChannel) Messages() <-chan *Message {
	return c.messages
}

func (c *WebChannel) encodeEvent(resp *Response) ([]byte, error) {
	html, err := render.HTML(resp.Text)
	if err != nil {
		return nil, err
	}
	event := []byte(`{}`)
	for _, kv := range []struct {
		path  string
		value any
	}{
		{"kind", resp.Kind()},
		{"view", resp.Metadata[MetaView]},
		{"text", resp.Text},
		{"html", html},
	} {
		if event, err = sjson.SetBytes(event, kv.path, kv.value); err != nil {
			return nil, fmt.Errorf("encode web event: %w", err)
		}
	}
	return event, nil
}

func (c *WebChannel) handleUI(w http.ResponseWriter, r *http.Request) {
	c.sessionID(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(webIndexHTML)
}

func (c *WebChannel) handleState(w http.ResponseWriter, r *http.Request) {
	sid := c.sessionID(w, r)
	if c.cfg.State == nil {
		http.Error(w, "state unavailable", http.StatusServiceUnavailable)
		return
	}
	st := c.cfg.State(WebKeyPrefix + sid)

	body, err := json.Marshal(st)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := map[string]string{
		"views.preferences": render.Preferences(st.Preferences),
		"views.interests":   render.Interests(st.Preferences),
		"views.flights":     render.Flights(st.Flights),
		"views.itinerary":   render.Itinerary(st.Itinerary),
		"views.flags":       render.Flags(st.Flags),
	}
	for path, md := range views {
		html, err := render.HTML(md)
		if err == nil {
			body, err = sjson.SetBytes(body, path, html)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	if body, err = sjson.SetBytes(body, "session", sid); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (c *WebChannel) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if c.cfg.Health == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "health unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(c.cfg.Health())
}

func (c *WebChannel) handleSend(w http.ResponseWriter, r *http.Request) {
	sid := c.sessionID(w, r)

	var req struct {
		Text string `json:"text"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, webMaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSONError(w, http.StatusBadRequest, "text is required")
		return
	}

	msg := &Message{
		ID:        fmt.Sprintf("web-%d", c.msgID.Add(1)),
		ChannelID: WebKeyPrefix + sid,
		UserID:    sid,
		Text:      text,
		Metadata:  map[string]string{"remote_addr": r.RemoteAddr},
	}
	if !c.enqueue(r.Context(), msg) {
		writeJSONError(w, http.StatusServiceUnavailable, "channel stopped")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// enqueue hands msg to the dispatcher. It reports false once the channel
// is stopping or the request is gone.
func (c *WebChannel) enqueue(ctx context.Context, msg *Message) bool {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.stopped {
		return false
	}
	select {
	case c.messages <- msg:
		return true
	case <-c.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *WebChannel) handleCalendar(w http.ResponseWriter, r *http.Request) {
	sid := c.sessionID(w, r)
	if c.cfg.State == nil {
		http.Error(w, "state unavailable", http.StatusServiceUnavailable)
		return
	}
	st := c.cfg.State(WebKeyPrefix + sid)
	if len(st.Itinerary) == 0 {
		http.Error(w, "no itinerary yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="itinerary.ics"`)
	_, _ = w.Write([]byte(render.Calendar(st.Itinerary, st.Preferences, c.cfg.Now())))
}

func (c *WebChannel) handleWS(w http.ResponseWriter, r *http.Request) {
	sid := c.sessionID(w, r)
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn("websocket accept failed", "err", err)
		return
	}

	c.mu.Lock()
	if c.conns[sid] == nil {
		c.conns[sid] = make(map[*websocket.Conn]struct{})
	}
	c.conns[sid][conn] = struct{}{}
	c.mu.Unlock()
	logger.Debug("websocket connected", "session", sid)

	// The page never sends over the socket; CloseRead handles control frames.
	<-conn.CloseRead(r.Context()).Done()
	c.removeConn(sid, conn)
	_ = conn.Close(websocket.StatusNormalClosure, "")
	logger.Debug("websocket disconnected", "session", sid)
}

func (c *WebChannel) removeConn(sid string, conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok := c.conns[sid]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(c.conns, sid)
		}
	}
}

// sessionID returns the caller's session id from the cookie or the
// "session" query parameter, issuing a new id when neither is a valid UUID.
func (c *WebChannel) sessionID(w http.ResponseWriter, r *http.Request) string {
	if ck, err := r.Cookie(webSessionCookie); err == nil {
		if id, err := uuid.Parse(ck.Value); err == nil {
			return id.String()
		}
	}
	if id, err := uuid.Parse(r.URL.Query().Get("session")); err == nil {
		return id.String()
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     webSessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	body, _ := sjson.SetBytes([]byte(`{}`), "error", msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
