package channel

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/linanwx/tripbot/internal/health"
	"github.com/linanwx/tripbot/planner"
)

type fakeStates struct {
	mu     sync.Mutex
	states map[string]planner.State
	asked  []string
}

func (f *fakeStates) get(key string) planner.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.asked = append(f.asked, key)
	if st, ok := f.states[key]; ok {
		return st
	}
	return planner.State{Preferences: planner.NewPreferences(""), Flights: []planner.FlightOffer{}, Itinerary: []planner.ItineraryDay{}}
}

func newWebTest(t *testing.T, states *fakeStates) (*WebChannel, *httptest.Server, *http.Client) {
	t.Helper()
	ch := NewWebChannel(WebConfig{State: states.get, Now: func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }})
	srv := httptest.NewServer(ch.Handler())
	t.Cleanup(srv.Close)
	jar, _ := cookiejar.New(nil)
	return ch, srv, &http.Client{Jar: jar}
}

func TestWebIndexIssuesSessionCookie(t *testing.T) {
	_, srv, client := newWebTest(t, &fakeStates{})
	resp, err := client.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<title>tripbot</title>") {
		t.Fatal("index page not served")
	}
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == webSessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("session cookie not issued")
	}
}

func TestWebSendQueuesMessageForSession(t *testing.T) {
	ch, srv, client := newWebTest(t, &fakeStates{})

	resp, err := client.Post(srv.URL+"/api/send", "application/json", strings.NewReader(`{"text":" find me a flight "}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	select {
	case msg := <-ch.Messages():
		if !strings.HasPrefix(msg.ChannelID, WebKeyPrefix) || msg.UserID == "" {
			t.Fatalf("message routing = %+v", msg)
		}
		if msg.Text != "find me a flight" {
			t.Fatalf("text = %q", msg.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("no message queued")
	}

	resp, err = client.Post(srv.URL+"/api/send", "application/json", strings.NewReader(`{"text":"  "}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank text status = %d", resp.StatusCode)
	}
}

func TestWebStateIncludesRenderedViews(t *testing.T) {
	states := &fakeStates{}
	_, srv, client := newWebTest(t, states)

	resp, err := client.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got struct {
		Session string            `json:"session"`
		Views   map[string]string `json:"views"`
		Flights []any             `json:"flights"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Session == "" || got.Flights == nil {
		t.Fatalf("state = %+v", got)
	}
	if !strings.Contains(got.Views["preferences"], "<table>") {
		t.Fatalf("preferences view = %q", got.Views["preferences"])
	}
	if len(states.asked) != 1 || states.asked[0] != WebKeyPrefix+got.Session {
		t.Fatalf("state requested for %v", states.asked)
	}
}

func TestWebCalendarRequiresItinerary(t *testing.T) {
	const sid = "6f1c1c55-5d1e-4b2b-9a77-0a4f7f3f8d10"
	p := planner.NewPreferences("")
	p.Destination = "Rome"
	days, _ := planner.MockItinerary{}.BuildItinerary(context.Background(), p)
	states := &fakeStates{states: map[string]planner.State{
		WebKeyPrefix + sid: {Preferences: p, Itinerary: days},
	}}
	_, srv, client := newWebTest(t, states)

	resp, err := client.Get(srv.URL + "/api/itinerary.ics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status without itinerary = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/itinerary.ics?session=" + sid)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "BEGIN:VCALENDAR") {
		t.Fatalf("status = %d body = %q", resp.StatusCode, body)
	}
}

func TestWebSendPushesToSocket(t *testing.T) {
	const sid = "0b6f7d3e-6a52-4f0e-9a3c-8d2f8a1e4c11"
	ch, srv, _ := newWebTest(t, &fakeStates{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session=" + sid
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	deadline := time.Now().Add(time.Second)
	for {
		ch.mu.Lock()
		n := len(ch.conns[sid])
		ch.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("socket not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	err = ch.Send(ctx, &Response{
		Text:     "I found **4** flights",
		ReplyTo:  sid,
		Metadata: map[string]string{MetaKind: KindMessage},
	})
	if err != nil {
		t.Fatal(err)
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ev struct {
		Kind string `json:"kind"`
		Text string `json:"text"`
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != KindMessage || !strings.Contains(ev.HTML, "<strong>4</strong>") {
		t.Fatalf("event = %+v", ev)
	}
}

func TestWebHealth(t *testing.T) {
	ch, srv, client := newWebTest(t, &fakeStates{})

	resp, err := client.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status without reporter = %d", resp.StatusCode)
	}

	ch.cfg.Health = func() health.Snapshot {
		return health.Snapshot{Status: "healthy", Channels: []string{"web"}}
	}
	resp, err = client.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var got health.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "healthy" || len(got.Channels) != 1 {
		t.Fatalf("health = %+v", got)
	}
}

func TestWebSendBlockedDuringStopIsRejected(t *testing.T) {
	ch, srv, client := newWebTest(t, &fakeStates{})
	post := func() int {
		resp, err := client.Post(srv.URL+"/api/send", "application/json", strings.NewReader(`{"text":"hello"}`))
		if err != nil {
			t.Error(err)
			return 0
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	for range webMessageBufferSize {
		if got := post(); got != http.StatusAccepted {
			t.Fatalf("filling queue: status = %d", got)
		}
	}

	blocked := make(chan int, 1)
	go func() { blocked <- post() }()
	time.Sleep(50 * time.Millisecond)

	if err := ch.Stop(); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-blocked:
		if got != http.StatusServiceUnavailable {
			t.Fatalf("blocked send status = %d, want 503", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("blocked send did not return after Stop")
	}
	if got := post(); got != http.StatusServiceUnavailable {
		t.Fatalf("send after stop status = %d", got)
	}
}
