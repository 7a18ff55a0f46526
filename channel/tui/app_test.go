package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linanwx/tripbot/planner"
)

func TestAppForwardsSubmittedInput(t *testing.T) {
	app := NewApp("tripbot> ")
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	app.Update(InputSubmitMsg{Text: "find me a flight"})
	select {
	case got := <-app.InputCh:
		if got != "find me a flight" {
			t.Fatalf("InputCh = %q", got)
		}
	default:
		t.Fatal("input not forwarded")
	}
	if !strings.Contains(app.View(), "> find me a flight") {
		t.Fatal("user message not echoed in chat panel")
	}
}

func TestStatusPanelShowsStateAndBusyFlags(t *testing.T) {
	app := NewApp("tripbot> ")
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 60})

	p := planner.NewPreferences("")
	p.Destination = "Lisbon"
	app.Update(StateMsg{State: planner.State{
		Preferences: p,
		Mode:        planner.ModeChatting,
		Flags:       planner.AsyncFlags{SearchingFlights: true},
	}})

	view := app.View()
	for _, want := range []string{"Lisbon", "chatting", "searching flights"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestInputPanelIgnoresEmptySubmit(t *testing.T) {
	p := NewInputPanel("> ")
	if _, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatal("empty input produced a submit")
	}
}

func TestInputPanelHistory(t *testing.T) {
	p := NewInputPanel("> ", "/set", "/start")
	for _, line := range []string{"/set destination Rome", "hello"} {
		p.input.SetValue(line)
		if cmd := p.submit(); cmd == nil {
			t.Fatalf("submit %q produced no command", line)
		}
	}

	p.input.SetValue("draft")
	p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := p.input.Value(); got != "hello" {
		t.Fatalf("first recall = %q", got)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyUp})
	p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := p.input.Value(); got != "/set destination Rome" {
		t.Fatalf("oldest recall = %q", got)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := p.input.Value(); got != "draft" {
		t.Fatalf("draft not restored, got %q", got)
	}
}

func TestFormatLogLineDropsTimestamp(t *testing.T) {
	got := formatLogLine(`time=2024-06-01T09:00:00Z level=WARN msg="flight search failed" session=cli`)
	if strings.Contains(got, "time=") || !strings.Contains(got, `WARN msg="flight search failed" session=cli`) {
		t.Fatalf("formatLogLine = %q", got)
	}
}

func TestCtrlLTogglesLogPanel(t *testing.T) {
	app := NewApp("tripbot> ")
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	app.Update(LogLineMsg{Line: "level=INFO msg=marker-line"})
	if !strings.Contains(app.View(), "marker-line") {
		t.Fatal("log line not shown")
	}
	app.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if strings.Contains(app.View(), "marker-line") {
		t.Fatal("log panel still shown after ctrl+l")
	}
}
