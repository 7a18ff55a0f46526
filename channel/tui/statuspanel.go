package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linanwx/tripbot/planner"
	"github.com/linanwx/tripbot/render"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// StatusPanel shows the preference card, in-flight operations, and the
// latest flight and itinerary results.
type StatusPanel struct {
	viewport viewport.Model
	spinner  spinner.Model
	state    planner.State
	loaded   bool
}

// NewStatusPanel creates an empty status panel.
func NewStatusPanel() *StatusPanel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = busyStyle
	return &StatusPanel{viewport: viewport.New(0, 0), spinner: sp}
}

// Tick starts the spinner animation.
func (p *StatusPanel) Tick() tea.Cmd {
	return p.spinner.Tick
}

func (p *StatusPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		p.state = msg.State
		p.loaded = true
		p.refresh()
		return p, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *StatusPanel) View() string {
	header := titleStyle.Render("Trip planner")
	if p.loaded {
		header += "  " + string(p.state.Mode)
		if busy := render.Flags(p.state.Flags); busy != "" {
			header += "  " + p.spinner.View() + busyStyle.Render(busy)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, p.viewport.View())
}

func (p *StatusPanel) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = max(height-1, 1)
	p.refresh()
}

func (p *StatusPanel) refresh() {
	if !p.loaded {
		return
	}
	var b strings.Builder
	b.WriteString(render.Preferences(p.state.Preferences))
	if len(p.state.Flights) > 0 {
		fmt.Fprintf(&b, "\n\n### Flights\n\n%s", render.Flights(p.state.Flights))
	}
	if len(p.state.Itinerary) > 0 {
		fmt.Fprintf(&b, "\n\n### Itinerary\n\n%s", render.Itinerary(p.state.Itinerary))
	}
	p.viewport.SetContent(render.Text(b.String()))
}
