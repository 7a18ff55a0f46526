package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	userMsgStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
	noticeMsgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
)

// ChatPanel displays conversation history in a scrollable viewport.
type ChatPanel struct {
	viewport viewport.Model
	msgs     []ChatMsg
}

// NewChatPanel creates a chat panel.
func NewChatPanel() *ChatPanel {
	vp := viewport.New(0, 0)
	vp.SetContent("")
	return &ChatPanel{viewport: vp}
}

func (p *ChatPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	switch msg := msg.(type) {
	case ChatMsg:
		p.msgs = append(p.msgs, msg)
		p.refresh()
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *ChatPanel) View() string {
	return p.viewport.View()
}

func (p *ChatPanel) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
	p.refresh()
}

func (p *ChatPanel) refresh() {
	wrap := lipgloss.NewStyle().Width(max(p.viewport.Width, 1))
	lines := make([]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		switch {
		case m.IsUser:
			lines = append(lines, userMsgStyle.Inherit(wrap).Render("> "+m.Text))
		case m.Notice:
			lines = append(lines, noticeMsgStyle.Inherit(wrap).Render(m.Text))
		default:
			lines = append(lines, wrap.Render("🤖 "+m.Text))
		}
	}
	p.viewport.SetContent(strings.Join(lines, "\n\n"))
	p.viewport.GotoBottom()
}
