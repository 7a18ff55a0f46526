package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const inputHistorySize = 50

// InputPanel is the chat prompt. Up and Down walk previously submitted
// lines; Tab completes slash commands.
type InputPanel struct {
	input   textinput.Model
	history []string
	cursor  int // len(history) means the live line
	draft   string
}

// NewInputPanel creates an input panel. commands are offered as
// completions when the line starts with "/".
func NewInputPanel(prompt string, commands ...string) *InputPanel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Placeholder = "say something, or /help"
	ti.ShowSuggestions = len(commands) > 0
	ti.SetSuggestions(commands)
	ti.KeyMap.NextSuggestion = key.NewBinding(key.WithKeys("ctrl+n"))
	ti.KeyMap.PrevSuggestion = key.NewBinding(key.WithKeys("ctrl+p"))
	ti.Focus()
	return &InputPanel{input: ti}
}

func (p *InputPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEnter:
			return p, p.submit()
		case tea.KeyUp:
			p.recall(-1)
			return p, nil
		case tea.KeyDown:
			p.recall(1)
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *InputPanel) submit() tea.Cmd {
	text := strings.TrimSpace(p.input.Value())
	if text == "" {
		return nil
	}
	if n := len(p.history); n == 0 || p.history[n-1] != text {
		p.history = append(p.history, text)
		if over := len(p.history) - inputHistorySize; over > 0 {
			p.history = p.history[over:]
		}
	}
	p.cursor = len(p.history)
	p.draft = ""
	p.input.Reset()
	return func() tea.Msg { return InputSubmitMsg{Text: text} }
}

func (p *InputPanel) recall(step int) {
	next := p.cursor + step
	if next < 0 || next > len(p.history) {
		return
	}
	if p.cursor == len(p.history) {
		p.draft = p.input.Value()
	}
	p.cursor = next
	if next == len(p.history) {
		p.input.SetValue(p.draft)
	} else {
		p.input.SetValue(p.history[next])
	}
	p.input.CursorEnd()
}

func (p *InputPanel) View() string { return p.input.View() }

func (p *InputPanel) SetSize(width, _ int) {
	p.input.Width = max(width-lipgloss.Width(p.input.Prompt)-1, 1)
}
