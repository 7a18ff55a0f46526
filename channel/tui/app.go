package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultStatusRatio = 0.35
	defaultLogRatio    = 0.15
)

var separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// App is the root bubbletea model that orchestrates panels and layout.
type App struct {
	statusPanel *StatusPanel
	chatPanel   Panel
	logPanel    Panel
	inputPanel  Panel

	width, height int
	statusRatio   float64
	logRatio      float64
	hideLog       bool // toggled with ctrl+l

	// InputCh receives user input text from the input panel.
	InputCh chan string
}

// NewApp creates the root TUI model. commands feed the input completions.
func NewApp(prompt string, commands ...string) *App {
	return &App{
		statusPanel: NewStatusPanel(),
		chatPanel:   NewChatPanel(),
		logPanel:    NewLogPanel(),
		inputPanel:  NewInputPanel(prompt, commands...),
		statusRatio: defaultStatusRatio,
		logRatio:    defaultLogRatio,
		InputCh:     make(chan string, 16),
	}
}

func (m *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.statusPanel.Tick())
}

func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlL:
			m.hideLog = !m.hideLog
			m.recalcLayout()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			p, cmd := m.chatPanel.Update(msg)
			m.chatPanel = p
			return m, cmd
		}
		// All other keys go to input panel.
		p, cmd := m.inputPanel.Update(msg)
		m.inputPanel = p
		cmds = append(cmds, cmd)

	case InputSubmitMsg:
		// Echo user message to chat panel.
		p, cmd := m.chatPanel.Update(ChatMsg{Text: msg.Text, IsUser: true})
		m.chatPanel = p
		cmds = append(cmds, cmd)
		// Send to channel consumer (non-blocking).
		select {
		case m.InputCh <- msg.Text:
		default:
		}

	case LogLineMsg:
		p, cmd := m.logPanel.Update(msg)
		m.logPanel = p
		cmds = append(cmds, cmd)

	case ChatMsg:
		p, cmd := m.chatPanel.Update(msg)
		m.chatPanel = p
		cmds = append(cmds, cmd)

	case StateMsg, spinner.TickMsg:
		_, cmd := m.statusPanel.Update(msg)
		cmds = append(cmds, cmd)

	default:
		// Broadcast unknown messages to input panel (e.g. blink cursor).
		p, cmd := m.inputPanel.Update(msg)
		m.inputPanel = p
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *App) View() string {
	if m.width == 0 || m.height == 0 {
		return "initializing..."
	}

	sep := separatorStyle.Render(strings.Repeat("─", m.width))

	parts := []string{m.statusPanel.View(), sep, m.chatPanel.View(), sep}
	if !m.hideLog {
		parts = append(parts, m.logPanel.View(), sep)
	}
	parts = append(parts, m.inputPanel.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *App) recalcLayout() {
	const inputH = 1
	sepLines := 3
	if m.hideLog {
		sepLines = 2
	}

	usable := max(m.height-inputH-sepLines, 3)
	statusH := max(int(float64(usable)*m.statusRatio), 2)
	logH := 0
	if !m.hideLog {
		logH = max(int(float64(usable)*m.logRatio), 1)
	}
	chatH := max(usable-statusH-logH, 1)

	m.statusPanel.SetSize(m.width, statusH)
	m.chatPanel.SetSize(m.width, chatH)
	m.logPanel.SetSize(m.width, logH)
	m.inputPanel.SetSize(m.width, inputH)
}
