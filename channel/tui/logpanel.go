package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const logBacklog = 500

var logLevelStyles = map[string]lipgloss.Style{
	"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
}

// LogPanel shows the tail of the process log. Lines are slog text records;
// the timestamp is dropped and the line is coloured by level.
type LogPanel struct {
	viewport viewport.Model
	lines    []string
}

func NewLogPanel() *LogPanel {
	return &LogPanel{viewport: viewport.New(0, 0)}
}

func (p *LogPanel) Update(msg tea.Msg) (Panel, tea.Cmd) {
	if line, ok := msg.(LogLineMsg); ok {
		p.append(line.Line)
		return p, nil
	}
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *LogPanel) append(raw string) {
	p.lines = append(p.lines, formatLogLine(raw))
	if over := len(p.lines) - logBacklog; over > 0 {
		p.lines = p.lines[over:]
	}
	p.viewport.SetContent(strings.Join(p.lines, "\n"))
	p.viewport.GotoBottom()
}

func (p *LogPanel) View() string { return p.viewport.View() }

func (p *LogPanel) SetSize(width, height int) {
	p.viewport.Width = width
	p.viewport.Height = height
}

// formatLogLine turns `time=... level=WARN msg="x" k=v` into `WARN msg="x" k=v`.
func formatLogLine(raw string) string {
	line := strings.TrimRight(raw, "\n")
	if strings.HasPrefix(line, "time=") {
		if _, rest, ok := strings.Cut(line, " "); ok {
			line = rest
		}
	}
	level := "INFO"
	if after, ok := strings.CutPrefix(line, "level="); ok {
		level, line, _ = strings.Cut(after, " ")
		line = level + " " + line
	}
	style, ok := logLevelStyles[level]
	if !ok {
		style = logLevelStyles["INFO"]
	}
	return style.Render(line)
}
