package channel

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linanwx/tripbot/channel/tui"
	"github.com/linanwx/tripbot/command"
	"github.com/linanwx/tripbot/logger"
	"github.com/linanwx/tripbot/render"
)

const tuiSessionKey = "cli"

// TUIChannel is the terminal channel when stdin is a TTY. The status panel
// is redrawn from the state source on every state response.
type TUIChannel struct {
	cfg      CLIConfig
	app      *tui.App
	program  *tea.Program
	messages chan *Message
	done     chan struct{}
	closed   sync.Once
	wg       sync.WaitGroup
	seq      atomic.Int64
	stopOnce sync.Once
}

func newTUIChannel(cfg CLIConfig) *TUIChannel {
	if cfg.OnExit == nil {
		cfg.OnExit = interruptSelf
	}
	return &TUIChannel{
		cfg:      cfg,
		messages: make(chan *Message, cliMessageBufferSize),
		done:     make(chan struct{}),
	}
}

func (c *TUIChannel) Name() string { return "cli" }

func (c *TUIChannel) Start(ctx context.Context) error {
	c.app = tui.NewApp(c.cfg.Prompt, command.Names()...)
	c.program = tea.NewProgram(c.app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	logger.Intercept(&logWriter{program: c.program})

	c.wg.Add(2)
	go c.run()
	go c.forwardInput(ctx)
	c.pushState()

	logger.Info("cli channel started (TUI mode)")
	return nil
}

// run owns the bubbletea program. Leaving the UI ends the service.
func (c *TUIChannel) run() {
	defer c.wg.Done()
	if _, err := c.program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
	}
	exited := false
	c.closed.Do(func() {
		close(c.done)
		exited = true
	})
	if exited {
		c.cfg.OnExit()
	}
}

func (c *TUIChannel) forwardInput(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case text, ok := <-c.app.InputCh:
			if !ok {
				return
			}
			if isExit(text) {
				c.program.Quit()
				return
			}
			select {
			case c.messages <- localMessage(c.seq.Add(1), text):
			case <-c.done:
				return
			}
		}
	}
}

func (c *TUIChannel) Stop() error {
	c.stopOnce.Do(func() {
		c.closed.Do(func() { close(c.done) })
		if c.program != nil {
			c.program.Quit()
		}
		c.wg.Wait()
		logger.Restore()
		close(c.messages)
		logger.Info("cli channel stopped")
	})
	return nil
}

// Send routes assistant messages and notices to the chat panel and state
// changes to the status panel.
func (c *TUIChannel) Send(_ context.Context, resp *Response) error {
	if c.program == nil {
		return nil
	}
	switch resp.Kind() {
	case KindState:
		c.pushState()
	case KindMessage:
		c.program.Send(tui.ChatMsg{Text: render.Text(resp.Text)})
	default:
		c.program.Send(tui.ChatMsg{Text: render.Text(resp.Text), Notice: true})
	}
	return nil
}

func (c *TUIChannel) Messages() <-chan *Message { return c.messages }

func (c *TUIChannel) pushState() {
	if c.cfg.State == nil || c.program == nil {
		return
	}
	c.program.Send(tui.StateMsg{State: c.cfg.State(tuiSessionKey)})
}

func interruptSelf() {
	if p, err := os.FindProcess(os.Getpid()); err == nil {
		_ = p.Signal(syscall.SIGINT)
	}
}

// logWriter feeds logger output into the log panel, one record per line.
type logWriter struct {
	program *tea.Program
}

func (w *logWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(line) > 0 {
			w.program.Send(tui.LogLineMsg{Line: string(line)})
		}
	}
	return len(p), nil
}
