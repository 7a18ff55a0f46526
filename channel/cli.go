package channel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/linanwx/tripbot/logger"
	"github.com/linanwx/tripbot/render"
)

const (
	cliMessageBufferSize = 10
	cliStopWaitTimeout   = 500 * time.Millisecond
	defaultCLIPrompt     = "tripbot> "
)

// CLIConfig configures the terminal channel.
type CLIConfig struct {
	Prompt string
	State  StateSource // used by the TUI status panel; may be nil
	In     io.Reader   // defaults to os.Stdin
	Out    io.Writer   // defaults to os.Stdout

	// OnExit runs when the user leaves the full-screen UI. Nil sends SIGINT
	// to the process.
	OnExit func()
}

// NewCLIChannel creates a CLI channel.
// If stdin is a terminal, it returns a TUI-based channel; otherwise a plain scanner.
func NewCLIChannel(cfg CLIConfig) Channel {
	if cfg.Prompt == "" {
		cfg.Prompt = defaultCLIPrompt
	}
	if cfg.In == nil && term.IsTerminal(int(os.Stdin.Fd())) {
		return newTUIChannel(cfg)
	}
	return newPlainCLIChannel(cfg)
}

// plainCLIChannel implements the Channel interface using bufio.Scanner (for non-TTY).
type plainCLIChannel struct {
	prompt   string
	in       io.Reader
	out      io.Writer
	outMu    sync.Mutex
	messages chan *Message
	done     chan struct{}
	wg       sync.WaitGroup
	msgID    int64
	stopOnce sync.Once
}

func newPlainCLIChannel(cfg CLIConfig) *plainCLIChannel {
	c := &plainCLIChannel{
		prompt:   cfg.Prompt,
		in:       cfg.In,
		out:      cfg.Out,
		messages: make(chan *Message, cliMessageBufferSize),
		done:     make(chan struct{}),
	}
	if c.prompt == "" {
		c.prompt = defaultCLIPrompt
	}
	if c.in == nil {
		c.in = os.Stdin
	}
	if c.out == nil {
		c.out = os.Stdout
	}
	return c
}

func (c *plainCLIChannel) Name() string {
	return "cli"
}

func (c *plainCLIChannel) Start(ctx context.Context) error {
	logger.Info("cli channel started (plain mode)")

	c.wg.Add(1)
	go c.readInput(ctx)

	return nil
}

func (c *plainCLIChannel) Stop() error {
	c.stopOnce.Do(func() {
		close(c.done)

		waitDone := make(chan struct{})
		go func() {
			c.wg.Wait()
			close(waitDone)
		}()

		select {
		case <-waitDone:
			close(c.messages)
		case <-time.After(cliStopWaitTimeout):
			logger.Warn("cli channel stop timed out waiting for input loop")
		}

		logger.Info("cli channel stopped")
	})
	return nil
}

// Send prints chat messages and notices. State changes are printed only
// when they carry a rendered view.
func (c *plainCLIChannel) Send(_ context.Context, resp *Response) error {
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil
	}
	if resp.Kind() == KindMessage {
		text = "🤖 " + text
	}

	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, render.Text(text))
	fmt.Fprintln(c.out)
	fmt.Fprint(c.out, c.prompt)
	return nil
}

func (c *plainCLIChannel) Messages() <-chan *Message {
	return c.messages
}

func (c *plainCLIChannel) readInput(ctx context.Context) {
	defer c.wg.Done()

	scanner := bufio.NewScanner(c.in)
	c.printPrompt()

	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			c.printPrompt()
			continue
		}
		if isExit(text) {
			c.outMu.Lock()
			fmt.Fprintln(c.out, "Goodbye!")
			c.outMu.Unlock()
			return
		}

		c.msgID++
		msg := localMessage(c.msgID, text)

		select {
		case c.messages <- msg:
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *plainCLIChannel) printPrompt() {
	c.outMu.Lock()
	fmt.Fprint(c.out, c.prompt)
	c.outMu.Unlock()
}

// localMessage builds the Message for one line typed at the terminal.
func localMessage(seq int64, text string) *Message {
	return &Message{
		ID:        fmt.Sprintf("cli-%d", seq),
		ChannelID: "cli:local",
		UserID:    "local",
		Username:  os.Getenv("USER"),
		Text:      text,
		Metadata:  make(map[string]string),
	}
}

func isExit(text string) bool {
	switch text {
	case "exit", "quit", "/exit", "/quit":
		return true
	}
	return false
}
