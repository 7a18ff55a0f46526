package planner

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Author identifies who wrote a message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Message is one immutable chat entry.
type Message struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is an append-only, insertion-ordered chat log.
type Conversation struct {
	mu       sync.RWMutex
	seq      uint64
	messages []Message
	now      func() time.Time
}

// NewConversation creates an empty log. A nil clock uses time.Now.
func NewConversation(now func() time.Time) *Conversation {
	if now == nil {
		now = time.Now
	}
	return &Conversation{now: now}
}

// AppendUser appends a user-authored message.
func (c *Conversation) AppendUser(text string) Message {
	return c.append(AuthorUser, text)
}

// AppendAssistant appends an assistant-authored message.
func (c *Conversation) AppendAssistant(text string) Message {
	return c.append(AuthorAssistant, text)
}

func (c *Conversation) append(author Author, text string) Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Ids come from the counter, not the clock: two appends in the same
	// instant must still differ.
	c.seq++
	m := Message{
		ID:        fmt.Sprintf("msg-%d", c.seq),
		Author:    author,
		Body:      text,
		CreatedAt: c.now(),
	}
	c.messages = append(c.messages, m)
	return m
}

// Messages returns a copy of the log in insertion order.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.messages)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}
