package planner

import (
	"testing"
	"time"
)

func TestConversationPreservesInsertionOrder(t *testing.T) {
	fixed := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	c := NewConversation(func() time.Time { return fixed })

	m1 := c.AppendUser("first")
	m2 := c.AppendAssistant("second")
	m3 := c.AppendUser("third")

	got := c.Messages()
	if len(got) != 3 {
		t.Fatalf("Len = %d, want 3", len(got))
	}
	for i, want := range []Message{m1, m2, m3} {
		if got[i] != want {
			t.Fatalf("Messages()[%d] = %+v, want %+v", i, got[i], want)
		}
	}
	if got[1].Author != AuthorAssistant || got[0].Author != AuthorUser {
		t.Fatalf("authors = %s, %s", got[0].Author, got[1].Author)
	}
}

func TestConversationIDsUniqueWithinSameInstant(t *testing.T) {
	fixed := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	c := NewConversation(func() time.Time { return fixed })

	seen := make(map[string]bool)
	for range 1000 {
		m := c.AppendUser("x")
		if seen[m.ID] {
			t.Fatalf("duplicate id %s", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestConversationMessagesReturnsCopy(t *testing.T) {
	c := NewConversation(nil)
	c.AppendUser("hello")
	snapshot := c.Messages()
	snapshot[0].Body = "mutated"
	if c.Messages()[0].Body != "hello" {
		t.Fatal("Messages() must not expose internal storage")
	}
}
