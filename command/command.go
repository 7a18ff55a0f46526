// Package command parses chat input into planner operations. Plain text is a
// chat message; a leading slash selects a command.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Kind identifies a parsed command.
type Kind string

const (
	Say       Kind = "say"
	Set       Kind = "set"
	Toggle    Kind = "toggle"
	Start     Kind = "start"
	Edit      Kind = "edit"
	Flights   Kind = "flights"
	Itinerary Kind = "itinerary"
	Prefs     Kind = "prefs"
	Interests Kind = "interests"
	Export    Kind = "export"
	Help      Kind = "help"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// ClearValue as the /set value empties the field.
const ClearValue = "-"

// Command is one parsed line of input.
type Command struct {
	Kind  Kind
	Field string // Set
	Arg   string // Set value, Toggle interest, Say text
}

type spec struct {
	kind  Kind
	usage string
	help  string
	args  int // 0 none, 1 rest of line, 2 field + rest
}

var specs = []spec{
	{Set, "/set <field> <value>", "set destination, start, end, travelers, budget, comfort or persona; `-` clears it", 2},
	{Toggle, "/toggle <interest>", "select or deselect an interest", 1},
	{Start, "/start", "check the required details and start planning", 0},
	{Edit, "/edit", "go back to editing preferences", 0},
	{Flights, "/flights", "search flights for the current preferences", 0},
	{Itinerary, "/itinerary", "build a day-by-day itinerary", 0},
	{Prefs, "/prefs", "show the current preferences", 0},
	{Interests, "/interests", "list interests and the current selection", 0},
	{Export, "/export", "export the itinerary as an iCalendar file", 0},
	{Help, "/help", "show this help", 0},
}

var aliases = map[string]Kind{
	"plan":   Start,
	"flight": Flights,
	"trip":   Itinerary,
	"?":      Help,
}

// Parse turns one line of input into a Command.
func Parse(input string) (Command, error) {
	text := strings.TrimSpace(input)
	if !strings.HasPrefix(text, "/") {
		return Command{Kind: Say, Arg: text}, nil
	}

	name, rest, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)

	kind := Kind(name)
	if k, ok := aliases[name]; ok {
		kind = k
	}
	s, ok := lo.Find(specs, func(s spec) bool { return s.kind == kind })
	if !ok {
		return Command{}, fmt.Errorf("%w: /%s", ErrUnknownCommand, name)
	}

	switch s.args {
	case 2:
		field, value, _ := strings.Cut(rest, " ")
		value = strings.TrimSpace(value)
		if field == "" || value == "" {
			return Command{}, fmt.Errorf("%w: %s", ErrUsage, s.usage)
		}
		if value == ClearValue {
			value = ""
		}
		return Command{Kind: kind, Field: strings.ToLower(field), Arg: value}, nil
	case 1:
		if rest == "" {
			return Command{}, fmt.Errorf("%w: %s", ErrUsage, s.usage)
		}
		return Command{Kind: kind, Arg: rest}, nil
	default:
		return Command{Kind: kind}, nil
	}
}

// HelpText lists every command as a Markdown bullet list.
func HelpText() string {
	lines := lo.Map(specs, func(s spec, _ int) string {
		return fmt.Sprintf("- `%s` %s", s.usage, s.help)
	})
	return "Type anything to chat, or use a command:\n\n" + strings.Join(lines, "\n")
}

// Names returns every command as typed, e.g. "/set", for completion.
func Names() []string {
	return lo.Map(specs, func(s spec, _ int) string {
		return "/" + string(s.kind)
	})
}
