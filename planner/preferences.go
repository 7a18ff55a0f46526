package planner

import (
	"fmt"
	"slices"
	"strings"
)

// Budget is the spending tier that drives flight prices and accommodation.
type Budget string

const (
	BudgetLow    Budget = "budget"
	BudgetMid    Budget = "mid-range"
	BudgetLuxury Budget = "luxury"
)

// Comfort is the requested comfort level.
type Comfort string

const (
	ComfortBasic   Comfort = "basic"
	ComfortComfort Comfort = "comfort"
	ComfortPremium Comfort = "premium"
	ComfortLuxury  Comfort = "luxury"
)

// Persona is the tone label shown next to assistant replies. It does not
// change what the generators produce.
type Persona string

const (
	PersonaFriendly  Persona = "friendly"
	PersonaLuxury    Persona = "luxury"
	PersonaAdventure Persona = "adventure"
	PersonaFamily    Persona = "family"
	PersonaBudget    Persona = "budget"
)

// Field names a scalar preference that SetField accepts.
type Field string

const (
	FieldDestination Field = "destination"
	FieldStartDate   Field = "start"
	FieldEndDate     Field = "end"
	FieldTravelers   Field = "travelers"
	FieldBudget      Field = "budget"
	FieldComfort     Field = "comfort"
	FieldPersona     Field = "persona"
)

// Fields lists every settable field in form order.
var Fields = []Field{
	FieldPersona, FieldDestination, FieldStartDate, FieldEndDate,
	FieldTravelers, FieldBudget, FieldComfort,
}

var (
	Budgets        = []Budget{BudgetLow, BudgetMid, BudgetLuxury}
	Comforts       = []Comfort{ComfortBasic, ComfortComfort, ComfortPremium, ComfortLuxury}
	Personas       = []Persona{PersonaFriendly, PersonaLuxury, PersonaAdventure, PersonaFamily, PersonaBudget}
	TravelerRanges = []string{"1-2", "3-4", "5-6", "7+"}

	// InterestCatalog is the fixed set of interest tags a traveller can pick.
	InterestCatalog = []string{
		"Beach & Relaxation",
		"Adventure & Outdoor",
		"Cultural Experiences",
		"Theme Parks",
		"Food & Dining",
		"Museums & History",
		"Nature & Wildlife",
		"Shopping",
		"Sports & Activities",
		"Local Festivals",
	}
)

var personaLabels = map[Persona]struct{ label, emoji string }{
	PersonaFriendly:  {"Friendly & Helpful", "😊"},
	PersonaLuxury:    {"Luxury Concierge", "✨"},
	PersonaAdventure: {"Adventure Guide", "🏔️"},
	PersonaFamily:    {"Family Specialist", "👨‍👩‍👧‍👦"},
	PersonaBudget:    {"Budget Expert", "💰"},
}

// Label returns the display label for the persona, e.g. "😊 Friendly & Helpful".
func (p Persona) Label() string {
	l, ok := personaLabels[p]
	if !ok {
		l = personaLabels[PersonaFriendly]
	}
	return l.emoji + " " + l.label
}

// Preferences holds the trip parameters entered by the traveller.
type Preferences struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Travelers   string   `json:"travelers"`
	Budget      Budget   `json:"budget"`
	Comfort     Comfort  `json:"comfort"`
	Interests   []string `json:"interests"`
	Persona     Persona  `json:"persona"`
}

// NewPreferences returns empty preferences with the given persona
// (friendly when empty).
func NewPreferences(persona Persona) Preferences {
	if persona == "" {
		persona = PersonaFriendly
	}
	return Preferences{Persona: persona, Interests: []string{}}
}

// Clone returns a deep copy.
func (p Preferences) Clone() Preferences {
	c := p
	c.Interests = slices.Clone(p.Interests)
	if c.Interests == nil {
		c.Interests = []string{}
	}
	return c
}

// SetField assigns one scalar field. Closed enums reject unknown values;
// dates and traveler labels are stored as given.
func (p *Preferences) SetField(field Field, value string) error {
	value = strings.TrimSpace(value)
	switch Field(strings.ToLower(strings.TrimSpace(string(field)))) {
	case FieldDestination:
		p.Destination = value
	case FieldStartDate:
		p.StartDate = value
	case FieldEndDate:
		p.EndDate = value
	case FieldTravelers:
		p.Travelers = value
	case FieldBudget:
		b := Budget(strings.ToLower(value))
		if value != "" && !slices.Contains(Budgets, b) {
			return fmt.Errorf("%w: budget %q", ErrInvalidValue, value)
		}
		p.Budget = b
	case FieldComfort:
		c := Comfort(strings.ToLower(value))
		if value != "" && !slices.Contains(Comforts, c) {
			return fmt.Errorf("%w: comfort %q", ErrInvalidValue, value)
		}
		p.Comfort = c
	case FieldPersona:
		ps := Persona(strings.ToLower(value))
		if !slices.Contains(Personas, ps) {
			return fmt.Errorf("%w: persona %q", ErrInvalidValue, value)
		}
		p.Persona = ps
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ToggleInterest adds tag when absent and removes it when present.
// It reports whether the tag is selected afterwards.
func (p *Preferences) ToggleInterest(tag string) (bool, error) {
	canonical, ok := LookupInterest(tag)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownInterest, tag)
	}
	if i := slices.Index(p.Interests, canonical); i >= 0 {
		p.Interests = slices.Delete(p.Interests, i, i+1)
		return false, nil
	}
	p.Interests = append(p.Interests, canonical)
	return true, nil
}

// HasInterest reports whether tag is currently selected.
func (p Preferences) HasInterest(tag string) bool {
	canonical, ok := LookupInterest(tag)
	return ok && slices.Contains(p.Interests, canonical)
}

// ValidateForPlanningStart requires destination, start date and end date.
func (p Preferences) ValidateForPlanningStart() error {
	var missing []Field
	if strings.TrimSpace(p.Destination) == "" {
		missing = append(missing, FieldDestination)
	}
	if strings.TrimSpace(p.StartDate) == "" {
		missing = append(missing, FieldStartDate)
	}
	if strings.TrimSpace(p.EndDate) == "" {
		missing = append(missing, FieldEndDate)
	}
	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}
	return nil
}

// LookupInterest matches tag case-insensitively against the catalog.
func LookupInterest(tag string) (string, bool) {
	tag = strings.TrimSpace(tag)
	for _, c := range InterestCatalog {
		if strings.EqualFold(c, tag) {
			return c, true
		}
	}
	return "", false
}
