package planner

import (
	"errors"
	"slices"
	"testing"
)

func TestToggleInterestTwiceRestoresSet(t *testing.T) {
	p := NewPreferences("")
	if _, err := p.ToggleInterest("Shopping"); err != nil {
		t.Fatal(err)
	}
	before := slices.Clone(p.Interests)

	for _, tag := range InterestCatalog {
		on, err := p.ToggleInterest(tag)
		if err != nil {
			t.Fatalf("ToggleInterest(%q) error = %v", tag, err)
		}
		again, err := p.ToggleInterest(tag)
		if err != nil {
			t.Fatalf("ToggleInterest(%q) error = %v", tag, err)
		}
		if on == again {
			t.Fatalf("toggle %q should flip membership, got %v then %v", tag, on, again)
		}
		if !sameSet(p.Interests, before) {
			t.Fatalf("after double toggle of %q interests = %v, want %v", tag, p.Interests, before)
		}
	}
}

func TestToggleInterestMatchesCatalogCaseInsensitively(t *testing.T) {
	p := NewPreferences("")
	on, err := p.ToggleInterest("  food & dining ")
	if err != nil {
		t.Fatalf("ToggleInterest() error = %v", err)
	}
	if !on || !p.HasInterest("Food & Dining") {
		t.Fatalf("interest should be selected, got %v", p.Interests)
	}
	if p.Interests[0] != "Food & Dining" {
		t.Fatalf("stored tag = %q, want canonical catalog spelling", p.Interests[0])
	}

	if _, err := p.ToggleInterest("Skydiving"); !errors.Is(err, ErrUnknownInterest) {
		t.Fatalf("unknown tag error = %v, want ErrUnknownInterest", err)
	}
}

func TestSetField(t *testing.T) {
	tests := []struct {
		field   Field
		value   string
		wantErr error
		check   func(Preferences) bool
	}{
		{FieldDestination, " Lisbon ", nil, func(p Preferences) bool { return p.Destination == "Lisbon" }},
		{FieldStartDate, "2024-07-01", nil, func(p Preferences) bool { return p.StartDate == "2024-07-01" }},
		{FieldEndDate, "not-a-date", nil, func(p Preferences) bool { return p.EndDate == "not-a-date" }},
		{FieldTravelers, "3-4", nil, func(p Preferences) bool { return p.Travelers == "3-4" }},
		{FieldBudget, "Luxury", nil, func(p Preferences) bool { return p.Budget == BudgetLuxury }},
		{FieldBudget, "cheap", ErrInvalidValue, nil},
		{FieldComfort, "premium", nil, func(p Preferences) bool { return p.Comfort == ComfortPremium }},
		{FieldComfort, "deluxe", ErrInvalidValue, nil},
		{FieldPersona, "adventure", nil, func(p Preferences) bool { return p.Persona == PersonaAdventure }},
		{FieldPersona, "pirate", ErrInvalidValue, nil},
		{Field("airport"), "JFK", ErrUnknownField, nil},
	}

	for _, tt := range tests {
		p := NewPreferences("")
		err := p.SetField(tt.field, tt.value)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetField(%s, %q) error = %v, want %v", tt.field, tt.value, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetField(%s, %q) error = %v", tt.field, tt.value, err)
			continue
		}
		if !tt.check(p) {
			t.Errorf("SetField(%s, %q) produced %+v", tt.field, tt.value, p)
		}
	}
}

func TestValidateForPlanningStart(t *testing.T) {
	p := NewPreferences("")
	p.StartDate = "2024-07-01"
	p.EndDate = "2024-07-07"

	err := p.ValidateForPlanningStart()
	if !errors.Is(err, ErrMissingRequiredField) {
		t.Fatalf("error = %v, want ErrMissingRequiredField", err)
	}
	var mf *MissingFieldError
	if !errors.As(err, &mf) || len(mf.Fields) != 1 || mf.Fields[0] != FieldDestination {
		t.Fatalf("missing fields = %+v, want [destination]", mf)
	}

	p.Destination = "Paris"
	if err := p.ValidateForPlanningStart(); err != nil {
		t.Fatalf("complete preferences error = %v", err)
	}
}

func TestPersonaLabelFallsBackToFriendly(t *testing.T) {
	if got := PersonaLuxury.Label(); got != "✨ Luxury Concierge" {
		t.Fatalf("Label() = %q", got)
	}
	if got := Persona("unknown").Label(); got != PersonaFriendly.Label() {
		t.Fatalf("unknown persona label = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := NewPreferences("")
	p.ToggleInterest("Shopping")
	c := p.Clone()
	c.Interests[0] = "changed"
	if p.Interests[0] != "Shopping" {
		t.Fatal("Clone() shares the interests slice")
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}
