package planner

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

type fixedRandom int

func (f fixedRandom) NextIndex(n int) int { return int(f) % n }

func TestMockFlightsBatchShape(t *testing.T) {
	wantStops := []int{0, 1, 0, 2}
	wantPrices := map[Budget][]int{
		BudgetLow:    {450, 380, 520, 290},
		BudgetMid:    {650, 520, 750, 420},
		BudgetLuxury: {1200, 980, 1450, 850},
	}

	for budget, prices := range wantPrices {
		p := NewPreferences("")
		p.Budget = budget
		p.Destination = "Tokyo"

		offers, err := MockFlights{}.SearchFlights(context.Background(), p)
		if err != nil {
			t.Fatalf("SearchFlights(%s) error = %v", budget, err)
		}
		if len(offers) != FlightBatchSize {
			t.Fatalf("len = %d, want %d", len(offers), FlightBatchSize)
		}
		for i, o := range offers {
			if o.Stops != wantStops[i] {
				t.Errorf("%s slot %d stops = %d, want %d", budget, i+1, o.Stops, wantStops[i])
			}
			if o.Price != prices[i] {
				t.Errorf("%s slot %d price = %d, want %d", budget, i+1, o.Price, prices[i])
			}
			if o.Destination != "Tokyo" || o.Origin != DefaultOrigin {
				t.Errorf("slot %d route = %s -> %s", i+1, o.Origin, o.Destination)
			}
		}
	}
}

func TestMockFlightsDefaults(t *testing.T) {
	offers, err := MockFlights{Origin: "Berlin (BER)"}.SearchFlights(context.Background(), NewPreferences(""))
	if err != nil {
		t.Fatal(err)
	}
	if offers[0].Destination != placeholderDestination {
		t.Fatalf("destination = %q, want placeholder", offers[0].Destination)
	}
	if offers[0].Origin != "Berlin (BER)" {
		t.Fatalf("origin = %q", offers[0].Origin)
	}
	if offers[0].Price != SlotPrice(1, BudgetMid) {
		t.Fatalf("unset budget should price as mid-range, got %d", offers[0].Price)
	}
}

func TestFlightSummaryReportsCountAndLowestPrice(t *testing.T) {
	p := NewPreferences("")
	p.Budget = BudgetLuxury
	offers, _ := MockFlights{}.SearchFlights(context.Background(), p)
	got := FlightSummary(offers, "Paris")
	if !strings.Contains(got, "4 flight options to Paris") || !strings.Contains(got, "$850") {
		t.Fatalf("FlightSummary() = %q", got)
	}
}

func TestFlightOfferJSONCarriesDurationLabel(t *testing.T) {
	offers, err := MockFlights{}.SearchFlights(context.Background(), NewPreferences(""))
	if err != nil {
		t.Fatal(err)
	}
	if offers[0].DurationLabel != "8h 30m" || offers[3].DurationLabel != "14h 20m" {
		t.Fatalf("labels = %q, %q", offers[0].DurationLabel, offers[3].DurationLabel)
	}
	data, err := json.Marshal(offers[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"durationLabel":"8h 30m"`) {
		t.Fatalf("json = %s", data)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(8*time.Hour + 30*time.Minute); got != "8h 30m" {
		t.Fatalf("FormatDuration = %q", got)
	}
	if got := FormatDuration(9 * time.Hour); got != "9h" {
		t.Fatalf("FormatDuration = %q", got)
	}
}

func TestMockItineraryCapsAtSevenDays(t *testing.T) {
	p := NewPreferences("")
	p.StartDate = "2024-07-01"
	p.EndDate = "2024-07-10"
	p.Budget = BudgetLuxury

	days, err := MockItinerary{}.BuildItinerary(context.Background(), p)
	if err != nil {
		t.Fatalf("BuildItinerary() error = %v", err)
	}
	if len(days) != MaxItineraryDays {
		t.Fatalf("len = %d, want 7", len(days))
	}
	for i, d := range days {
		if d.Day != i+1 {
			t.Fatalf("day[%d].Day = %d", i, d.Day)
		}
		if (i == 0) != (d.Accommodation != "") {
			t.Fatalf("day %d accommodation = %q", d.Day, d.Accommodation)
		}
		if d.Morning != activitySets[i%4].morning {
			t.Fatalf("day %d uses wrong activity set", d.Day)
		}
	}
	if days[0].Accommodation != Accommodation(BudgetLuxury) {
		t.Fatalf("accommodation = %q", days[0].Accommodation)
	}
	if days[0].Date != "Monday, July 1" {
		t.Fatalf("date label = %q", days[0].Date)
	}
}

func TestMockItineraryShortTripAndInterestsIgnored(t *testing.T) {
	p := NewPreferences("")
	p.StartDate = "2024-07-01"
	p.EndDate = "2024-07-03"
	a, err := MockItinerary{}.BuildItinerary(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	p.ToggleInterest("Theme Parks")
	b, err := MockItinerary{}.BuildItinerary(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 3 || len(b) != 3 {
		t.Fatalf("lens = %d, %d, want 3", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("interests changed day %d content", i+1)
		}
	}
	if a[0].Accommodation != Accommodation(BudgetMid) {
		t.Fatalf("unset budget accommodation = %q, want mid-range", a[0].Accommodation)
	}
}

func TestMockItineraryPlaceholderWindow(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 12, 20, 15, 0, 0, 0, time.UTC) }
	days, err := MockItinerary{Now: now}.BuildItinerary(context.Background(), NewPreferences(""))
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 7 || days[0].Date != "Friday, December 20" {
		t.Fatalf("placeholder window = %d days starting %q", len(days), days[0].Date)
	}
}

func TestMockItineraryRejectsBadDates(t *testing.T) {
	for _, tc := range []struct{ start, end string }{
		{"2024-07-10", "2024-07-01"},
		{"07/01/2024", "2024-07-05"},
	} {
		p := NewPreferences("")
		p.StartDate, p.EndDate = tc.start, tc.end
		if _, err := (MockItinerary{}).BuildItinerary(context.Background(), p); !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("BuildItinerary(%s..%s) error = %v, want ErrInvalidDateRange", tc.start, tc.end, err)
		}
	}
}

func TestItinerarySummaryUsesFirstTwoInterests(t *testing.T) {
	p := NewPreferences("")
	p.Destination = "Rome"
	p.Budget = BudgetLow
	p.Interests = []string{"Food & Dining", "Museums & History", "Shopping"}
	got := ItinerarySummary(make([]ItineraryDay, 5), p)
	if !strings.Contains(got, "5-day itinerary for Rome") ||
		!strings.Contains(got, "Food & Dining and Museums & History") ||
		strings.Contains(got, "Shopping") ||
		!strings.Contains(got, "budget budget") {
		t.Fatalf("ItinerarySummary() = %q", got)
	}
}

func TestGenericReplyTemplates(t *testing.T) {
	p := NewPreferences("")
	for i := range replyTemplates {
		got := GenericReply(p, fixedRandom(i))
		if got == "" {
			t.Fatalf("template %d empty", i)
		}
	}
	if got := GenericReply(p, fixedRandom(0)); !strings.Contains(got, "your destination") {
		t.Fatalf("template 0 placeholder missing: %q", got)
	}
	if got := GenericReply(p, fixedRandom(2)); !strings.Contains(got, "your size") {
		t.Fatalf("template 2 placeholder missing: %q", got)
	}

	p.Interests = []string{"Shopping", "Theme Parks"}
	if got := GenericReply(p, fixedRandom(3)); !strings.Contains(got, "Shopping, Theme Parks") {
		t.Fatalf("template 3 interests missing: %q", got)
	}
}
