package planner

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// MaxItineraryDays caps the number of generated days.
	MaxItineraryDays = 7

	// DateLayout is the accepted start/end date format.
	DateLayout = "2006-01-02"

	placeholderTripDays = 7
)

// ItineraryDay is one day of a generated itinerary.
type ItineraryDay struct {
	Day           int    `json:"day"`
	Date          string `json:"date"`
	ISODate       string `json:"isoDate"` // YYYY-MM-DD the day was planned for
	Morning       string `json:"morning"`
	Afternoon     string `json:"afternoon"`
	Evening       string `json:"evening"`
	Dining        string `json:"dining"`
	Accommodation string `json:"accommodation,omitempty"`
}

// ItineraryProvider produces a full day-by-day itinerary.
type ItineraryProvider interface {
	BuildItinerary(ctx context.Context, p Preferences) ([]ItineraryDay, error)
}

type activitySet struct {
	morning, afternoon, evening, dining string
}

var activitySets = []activitySet{
	{
		morning:   "Guided family walking tour of the historic old town",
		afternoon: "Hands-on cooking class with local ingredients",
		evening:   "Sunset stroll along the waterfront promenade",
		dining:    "Family-style dinner at a traditional local restaurant",
	},
	{
		morning:   "Early visit to the city's most popular museum to beat the crowds",
		afternoon: "Picnic and playground time in the central park",
		evening:   "Evening boat cruise with city lights",
		dining:    "Casual pizzeria with a kids' menu",
	},
	{
		morning:   "Day trip to nearby nature reserve with easy hiking trails",
		afternoon: "Wildlife spotting and a visit to the visitor center",
		evening:   "Relaxing pool time back at the hotel",
		dining:    "Farm-to-table restaurant with outdoor seating",
	},
	{
		morning:   "Beach morning with sandcastle building and swimming",
		afternoon: "Explore the local market and pick up souvenirs",
		evening:   "Family games night and dessert at a gelato shop",
		dining:    "Seafood dinner overlooking the harbor",
	},
}

var accommodations = map[Budget]string{
	BudgetLow:    "Family-friendly hotel with kitchenette and free breakfast",
	BudgetMid:    "4-star family resort with pool and connecting rooms",
	BudgetLuxury: "5-star luxury resort with kids' club, spa and ocean-view suites",
}

// Accommodation returns the stay suggestion for a budget tier, mid-range
// when the tier is unknown.
func Accommodation(b Budget) string {
	if a, ok := accommodations[b]; ok {
		return a
	}
	return accommodations[BudgetMid]
}

// MockItinerary builds itineraries from a rotating set of activity templates.
type MockItinerary struct {
	// Now anchors the placeholder window when dates are unset. Nil uses time.Now.
	Now func() time.Time
}

// BuildItinerary returns min(trip days, 7) days. Day i uses activity set
// i mod 4 regardless of the selected interests; only day 1 carries an
// accommodation.
func (m MockItinerary) BuildItinerary(ctx context.Context, p Preferences) ([]ItineraryDay, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	start, days, err := m.tripWindow(p)
	if err != nil {
		return nil, err
	}
	days = min(days, MaxItineraryDays)

	out := make([]ItineraryDay, 0, days)
	for i := range days {
		set := activitySets[i%len(activitySets)]
		date := start.AddDate(0, 0, i)
		day := ItineraryDay{
			Day:       i + 1,
			Date:      date.Format("Monday, January 2"),
			ISODate:   date.Format(DateLayout),
			Morning:   set.morning,
			Afternoon: set.afternoon,
			Evening:   set.evening,
			Dining:    set.dining,
		}
		if i == 0 {
			day.Accommodation = Accommodation(p.Budget)
		}
		out = append(out, day)
	}
	return out, nil
}

func (m MockItinerary) tripWindow(p Preferences) (time.Time, int, error) {
	startRaw := strings.TrimSpace(p.StartDate)
	endRaw := strings.TrimSpace(p.EndDate)
	if startRaw == "" || endRaw == "" {
		now := time.Now
		if m.Now != nil {
			now = m.Now
		}
		t := now()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), placeholderTripDays, nil
	}
	return TripLength(startRaw, endRaw)
}

// TripLength parses both dates and returns the start and the inclusive day count.
func TripLength(startDate, endDate string) (time.Time, int, error) {
	start, err := time.Parse(DateLayout, strings.TrimSpace(startDate))
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: start date %q", ErrInvalidDateRange, startDate)
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(endDate))
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: end date %q", ErrInvalidDateRange, endDate)
	}
	if end.Before(start) {
		return time.Time{}, 0, fmt.Errorf("%w: %s is before %s", ErrInvalidDateRange, endDate, startDate)
	}
	return start, int(end.Sub(start).Hours()/24) + 1, nil
}

// ItinerarySummary is the assistant message published after generation.
func ItinerarySummary(days []ItineraryDay, p Preferences) string {
	focus := "a little bit of everything"
	if len(p.Interests) > 0 {
		focus = strings.Join(p.Interests[:min(2, len(p.Interests))], " and ")
	}
	return fmt.Sprintf("🗓️ I've created a %d-day itinerary for %s! It focuses on %s and fits your %s budget. "+
		"Each day has morning, afternoon and evening activities plus a dining pick.",
		len(days),
		orDefault(p.Destination, "your destination"),
		focus,
		orDefault(string(p.Budget), "chosen"))
}
