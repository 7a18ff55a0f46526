package planner

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// FlightBatchSize is the number of offers in every search result.
	FlightBatchSize = 4

	DefaultOrigin          = "New York (JFK)"
	placeholderDestination = "Paris (CDG)"
)

// FlightOffer is one mock search result.
type FlightOffer struct {
	ID            string        `json:"id"`
	Carrier       string        `json:"carrier"`
	Origin        string        `json:"origin"`
	Destination   string        `json:"destination"`
	Duration      time.Duration `json:"duration"`      // nanoseconds
	DurationLabel string        `json:"durationLabel"` // "8h 30m"
	Price         int           `json:"price"`
	Stops         int           `json:"stops"`
	DepartureTime string        `json:"departureTime"`
	ArrivalTime   string        `json:"arrivalTime"`
}

// FlightProvider produces a batch of flight offers for the preferences.
type FlightProvider interface {
	SearchFlights(ctx context.Context, p Preferences) ([]FlightOffer, error)
}

type flightSlot struct {
	carrier   string
	duration  time.Duration
	stops     int
	departure string
	arrival   string
	prices    map[Budget]int
}

// Slot order is presentation order: nonstop premium, one-stop mid carrier,
// nonstop late-night premium, two-stop lowest cost.
var flightSlots = [FlightBatchSize]flightSlot{
	{
		carrier: "SkyLine Airways", duration: 8*time.Hour + 30*time.Minute, stops: 0,
		departure: "08:00", arrival: "16:30",
		prices: map[Budget]int{BudgetLow: 450, BudgetMid: 650, BudgetLuxury: 1200},
	},
	{
		carrier: "Continental Connect", duration: 11*time.Hour + 15*time.Minute, stops: 1,
		departure: "10:30", arrival: "21:45",
		prices: map[Budget]int{BudgetLow: 380, BudgetMid: 520, BudgetLuxury: 980},
	},
	{
		carrier: "Royal Horizon", duration: 8*time.Hour + 45*time.Minute, stops: 0,
		departure: "22:15", arrival: "07:00+1",
		prices: map[Budget]int{BudgetLow: 520, BudgetMid: 750, BudgetLuxury: 1450},
	},
	{
		carrier: "ValueJet Express", duration: 14*time.Hour + 20*time.Minute, stops: 2,
		departure: "06:00", arrival: "20:20",
		prices: map[Budget]int{BudgetLow: 290, BudgetMid: 420, BudgetLuxury: 850},
	},
}

// SlotPrice returns the table price for a 1-based slot and budget tier.
// Unknown tiers price as mid-range.
func SlotPrice(slot int, b Budget) int {
	if slot < 1 || slot > FlightBatchSize {
		return 0
	}
	prices := flightSlots[slot-1].prices
	if p, ok := prices[b]; ok {
		return p
	}
	return prices[BudgetMid]
}

// MockFlights returns canned offers priced by budget tier. It never fails.
type MockFlights struct {
	Origin string
}

// SearchFlights builds the four offers in slot order.
func (m MockFlights) SearchFlights(ctx context.Context, p Preferences) ([]FlightOffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	origin := orDefault(m.Origin, DefaultOrigin)
	dest := orDefault(p.Destination, placeholderDestination)

	offers := make([]FlightOffer, 0, FlightBatchSize)
	for i, s := range flightSlots {
		offers = append(offers, FlightOffer{
			ID:            fmt.Sprintf("FL%03d", i+1),
			Carrier:       s.carrier,
			Origin:        origin,
			Destination:   dest,
			Duration:      s.duration,
			DurationLabel: FormatDuration(s.duration),
			Price:         SlotPrice(i+1, p.Budget),
			Stops:         s.stops,
			DepartureTime: s.departure,
			ArrivalTime:   s.arrival,
		})
	}
	return offers, nil
}

// FlightSummary is the assistant message published after a search.
func FlightSummary(offers []FlightOffer, destination string) string {
	if len(offers) == 0 {
		return "I couldn't find any flights that match right now."
	}
	lowest := offers[0].Price
	for _, o := range offers[1:] {
		lowest = min(lowest, o.Price)
	}
	return fmt.Sprintf("✈️ I found %d flight options to %s! Prices start at $%d. "+
		"Take a look at the results and let me know which one suits your family best.",
		len(offers), orDefault(destination, placeholderDestination), lowest)
}

// FormatDuration renders a flight duration as "8h 30m".
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	var b strings.Builder
	fmt.Fprintf(&b, "%dh", h)
	if m > 0 {
		fmt.Fprintf(&b, " %dm", m)
	}
	return b.String()
}
