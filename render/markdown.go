// Package render turns planner state into Markdown and converts that Markdown
// for each surface: terminal text, browser HTML and iCalendar.
package render

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/linanwx/tripbot/planner"
)

// Flights renders a batch of offers as a GFM table.
func Flights(offers []planner.FlightOffer) string {
	if len(offers) == 0 {
		return "_No flights yet. Ask me to find flights._"
	}
	var b strings.Builder
	b.WriteString("| Flight | Carrier | Route | Depart | Arrive | Duration | Stops | Price |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, o := range offers {
		fmt.Fprintf(&b, "| %s | %s | %s → %s | %s | %s | %s | %s | $%d |\n",
			o.ID, cell(o.Carrier), cell(o.Origin), cell(o.Destination),
			o.DepartureTime, o.ArrivalTime, planner.FormatDuration(o.Duration), Stops(o.Stops), o.Price)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Stops labels a stop count.
func Stops(n int) string {
	switch n {
	case 0:
		return "Nonstop"
	case 1:
		return "1 stop"
	default:
		return fmt.Sprintf("%d stops", n)
	}
}

// Itinerary renders each day as a heading followed by a bullet list.
func Itinerary(days []planner.ItineraryDay) string {
	if len(days) == 0 {
		return "_No itinerary yet. Ask me to plan your days._"
	}
	var b strings.Builder
	for i, d := range days {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### Day %d · %s\n\n", d.Day, d.Date)
		fmt.Fprintf(&b, "- **Morning:** %s\n", d.Morning)
		fmt.Fprintf(&b, "- **Afternoon:** %s\n", d.Afternoon)
		fmt.Fprintf(&b, "- **Evening:** %s\n", d.Evening)
		fmt.Fprintf(&b, "- **Dining:** %s\n", d.Dining)
		if d.Accommodation != "" {
			fmt.Fprintf(&b, "- **Stay:** %s\n", d.Accommodation)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Preferences renders the preference card as a two-column table.
func Preferences(p planner.Preferences) string {
	rows := [][2]string{
		{"Destination", p.Destination},
		{"Start date", p.StartDate},
		{"End date", p.EndDate},
		{"Travelers", p.Travelers},
		{"Budget", string(p.Budget)},
		{"Comfort", string(p.Comfort)},
		{"Assistant", p.Persona.Label()},
		{"Interests", strings.Join(p.Interests, ", ")},
	}
	var b strings.Builder
	b.WriteString("| Preference | Value |\n|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", r[0], cell(lo.Ternary(strings.TrimSpace(r[1]) == "", "-", r[1])))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Interests renders the interest catalog with the current selection checked.
func Interests(p planner.Preferences) string {
	lines := lo.Map(planner.InterestCatalog, func(tag string, _ int) string {
		return fmt.Sprintf("- [%s] %s", lo.Ternary(p.HasInterest(tag), "x", " "), tag)
	})
	return strings.Join(lines, "\n")
}

// Flags renders the in-flight operations as a short status line, or "" when idle.
func Flags(f planner.AsyncFlags) string {
	var busy []string
	if f.SearchingFlights {
		busy = append(busy, "searching flights")
	}
	if f.GeneratingItinerary {
		busy = append(busy, "building itinerary")
	}
	if len(busy) == 0 {
		return ""
	}
	return "⏳ " + strings.Join(busy, ", ") + "…"
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
