package render

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/linanwx/tripbot/planner"
)

// Calendar exports an itinerary as an iCalendar document with one all-day
// event per day. Each event uses the date the day was planned for; days
// without one follow today. now also stamps the events.
func Calendar(days []planner.ItineraryDay, p planner.Preferences, now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dest := strings.TrimSpace(p.Destination)
	if dest == "" {
		dest = "your trip"
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//tripbot//itinerary//EN")
	cal.SetXWRCalName("Trip to " + dest)

	for _, d := range days {
		date, err := time.Parse(planner.DateLayout, d.ISODate)
		if err != nil {
			date = today.AddDate(0, 0, d.Day-1)
		}
		ev := cal.AddEvent(fmt.Sprintf("tripbot-%s-day-%d", date.Format("20060102"), d.Day))
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(date)
		ev.SetAllDayEndAt(date.AddDate(0, 0, 1))
		ev.SetSummary(fmt.Sprintf("Day %d in %s", d.Day, dest))
		ev.SetLocation(dest)
		ev.SetDescription(dayDescription(d))
	}
	return cal.Serialize()
}

func dayDescription(d planner.ItineraryDay) string {
	lines := []string{
		"Morning: " + d.Morning,
		"Afternoon: " + d.Afternoon,
		"Evening: " + d.Evening,
		"Dining: " + d.Dining,
	}
	if d.Accommodation != "" {
		lines = append(lines, "Stay: "+d.Accommodation)
	}
	return strings.Join(lines, "\n")
}
