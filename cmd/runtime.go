package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/linanwx/tripbot/config"
	"github.com/linanwx/tripbot/planner"
)

// sessionOptions builds the per-session template shared by every session
// the process creates.
func sessionOptions(cfg *config.Config, sched planner.Scheduler) (planner.Options, error) {
	persona, err := parsePersona(cfg.Planner.Persona)
	if err != nil {
		return planner.Options{}, err
	}
	return planner.Options{
		Persona:   persona,
		Scheduler: sched,
		Flights:   planner.MockFlights{Origin: cfg.Planner.Origin},
		Delays: planner.Delays{
			Reply:        cfg.Planner.ReplyDelay,
			FlightSearch: cfg.Planner.SearchDelay,
			Itinerary:    cfg.Planner.ItineraryDelay,
		},
	}, nil
}

func parsePersona(raw string) (planner.Persona, error) {
	p := planner.Persona(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return planner.PersonaFriendly, nil
	}
	if !slices.Contains(planner.Personas, p) {
		return "", fmt.Errorf("config: unknown persona %q", raw)
	}
	return p, nil
}
