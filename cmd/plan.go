package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/linanwx/tripbot/config"
	"github.com/linanwx/tripbot/planner"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Fill in trip preferences with a form, then start chatting",
	Long: `Walk through the preference card (destination, dates, travelers, budget,
comfort, assistant style and interests), start planning, and open the
terminal chat with those preferences applied.`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	prefs := planner.NewPreferences(planner.Persona(cfg.Planner.Persona))
	if err := preferenceForm(&prefs).Run(); err != nil {
		return err
	}

	return runService(cfg, true, false, func(s *planner.Session) error {
		return applyPreferences(s, prefs, true)
	})
}

func preferenceForm(p *planner.Preferences) *huh.Form {
	required := func(label string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s is required", label)
			}
			return nil
		}
	}
	date := func(label string) func(string) error {
		return func(s string) error {
			if err := required(label)(s); err != nil {
				return err
			}
			if _, err := time.Parse(planner.DateLayout, strings.TrimSpace(s)); err != nil {
				return fmt.Errorf("%s must look like 2025-07-01", label)
			}
			return nil
		}
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Where would you like to go?").
				Placeholder("e.g. Paris, Tokyo, Bali").
				Validate(required("destination")).
				Value(&p.Destination),
			huh.NewInput().
				Title("Start date").
				Description("School holidays start (YYYY-MM-DD).").
				Validate(date("start date")).
				Value(&p.StartDate),
			huh.NewInput().
				Title("End date").
				Description("School holidays end (YYYY-MM-DD).").
				Validate(func(s string) error {
					if err := date("end date")(s); err != nil {
						return err
					}
					if _, _, err := planner.TripLength(p.StartDate, s); err != nil {
						return fmt.Errorf("end date must be on or after the start date")
					}
					return nil
				}).
				Value(&p.EndDate),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How many travelers?").
				Options(huh.NewOptions(planner.TravelerRanges...)...).
				Value(&p.Travelers),
			huh.NewSelect[planner.Budget]().
				Title("Budget").
				Options(
					huh.NewOption("Budget friendly", planner.BudgetLow),
					huh.NewOption("Mid-range", planner.BudgetMid),
					huh.NewOption("Luxury", planner.BudgetLuxury),
				).
				Value(&p.Budget),
			huh.NewSelect[planner.Comfort]().
				Title("Comfort level").
				Options(
					huh.NewOption("Basic", planner.ComfortBasic),
					huh.NewOption("Comfortable", planner.ComfortComfort),
					huh.NewOption("Premium", planner.ComfortPremium),
					huh.NewOption("Luxury", planner.ComfortLuxury),
				).
				Value(&p.Comfort),
		),
		huh.NewGroup(
			huh.NewSelect[planner.Persona]().
				Title("Assistant style").
				Options(personaOptions()...).
				Value(&p.Persona),
			huh.NewMultiSelect[string]().
				Title("What does your family enjoy?").
				Options(huh.NewOptions(planner.InterestCatalog...)...).
				Value(&p.Interests),
		),
	)
}

func personaOptions() []huh.Option[planner.Persona] {
	options := make([]huh.Option[planner.Persona], 0, len(planner.Personas))
	for _, p := range planner.Personas {
		options = append(options, huh.NewOption(p.Label(), p))
	}
	return options
}

// applyPreferences copies p into the session field by field. With start
// set, it also leaves preferences mode.
func applyPreferences(s *planner.Session, p planner.Preferences, start bool) error {
	fields := []struct {
		field planner.Field
		value string
	}{
		{planner.FieldDestination, p.Destination},
		{planner.FieldStartDate, p.StartDate},
		{planner.FieldEndDate, p.EndDate},
		{planner.FieldTravelers, p.Travelers},
		{planner.FieldBudget, string(p.Budget)},
		{planner.FieldComfort, string(p.Comfort)},
		{planner.FieldPersona, string(p.Persona)},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			continue
		}
		if err := s.SetPreference(f.field, f.value); err != nil {
			return fmt.Errorf("%s: %w", f.field, err)
		}
	}
	for _, tag := range p.Interests {
		if !s.Preferences().HasInterest(tag) {
			if _, err := s.ToggleInterest(tag); err != nil {
				return err
			}
		}
	}
	if start {
		return s.RequestStartPlanning()
	}
	return nil
}
