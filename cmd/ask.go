package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/linanwx/tripbot/config"
	"github.com/linanwx/tripbot/planner"
	"github.com/linanwx/tripbot/render"
	"github.com/linanwx/tripbot/schedule"
)

const askTimeout = 30 * time.Second

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Send one message and print the assistant's answer",
	Long: `Create a throwaway session, apply the preference flags, send one message
and wait for the assistant's answer. Flight and itinerary results are
printed as tables.

Examples:
  tripbot ask -m "find me a flight" --destination Paris --budget luxury
  tripbot ask -m "plan our days" --start 2025-07-01 --end 2025-07-05 --ics trip.ics`,
	RunE: runAsk,
}

var (
	askMessage   string
	askPrefs     planner.Preferences
	askBudget    string
	askComfort   string
	askPersona   string
	askInterests []string
	askICS       string
	askJSON      bool
)

func init() {
	f := askCmd.Flags()
	f.StringVarP(&askMessage, "message", "m", "", "Message to send (required)")
	f.StringVar(&askPrefs.Destination, "destination", "", "Destination")
	f.StringVar(&askPrefs.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&askPrefs.EndDate, "end", "", "End date (YYYY-MM-DD)")
	f.StringVar(&askPrefs.Travelers, "travelers", "", "Number of travelers")
	f.StringVar(&askBudget, "budget", "", "budget, mid-range or luxury")
	f.StringVar(&askComfort, "comfort", "", "basic, comfort, premium or luxury")
	f.StringVar(&askPersona, "persona", "", "friendly, luxury, adventure, family or budget")
	f.StringSliceVar(&askInterests, "interest", nil, "Interest tag (repeatable)")
	f.StringVar(&askICS, "ics", "", "Write the itinerary to this iCalendar file")
	f.BoolVar(&askJSON, "json", false, "Print the final session state as JSON")
	_ = askCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sched := schedule.New()
	defer sched.Stop()
	opts, err := sessionOptions(cfg, sched)
	if err != nil {
		return err
	}

	answers := make(chan planner.Message, 4)
	opts.Key = "ask"
	opts.Observer = func(ev planner.Event) {
		if ev.Type == planner.EventMessage && ev.Message.Author == planner.AuthorAssistant {
			select {
			case answers <- ev.Message:
			default:
			}
		}
	}
	s := planner.NewSession(opts)
	defer s.Close()

	prefs := askPrefs
	prefs.Budget = planner.Budget(askBudget)
	prefs.Comfort = planner.Comfort(askComfort)
	prefs.Persona = planner.Persona(askPersona)
	prefs.Interests = askInterests
	if err := applyPreferences(s, prefs, false); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	intent, err := s.SubmitUserMessage(ctx, askMessage)
	if err != nil {
		return err
	}

	var answer planner.Message
	select {
	case answer = <-answers:
	case <-ctx.Done():
		return fmt.Errorf("no answer within %s", askTimeout)
	}

	st := s.Snapshot()
	if askJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	out := []string{answer.Body}
	switch intent {
	case planner.IntentFlightSearch:
		out = append(out, render.Flights(st.Flights))
	case planner.IntentItinerary:
		out = append(out, render.Itinerary(st.Itinerary))
	}
	fmt.Println(render.Text(strings.Join(out, "\n\n")))

	if askICS != "" && len(st.Itinerary) > 0 {
		if err := os.WriteFile(askICS, []byte(render.Calendar(st.Itinerary, st.Preferences, time.Now())), 0o644); err != nil {
			return fmt.Errorf("write calendar: %w", err)
		}
		fmt.Println("Itinerary saved to", askICS)
	}
	return nil
}
