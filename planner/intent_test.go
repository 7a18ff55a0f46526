package planner

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want Intent
	}{
		{"find me a flight", IntentFlightSearch},
		{"Which AIRLINE is best?", IntentFlightSearch},
		{"we want to fly on Monday", IntentFlightSearch},
		{"flight and itinerary please", IntentFlightSearch},
		{"Build an itinerary and book the flight", IntentFlightSearch},
		{"can you make an itinerary", IntentItinerary},
		{"help me plan the trip", IntentItinerary},
		{"what's the schedule?", IntentItinerary},
		{"give it to me Day By Day", IntentItinerary},
		{"hello there", IntentGenericReply},
		{"", IntentGenericReply},
		{"we love beaches", IntentGenericReply},
	}
	for _, tt := range tests {
		if got := Classify(tt.in); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestClassifyUsesSubstringContainment(t *testing.T) {
	// "butterfly" contains "fly" and "airplane" contains "plan".
	if got := Classify("look, a butterfly"); got != IntentFlightSearch {
		t.Fatalf("Classify(butterfly) = %s, want flight_search", got)
	}
	if got := Classify("airplane snacks"); got != IntentItinerary {
		t.Fatalf("Classify(airplane) = %s, want itinerary", got)
	}
}
