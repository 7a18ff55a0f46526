package planner

import "strings"

// Intent is the response strategy chosen for a user utterance.
type Intent int

const (
	IntentGenericReply Intent = iota
	IntentFlightSearch
	IntentItinerary
)

func (i Intent) String() string {
	switch i {
	case IntentFlightSearch:
		return "flight_search"
	case IntentItinerary:
		return "itinerary"
	default:
		return "generic_reply"
	}
}

var (
	flightKeywords    = []string{"flight", "fly", "airline"}
	itineraryKeywords = []string{"itinerary", "plan", "schedule", "day by day"}
)

// Classify picks the strategy for an utterance by case-insensitive substring
// match. Flight keywords win over itinerary keywords when both appear.
func Classify(utterance string) Intent {
	text := strings.ToLower(utterance)
	if containsAny(text, flightKeywords) {
		return IntentFlightSearch
	}
	if containsAny(text, itineraryKeywords) {
		return IntentItinerary
	}
	return IntentGenericReply
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
