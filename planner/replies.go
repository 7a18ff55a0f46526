package planner

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// RandomSource picks an index in [0, n). Tests inject a fixed source.
type RandomSource interface {
	NextIndex(n int) int
}

type defaultRandom struct{}

func (defaultRandom) NextIndex(n int) int { return rand.IntN(n) }

// DefaultRandom returns a RandomSource backed by math/rand/v2.
func DefaultRandom() RandomSource { return defaultRandom{} }

var replyTemplates = []func(p Preferences) string{
	func(p Preferences) string {
		return fmt.Sprintf("That sounds amazing! Based on your preferences for %s, I'm thinking of some fantastic options. "+
			"With a %s comfort level and %s budget, I can suggest some perfect family-friendly accommodations.",
			orDefault(p.Destination, "your destination"),
			orDefault(string(p.Comfort), "your chosen"),
			orDefault(string(p.Budget), "your chosen"))
	},
	func(p Preferences) string {
		return fmt.Sprintf("Perfect! I love that you're considering the school holiday dates. "+
			"Let me check the best travel deals for %s to %s. This timing actually works great for avoiding crowds!",
			orDefault(p.StartDate, "your start date"),
			orDefault(p.EndDate, "your end date"))
	},
	func(p Preferences) string {
		return fmt.Sprintf("Excellent choice! For a family of %s, I recommend booking early to get the best rates. "+
			"I'm already seeing some amazing packages that include kid-friendly activities.",
			orDefault(p.Travelers, "your size"))
	},
	func(p Preferences) string {
		return fmt.Sprintf("I'm excited to help plan this! Given your interests in %s, "+
			"I have some incredible experiences in mind that the whole family will love.",
			orDefault(strings.Join(p.Interests, ", "), "the things you love"))
	},
}

// GenericReply returns one of the canned replies, chosen uniformly by rnd.
func GenericReply(p Preferences, rnd RandomSource) string {
	if rnd == nil {
		rnd = DefaultRandom()
	}
	i := rnd.NextIndex(len(replyTemplates))
	if i < 0 || i >= len(replyTemplates) {
		i = 0
	}
	return replyTemplates[i](p)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
