package progress

import (
	"slices"
	"strings"
)

// DefaultFocusLimit is the number of suggestions returned when the caller
// does not specify a limit.
const DefaultFocusLimit = 3

// Suggestion is one practice-focus recommendation: a word that needs
// attention, why, and the analytics backing the call.
type Suggestion struct {
	Word          string   `json:"word"`
	PriorityScore int      `json:"priorityScore"`
	Reasons       []string `json:"reasons"`
	Analytics     Analytics `json:"analytics"`
}

// Suggest ranks practiced words by how much remediation they need and
// returns the top limit suggestions, highest priority first. Pure read-side
// aggregation over the progress map; never mutates state.
//
// The priority score accumulates additively, and each contributing check
// records a reason (of which the top two, in check order, are reported):
//
//   - accuracy below 50%:   +2 per missing point
//   - avg clarity below 60:  +1 per missing point
//   - avg similarity below 70: +1 per missing point
//   - declining trend:       +30
//   - 3+ incorrect attempts: +5 per incorrect attempt
//   - negative improvement:  + its magnitude
//
// Words scoring 0 are excluded entirely.
func Suggest(all map[string]WordProgress, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultFocusLimit
	}

	// Deterministic iteration: Go maps randomize order.
	words := make([]string, 0, len(all))
	for word := range all {
		words = append(words, word)
	}
	slices.SortFunc(words, strings.Compare)

	var suggestions []Suggestion
	for _, word := range words {
		wp := all[word]
		if len(wp.AttemptHistory) == 0 {
			continue
		}

		a := ComputeAnalytics(wp.AttemptHistory)
		score := 0
		var reasons []string

		if a.AccuracyRate < 50 {
			score += (50 - a.AccuracyRate) * 2
			reasons = append(reasons, "low accuracy")
		}
		if a.AvgClarity != nil && *a.AvgClarity < 60 {
			score += 60 - *a.AvgClarity
			reasons = append(reasons, "low clarity")
		}
		if a.AvgSimilarity != nil && *a.AvgSimilarity < 70 {
			score += 70 - *a.AvgSimilarity
			reasons = append(reasons, "low similarity")
		}
		if a.Trend == TrendDeclining {
			score += 30
			reasons = append(reasons, "declining performance")
		}
		if wp.IncorrectAttempts >= 3 {
			score += wp.IncorrectAttempts * 5
			reasons = append(reasons, "multiple mistakes")
		}
		if a.ImprovementRate != nil && *a.ImprovementRate < 0 {
			score += -*a.ImprovementRate
			reasons = append(reasons, "not improving")
		}

		if score == 0 {
			continue
		}
		if len(reasons) > 2 {
			reasons = reasons[:2]
		}
		suggestions = append(suggestions, Suggestion{
			Word:          word,
			PriorityScore: score,
			Reasons:       reasons,
			Analytics:     a,
		})
	}

	slices.SortStableFunc(suggestions, func(a, b Suggestion) int {
		return b.PriorityScore - a.PriorityScore
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}
