package progress

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/speakbetter/speakbetter/internal/evaluate"
)

// overviewWindow is the number of most-recent attempts the cross-word trend
// calculations look at.
const overviewWindow = 10

// WordAttempt is an [Attempt] tagged with the word it belongs to, used by
// cross-word aggregations.
type WordAttempt struct {
	Attempt
	Word string `json:"word"`
}

// ScoreTrend summarizes the direction of a score series across all words.
// Trend is empty when there are fewer than two scored attempts.
type ScoreTrend struct {
	Trend   Trend  `json:"trend,omitempty"`
	Change  int    `json:"change"`
	Message string `json:"message"`
}

// MostMissed identifies the word with the highest incorrect rate. Word is
// empty when no mistakes have been recorded.
type MostMissed struct {
	Word    string `json:"word,omitempty"`
	Rate    int    `json:"rate"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

// Overview is the cross-word rollup served to the session summary view.
type Overview struct {
	TotalAttempts   int           `json:"totalAttempts"`
	RecentAttempts  []WordAttempt `json:"recentAttempts"`
	ClarityTrend    ScoreTrend    `json:"clarityTrend"`
	SimilarityTrend ScoreTrend    `json:"similarityTrend"`
	MostMissed      MostMissed    `json:"mostMissed"`
	PatternSummary  string        `json:"patternSummary"`
}

// AllAttempts flattens every word's history into a single list sorted most
// recent first. Ties on timestamp break alphabetically by word so the order
// is deterministic.
func AllAttempts(all map[string]WordProgress) []WordAttempt {
	var out []WordAttempt
	for word, wp := range all {
		for _, a := range wp.AttemptHistory {
			out = append(out, WordAttempt{Attempt: a, Word: word})
		}
	}
	slices.SortFunc(out, func(a, b WordAttempt) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.Word, b.Word)
	})
	return out
}

// LastAttempts returns the n most recent attempts across all words.
func LastAttempts(all map[string]WordProgress, n int) []WordAttempt {
	attempts := AllAttempts(all)
	if len(attempts) > n {
		attempts = attempts[:n]
	}
	return attempts
}

// ClarityTrend reports how clarity has moved over the last overviewWindow
// attempts across all words.
func ClarityTrend(all map[string]WordProgress) ScoreTrend {
	var scores []int
	for _, a := range LastAttempts(all, overviewWindow) {
		if a.ClarityScore != nil {
			scores = append(scores, *a.ClarityScore)
		}
	}
	return scoreTrend(scores, "Clarity")
}

// SimilarityTrend reports how similarity has moved over the last
// overviewWindow attempts across all words.
func SimilarityTrend(all map[string]WordProgress) ScoreTrend {
	var scores []int
	for _, a := range LastAttempts(all, overviewWindow) {
		scores = append(scores, a.SimilarityScore)
	}
	return scoreTrend(scores, "Similarity")
}

// scoreTrend splits scores (most recent first) at a ceiling midpoint and
// compares half-means with a ±5 point dead band. The "first half" of the
// slice is the newer attempts, so the change is older-mean subtracted from
// newer-mean inverted accordingly.
func scoreTrend(scores []int, label string) ScoreTrend {
	if len(scores) < 2 {
		return ScoreTrend{Message: "Not enough data"}
	}

	// scores arrive most recent first, so the first half is the newer one
	mid := (len(scores) + 1) / 2
	newer := scores[:mid]
	older := scores[mid:]

	change := int(math.Round(meanInt(newer) - meanInt(older)))

	switch {
	case change > 5:
		return ScoreTrend{
			Trend:   TrendImproving,
			Change:  change,
			Message: fmt.Sprintf("%s improved by %d%%", label, change),
		}
	case change < -5:
		return ScoreTrend{
			Trend:   TrendDeclining,
			Change:  change,
			Message: fmt.Sprintf("%s declined by %d%%", label, -change),
		}
	default:
		return ScoreTrend{
			Trend:   TrendStable,
			Change:  change,
			Message: fmt.Sprintf("%s remains stable", label),
		}
	}
}

// MostMissedWord finds the list word with the highest incorrect rate.
func MostMissedWord(all map[string]WordProgress, wordList []string) MostMissed {
	best := MostMissed{Message: "No common mistakes detected"}
	var bestRate float64

	for _, word := range wordList {
		wp, ok := all[word]
		if !ok || wp.IncorrectAttempts == 0 {
			continue
		}
		attempts := wp.Attempts
		if attempts == 0 {
			attempts = 1
		}
		rate := float64(wp.IncorrectAttempts) / float64(attempts)
		if best.Word == "" || rate > bestRate {
			bestRate = rate
			plural := "s"
			if wp.IncorrectAttempts == 1 {
				plural = ""
			}
			best = MostMissed{
				Word:    word,
				Rate:    int(math.Round(rate * 100)),
				Count:   wp.IncorrectAttempts,
				Message: fmt.Sprintf("%q has %d mistake%s", word, wp.IncorrectAttempts, plural),
			}
		}
	}
	return best
}

// PatternSummary produces a short description of recurring recognition
// patterns over the last 20 attempts across all words.
func PatternSummary(all map[string]WordProgress) string {
	recent := LastAttempts(all, 20)
	if len(recent) == 0 {
		return "Recognition patterns are consistent with your speech"
	}

	var incorrect, nearCorrect int
	var clarity []int
	for _, a := range recent {
		switch a.Grade {
		case evaluate.GradeIncorrect:
			incorrect++
		case evaluate.GradeNearCorrect:
			nearCorrect++
		}
		if a.ClarityScore != nil {
			clarity = append(clarity, *a.ClarityScore)
		}
	}

	var patterns []string
	total := float64(len(recent))
	if float64(incorrect)/total > 0.3 {
		patterns = append(patterns, "the recognizer frequently misinterprets your pronunciation")
	}
	if float64(nearCorrect)/total > 0.4 {
		patterns = append(patterns, "your speech is often heard as close but not exact")
	}
	if len(clarity) > 0 && meanInt(clarity) < 60 {
		patterns = append(patterns, "lower clarity is detected in your speech")
	}

	if len(patterns) == 0 {
		return "Recognition patterns are consistent with your speech"
	}
	return strings.Join(patterns, "; ")
}

// ComputeOverview assembles the full cross-word rollup.
func ComputeOverview(all map[string]WordProgress, wordList []string) Overview {
	return Overview{
		TotalAttempts:   len(AllAttempts(all)),
		RecentAttempts:  LastAttempts(all, overviewWindow),
		ClarityTrend:    ClarityTrend(all),
		SimilarityTrend: SimilarityTrend(all),
		MostMissed:      MostMissedWord(all, wordList),
		PatternSummary:  PatternSummary(all),
	}
}

func meanInt(vs []int) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vs {
		sum += v
	}
	return float64(sum) / float64(len(vs))
}
