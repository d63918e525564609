package progress

import (
	"math"

	"github.com/speakbetter/speakbetter/internal/evaluate"
)

// Trend describes the direction of recent performance for a word.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// trendWindow is the number of most-recent attempts inspected by the trend
// calculation.
const trendWindow = 5

// Analytics is the derived, never-stored rollup over an attempt history.
// Nullable fields are nil when no attempt carries the respective score.
type Analytics struct {
	TotalAttempts   int  `json:"totalAttempts"`
	AccuracyRate    int  `json:"accuracyRate"`
	NearCorrectRate int  `json:"nearCorrectRate"`
	AvgClarity      *int `json:"avgClarity"`
	AvgSimilarity   *int `json:"avgSimilarity"`
	BestClarity     *int `json:"bestClarity"`
	WorstClarity    *int `json:"worstClarity"`
	BestSimilarity  *int `json:"bestSimilarity"`
	WorstSimilarity *int `json:"worstSimilarity"`

	// Trend is empty with fewer than 3 attempts.
	Trend Trend `json:"trend,omitempty"`

	// ImprovementRate compares mean similarity between the first and second
	// half of the history, as a percentage of the first half's mean. Nil with
	// fewer than 4 attempts or when either half has no scored attempts.
	ImprovementRate *int `json:"improvementRate"`
}

// ComputeAnalytics derives the rolling analytics for one word from its
// attempt history. Pure read-side function; the result is never persisted.
func ComputeAnalytics(history []Attempt) Analytics {
	if len(history) == 0 {
		return Analytics{}
	}

	total := len(history)
	var correct, nearCorrect int
	var claritySeen, similaritySeen []int
	for _, a := range history {
		switch a.Grade {
		case evaluate.GradeCorrect:
			correct++
		case evaluate.GradeNearCorrect:
			nearCorrect++
		}
		if a.ClarityScore != nil {
			claritySeen = append(claritySeen, *a.ClarityScore)
		}
		similaritySeen = append(similaritySeen, a.SimilarityScore)
	}

	a := Analytics{
		TotalAttempts:   total,
		AccuracyRate:    roundPct(correct, total),
		NearCorrectRate: roundPct(nearCorrect, total),
		Trend:           computeTrend(history),
		ImprovementRate: improvementRate(history),
	}

	a.AvgClarity, a.BestClarity, a.WorstClarity = summarize(claritySeen)
	a.AvgSimilarity, a.BestSimilarity, a.WorstSimilarity = summarize(similaritySeen)
	return a
}

// computeTrend classifies the last trendWindow attempts. Grades map to
// numeric levels (correct 3, near-correct 2, incorrect 1); the window is
// split with a ceiling midpoint and the half-means compared with a ±0.3
// dead band.
func computeTrend(history []Attempt) Trend {
	if len(history) < 3 {
		return ""
	}

	recent := history
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	levels := make([]float64, len(recent))
	for i, a := range recent {
		switch a.Grade {
		case evaluate.GradeCorrect:
			levels[i] = 3
		case evaluate.GradeNearCorrect:
			levels[i] = 2
		default:
			levels[i] = 1
		}
	}

	mid := (len(levels) + 1) / 2 // ceiling split
	firstAvg := mean(levels[:mid])
	secondAvg := mean(levels[mid:])

	diff := secondAvg - firstAvg
	switch {
	case diff > 0.3:
		return TrendImproving
	case diff < -0.3:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// improvementRate compares mean similarity between the two halves of the
// full history (floor midpoint).
func improvementRate(history []Attempt) *int {
	if len(history) < 4 {
		return nil
	}

	mid := len(history) / 2
	firstMean, firstOK := meanSimilarity(history[:mid])
	secondMean, secondOK := meanSimilarity(history[mid:])
	if !firstOK || !secondOK || firstMean == 0 {
		return nil
	}

	rate := int(math.Round((secondMean - firstMean) / firstMean * 100))
	return &rate
}

func meanSimilarity(attempts []Attempt) (float64, bool) {
	if len(attempts) == 0 {
		return 0, false
	}
	var sum float64
	for _, a := range attempts {
		sum += float64(a.SimilarityScore)
	}
	return sum / float64(len(attempts)), true
}

// summarize returns rounded-average, best, and worst over scores, or three
// nils when scores is empty.
func summarize(scores []int) (avg, best, worst *int) {
	if len(scores) == 0 {
		return nil, nil, nil
	}
	sum, hi, lo := 0, scores[0], scores[0]
	for _, s := range scores {
		sum += s
		if s > hi {
			hi = s
		}
		if s < lo {
			lo = s
		}
	}
	a := int(math.Round(float64(sum) / float64(len(scores))))
	return &a, &hi, &lo
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func roundPct(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
