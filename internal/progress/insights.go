package progress

import (
	"github.com/speakbetter/speakbetter/internal/evaluate"
)

// maxInsights caps the number of insight messages returned per evaluation.
const maxInsights = 3

// Insights produces human-friendly explanations of why an attempt was
// evaluated the way it was, combining the evaluation result, the provider's
// raw confidence metadata, and the word's recent history. At most
// maxInsights unique messages are returned, most relevant first.
func Insights(res evaluate.Result, meta evaluate.ConfidenceMeta, history []Attempt) []string {
	var insights []string

	// Clarity.
	if res.ClarityScore != nil {
		switch {
		case *res.ClarityScore < 50:
			insights = append(insights, "Your audio was unclear; try speaking louder or closer to the mic.")
		case *res.ClarityScore < 70 && res.SimilarityScore >= 70:
			insights = append(insights, "Your pronunciation was close, but the audio clarity was low. Try speaking more clearly or reducing background noise.")
		}
	}

	// Similarity.
	switch {
	case res.SimilarityScore >= 70 && res.SimilarityScore < 90:
		heard := evaluate.Normalize(res.Transcription)
		expected := evaluate.Normalize(res.Target)
		switch {
		case len(heard) < len(expected)-2:
			insights = append(insights, "The final part of the word was unclear, so a shorter version was heard.")
		case len(heard) > len(expected)+2:
			insights = append(insights, "Extra sounds were heard. Try pronouncing the word more precisely.")
		default:
			insights = append(insights, "Close! The pronunciation was similar but not quite exact. Keep practicing!")
		}
	case res.SimilarityScore < 70:
		insights = append(insights, "Something different from the expected word was heard. Try focusing on the key sounds.")
	}

	// Correct pronunciation, poor audio.
	if res.SimilarityScore >= 90 && res.ClarityScore != nil && *res.ClarityScore < 70 {
		insights = append(insights, "Your pronunciation was correct, but the audio quality was low. Try speaking closer to the microphone.")
	}

	// Provider metadata.
	if meta.NoSpeechProb != nil && *meta.NoSpeechProb > 0.3 {
		insights = append(insights, "The recognizer detected unclear speech. Make sure you're speaking clearly into the microphone.")
	}
	if meta.CompressionRatio != nil && *meta.CompressionRatio > 2.5 {
		insights = append(insights, "Background noise may have affected the recording. Try a quieter environment.")
	}

	// Patterns over the word's recent history.
	if len(history) >= 3 {
		recent := history[len(history)-3:]

		var recentClarity []int
		lowSimilarity := 0
		for _, a := range recent {
			if a.ClarityScore != nil {
				recentClarity = append(recentClarity, *a.ClarityScore)
			}
			if a.SimilarityScore < 70 {
				lowSimilarity++
			}
		}

		if len(recentClarity) >= 2 && recentClarity[len(recentClarity)-1]-recentClarity[0] < -10 {
			insights = append(insights, "Your audio clarity has been decreasing. Check your microphone or speaking distance.")
		}
		if lowSimilarity >= 2 {
			insights = append(insights, "You've had difficulty with this word recently. Try breaking it down into syllables.")
		}

		lowClarity := 0
		for _, c := range recentClarity {
			if c < 50 {
				lowClarity++
			}
		}
		if lowClarity >= 2 {
			insights = append(insights, "Your audio has been consistently unclear. Try adjusting your microphone or speaking environment.")
		}
	}

	// Grade-specific encouragement.
	switch res.Grade {
	case evaluate.GradeCorrect:
		if len(history) > 1 && history[len(history)-2].Grade != evaluate.GradeCorrect {
			insights = append(insights, "Great improvement! You got it right this time.")
		}
	case evaluate.GradeNearCorrect:
		insights = append(insights, "You're very close! Small adjustments will get you there.")
	}

	return dedupe(insights, maxInsights)
}

// WordSummaryInsight produces a single summary line for a word's full
// history, or "" when there is nothing worth saying.
func WordSummaryInsight(history []Attempt) string {
	if len(history) == 0 {
		return ""
	}

	correct := 0
	for _, a := range history {
		if a.Grade == evaluate.GradeCorrect {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(history)) * 100

	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	allCorrect := true
	for _, a := range recent {
		if a.Grade != evaluate.GradeCorrect {
			allCorrect = false
			break
		}
	}
	improving := recent[len(recent)-1].Grade == evaluate.GradeCorrect &&
		recent[0].Grade != evaluate.GradeCorrect

	switch {
	case allCorrect && len(history) >= 3:
		return "You've mastered this word! Great consistency."
	case improving:
		return "You're improving with this word! Keep it up."
	case accuracy < 30:
		return "This word is challenging. Focus on the key sounds."
	case accuracy < 60:
		return "You're making progress. A bit more practice will help."
	}
	return ""
}

// dedupe removes duplicate strings preserving order and caps the result.
func dedupe(in []string, limit int) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
