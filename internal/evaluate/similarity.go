package evaluate

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// containmentBonus is added to the similarity score when one normalized
// string contains the other. It rewards transcriptions that embed the target
// inside a longer utterance (stray filler words, "the squirrel" vs
// "squirrel") without letting them reach a perfect score for free.
const containmentBonus = 10

// Similarity returns a 0–100 closeness score between a transcription and the
// target word or phrase.
//
// Both inputs are normalized first. An empty transcription or target scores
// 0. Exact normalized equality scores 100. Otherwise the score is derived
// from the Levenshtein edit distance between the normalized strings,
// normalized by the longer string's length, plus the containment bonus when
// one string contains the other. The result is rounded and clamped to
// [0, 100].
//
// Edit distance captures near-miss pronunciations (a dropped trailing
// consonant costs one edit) far better than token overlap would. The scorer
// is symmetric: the Levenshtein core is symmetric and containment is checked
// in both directions.
func Similarity(transcription, target string) int {
	if transcription == "" || target == "" {
		return 0
	}

	a := Normalize(transcription)
	b := Normalize(target)

	if a == b {
		return 100
	}

	distance := matchr.Levenshtein(a, b)
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		// Unreachable after the equality check, but guards the division.
		return 100
	}

	similarity := float64(maxLen-distance) / float64(maxLen) * 100

	if strings.Contains(a, b) || strings.Contains(b, a) {
		similarity += containmentBonus
	}

	score := int(math.Round(similarity))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
