// Package wordlist holds the configured set of practice words and helpers
// for stepping through it.
package wordlist

import (
	"math/rand/v2"
	"slices"

	"github.com/antzucaro/matchr"

	"github.com/speakbetter/speakbetter/internal/evaluate"
)

// DefaultWords is the built-in practice list used when the configuration
// does not override it. Word identity is the exact case-sensitive string, so
// proper nouns keep their capitalization.
var DefaultWords = []string{
	"market",
	"project",
	"concept",
	"different",
	"system",
	"analysis",
	"strategy",
	"colleague",
	"algorithm",
	"specific",
	"thrilled",
	"strength",
	"squirrel",
	"rural",
	"entrepreneur",
	"rice",
	"right",
	"ship",
	"Krish",
	"Kamala",
}

// List is an ordered, immutable-by-convention practice word list.
type List struct {
	words []string
}

// New creates a List from words, or from [DefaultWords] when words is empty.
func New(words []string) *List {
	if len(words) == 0 {
		words = DefaultWords
	}
	return &List{words: slices.Clone(words)}
}

// Words returns the list contents in order. Callers must not modify the
// returned slice.
func (l *List) Words() []string { return l.words }

// Len returns the number of words in the list.
func (l *List) Len() int { return len(l.words) }

// Contains reports whether word is in the list. Matching is exact and
// case-sensitive.
func (l *List) Contains(word string) bool {
	return slices.Contains(l.words, word)
}

// Next returns the word following index, wrapping around at the end. A
// negative index yields the first word.
func (l *List) Next(index int) (word string, nextIndex int) {
	nextIndex = (index + 1) % len(l.words)
	if nextIndex < 0 {
		nextIndex += len(l.words)
	}
	return l.words[nextIndex], nextIndex
}

// Random returns a uniformly random word using rng, or the global source
// when rng is nil.
func (l *List) Random(rng *rand.Rand) string {
	if rng == nil {
		return l.words[rand.IntN(len(l.words))]
	}
	return l.words[rng.IntN(len(l.words))]
}

// Closest returns the list word most similar to the transcribed text, for
// "did you mean" style hints when an attempt misses its target. Both sides
// are compared in normalized form with Jaro-Winkler; ok is false when
// nothing scores at least 0.7 or the input normalizes to empty.
func (l *List) Closest(transcription string) (word string, ok bool) {
	heard := evaluate.Normalize(transcription)
	if heard == "" {
		return "", false
	}

	best := ""
	bestScore := 0.0
	for _, w := range l.words {
		score := matchr.JaroWinkler(heard, evaluate.Normalize(w), true)
		if score > bestScore {
			best, bestScore = w, score
		}
	}
	if bestScore < 0.7 {
		return "", false
	}
	return best, true
}
