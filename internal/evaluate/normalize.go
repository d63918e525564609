// Package evaluate scores a speech transcription against the target word the
// user was asked to pronounce.
//
// The pipeline is a chain of pure functions:
//
//  1. [Normalize] canonicalizes raw text (case folding, punctuation removal,
//     whitespace collapsing) so that STT artifacts like trailing periods do
//     not count against the speaker.
//  2. [Similarity] computes a 0–100 closeness score from the Levenshtein edit
//     distance between the normalized strings, with a containment bonus for
//     transcriptions that embed the target inside a longer utterance.
//  3. [GradeFor] maps the similarity score to a discrete [Grade].
//  4. [Clarity] maps the provider's average log-probability to a 0–100
//     confidence score. Clarity is informational only and never influences
//     the grade — audio-quality issues must not penalize a correct
//     pronunciation.
//
// [Evaluate] ties the chain together and produces a single [Result].
package evaluate

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes text for comparison: lower-cases, strips every
// character that is neither a word character (letter, digit, underscore) nor
// whitespace, collapses whitespace runs to a single space, and trims.
// Empty input yields the empty string. Normalize is total — it never fails.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
