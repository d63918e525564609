// Package feedback turns evaluation grades into short encouragement
// messages for the practice UI.
package feedback

import (
	"fmt"
	"math/rand/v2"

	"github.com/speakbetter/speakbetter/internal/evaluate"
)

var positiveMessages = []string{
	"Great job! You said that perfectly!",
	"Excellent! Your pronunciation is spot on!",
	"Perfect! You got it right!",
	"Wonderful! You said it correctly!",
	"Amazing! That was exactly right!",
}

var nearCorrectMessages = []string{
	"So close! Just a small adjustment needed.",
	"Almost there! Your pronunciation is very close.",
	"Very close! One more try and you'll have it.",
}

// encouragingMessages take the expected-word fragment as the %s argument.
var encouragingMessages = []string{
	"Good try!%s Let's try again!",
	"Not quite right.%s Keep practicing!",
	"Close! But the word was different.%s You can do it!",
	"Almost there! The word didn't quite match.%s Try again!",
}

// NoSpeechMessage is returned when the recording contained no usable speech.
const NoSpeechMessage = "I couldn't hear anything. Please try speaking louder or closer to the microphone."

// Picker selects a feedback message for a graded attempt. Selection is
// random; inject a seeded source for reproducible output in tests.
type Picker struct {
	rng *rand.Rand
}

// NewPicker creates a Picker drawing from rng, or from the global random
// source when rng is nil.
func NewPicker(rng *rand.Rand) *Picker {
	return &Picker{rng: rng}
}

func (p *Picker) pick(pool []string) string {
	if p.rng == nil {
		return pool[rand.IntN(len(pool))]
	}
	return pool[p.rng.IntN(len(pool))]
}

// Message returns one feedback line for the grade. For incorrect attempts
// the expected word is worked into the message when provided.
func (p *Picker) Message(grade evaluate.Grade, expected string) string {
	switch grade {
	case evaluate.GradeCorrect:
		return p.pick(positiveMessages)
	case evaluate.GradeNearCorrect:
		return p.pick(nearCorrectMessages)
	default:
		var expectedMsg string
		if expected != "" {
			expectedMsg = fmt.Sprintf(" The expected word was %q.", expected)
		}
		return fmt.Sprintf(p.pick(encouragingMessages), expectedMsg)
	}
}
