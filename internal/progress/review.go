package progress

import "github.com/speakbetter/speakbetter/internal/evaluate"

// applyGrade advances the review state machine for one graded attempt.
//
// Transitions:
//
//   - incorrect: increment IncorrectAttempts, reset ConsecutiveCorrect, and
//     enter review once IncorrectAttempts reaches ReviewThreshold.
//   - correct or near-correct: extend the streak. Review is cleared only when
//     the attempt's grade is exactly correct AND the streak has reached
//     MasteryThreshold — a near-correct attempt counts toward the streak but
//     never itself graduates a word out of review.
//
// Initial state is {0, 0, false}; every state is re-enterable.
func applyGrade(wp *WordProgress, grade evaluate.Grade) {
	if grade == evaluate.GradeIncorrect {
		wp.IncorrectAttempts++
		wp.ConsecutiveCorrect = 0
		if wp.IncorrectAttempts >= ReviewThreshold {
			wp.InReview = true
		}
		return
	}

	wp.ConsecutiveCorrect++
	if wp.InReview && grade == evaluate.GradeCorrect && wp.ConsecutiveCorrect >= MasteryThreshold {
		wp.InReview = false
	}
}
