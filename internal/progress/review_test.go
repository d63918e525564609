package progress

import (
	"testing"

	"github.com/speakbetter/speakbetter/internal/evaluate"
)

func TestApplyGrade_EntersReviewAtThreshold(t *testing.T) {
	t.Parallel()

	var wp WordProgress
	applyGrade(&wp, evaluate.GradeIncorrect)
	if wp.InReview {
		t.Fatal("one incorrect attempt should not enter review")
	}
	applyGrade(&wp, evaluate.GradeIncorrect)
	if !wp.InReview {
		t.Fatal("second incorrect attempt should enter review")
	}
	if wp.IncorrectAttempts != 2 {
		t.Fatalf("IncorrectAttempts = %d, want 2", wp.IncorrectAttempts)
	}
}

func TestApplyGrade_NonConsecutiveMistakesStillAccumulate(t *testing.T) {
	t.Parallel()

	var wp WordProgress
	applyGrade(&wp, evaluate.GradeIncorrect)
	applyGrade(&wp, evaluate.GradeCorrect)
	applyGrade(&wp, evaluate.GradeIncorrect)
	if !wp.InReview {
		t.Fatal("incorrect attempts accumulate across correct ones; word should be in review")
	}
}

func TestApplyGrade_MasteryClearsReview(t *testing.T) {
	t.Parallel()

	var wp WordProgress
	applyGrade(&wp, evaluate.GradeIncorrect)
	applyGrade(&wp, evaluate.GradeIncorrect)

	applyGrade(&wp, evaluate.GradeCorrect)
	if !wp.InReview {
		t.Fatal("one correct attempt should not yet clear review")
	}
	applyGrade(&wp, evaluate.GradeCorrect)
	if wp.InReview {
		t.Fatal("second consecutive correct attempt should clear review")
	}
	if wp.ConsecutiveCorrect != 2 {
		t.Fatalf("ConsecutiveCorrect = %d, want 2", wp.ConsecutiveCorrect)
	}
}

func TestApplyGrade_IncorrectResetsStreak(t *testing.T) {
	t.Parallel()

	var wp WordProgress
	applyGrade(&wp, evaluate.GradeIncorrect)
	applyGrade(&wp, evaluate.GradeIncorrect)
	applyGrade(&wp, evaluate.GradeCorrect)
	applyGrade(&wp, evaluate.GradeIncorrect)
	if wp.ConsecutiveCorrect != 0 {
		t.Fatalf("ConsecutiveCorrect = %d, want 0 after an incorrect attempt", wp.ConsecutiveCorrect)
	}
	if !wp.InReview {
		t.Fatal("word should remain in review")
	}
}

// A near-correct attempt keeps a streak alive but never itself graduates a
// word out of review; only an exactly correct attempt at mastery streak does.
func TestApplyGrade_NearCorrectExtendsStreakButDoesNotClear(t *testing.T) {
	t.Parallel()

	var wp WordProgress
	applyGrade(&wp, evaluate.GradeIncorrect)
	applyGrade(&wp, evaluate.GradeIncorrect)

	applyGrade(&wp, evaluate.GradeNearCorrect)
	applyGrade(&wp, evaluate.GradeNearCorrect)
	if wp.ConsecutiveCorrect != 2 {
		t.Fatalf("ConsecutiveCorrect = %d, want 2", wp.ConsecutiveCorrect)
	}
	if !wp.InReview {
		t.Fatal("near-correct attempts must not clear review")
	}

	applyGrade(&wp, evaluate.GradeCorrect)
	if wp.InReview {
		t.Fatal("a correct attempt at streak >= mastery threshold should clear review")
	}
}

func TestApplyGrade_ReviewIsReenterable(t *testing.T) {
	t.Parallel()

	var wp WordProgress
	applyGrade(&wp, evaluate.GradeIncorrect)
	applyGrade(&wp, evaluate.GradeIncorrect)
	applyGrade(&wp, evaluate.GradeCorrect)
	applyGrade(&wp, evaluate.GradeCorrect)
	if wp.InReview {
		t.Fatal("word should have cleared review")
	}

	// IncorrectAttempts is already past the threshold, so a single new
	// mistake re-enters review immediately.
	applyGrade(&wp, evaluate.GradeIncorrect)
	if !wp.InReview {
		t.Fatal("word should re-enter review")
	}
}
