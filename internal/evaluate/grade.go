package evaluate

// Grade is the discrete outcome of one pronunciation attempt.
type Grade string

const (
	GradeCorrect     Grade = "correct"
	GradeNearCorrect Grade = "near-correct"
	GradeIncorrect   Grade = "incorrect"
)

// IsValid reports whether g is a recognised grade.
func (g Grade) IsValid() bool {
	switch g {
	case GradeCorrect, GradeNearCorrect, GradeIncorrect:
		return true
	}
	return false
}

// Grading thresholds on the 0–100 similarity scale.
const (
	correctThreshold     = 90
	nearCorrectThreshold = 70
)

// GradeFor maps a similarity score to a [Grade].
//
// The grade is a function of similarity alone. Clarity must never feed this
// mapping: a correct pronunciation recorded on a bad microphone is still
// correct.
func GradeFor(similarityScore int) Grade {
	switch {
	case similarityScore >= correctThreshold:
		return GradeCorrect
	case similarityScore >= nearCorrectThreshold:
		return GradeNearCorrect
	default:
		return GradeIncorrect
	}
}
