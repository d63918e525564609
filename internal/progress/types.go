// Package progress tracks per-word pronunciation attempts over time.
//
// The package owns three concerns:
//
//   - The attempt ledger ([Ledger]): an append-only per-word history of
//     graded attempts with bounded buffers, persisted through an injected
//     [Store].
//   - The review scheduler: a counter state machine deciding which words
//     enter and leave the review queue (see [WordProgress] and the
//     transition applied by [Ledger.RecordAttempt]).
//   - Read-side analytics: [ComputeAnalytics], [Suggest], [Insights], and
//     the cross-word overview helpers. These never mutate state.
package progress

import (
	"time"

	"github.com/speakbetter/speakbetter/internal/evaluate"
)

// Bookkeeping thresholds and buffer bounds.
const (
	// ReviewThreshold is the number of incorrect attempts after which a word
	// enters the review queue.
	ReviewThreshold = 2

	// MasteryThreshold is the consecutive-correct streak length required
	// before a correct attempt clears a word from review.
	MasteryThreshold = 2

	// HistoryLimit bounds the per-word attempt history; the oldest attempt
	// is evicted first.
	HistoryLimit = 20

	// ScoreBufferLimit bounds the auxiliary raw clarity/similarity buffers.
	ScoreBufferLimit = 10
)

// Attempt is the immutable record of one evaluated pronunciation attempt.
type Attempt struct {
	// Timestamp is assigned at creation and is monotonically non-decreasing
	// within a word's history.
	Timestamp time.Time `json:"timestamp"`

	Grade evaluate.Grade `json:"grade"`

	// ClarityScore is nil when the provider returned no confidence metadata.
	ClarityScore *int `json:"clarityScore"`

	SimilarityScore int `json:"similarityScore"`

	// IsCorrect is derived from Grade; retained for consumers that predate
	// the three-way grading.
	IsCorrect bool `json:"isCorrect"`
}

// WordProgress is the mutable aggregate for one practiced word. Words are
// keyed by the exact string from the configured word list (case-sensitive).
// A record is created lazily on the word's first attempt and removed only by
// a full reset.
type WordProgress struct {
	// Attempts is the total attempt count, monotonically increasing.
	Attempts int `json:"attempts"`

	// IncorrectAttempts counts attempts graded incorrect. Always <= Attempts.
	IncorrectAttempts int `json:"incorrectAttempts"`

	// ConsecutiveCorrect is the current correct/near-correct run length.
	// Reset to 0 by any incorrect attempt.
	ConsecutiveCorrect int `json:"consecutiveCorrect"`

	// InReview marks the word for remediation practice. Set once
	// IncorrectAttempts reaches ReviewThreshold; cleared only by a correct
	// attempt at a streak of at least MasteryThreshold.
	InReview bool `json:"inReview"`

	LastAttempted time.Time      `json:"lastAttempted"`
	LastGrade     evaluate.Grade `json:"lastGrade,omitempty"`

	// AttemptHistory holds the HistoryLimit most recent attempts in
	// chronological order. This is the authoritative sequence; the raw score
	// buffers below are auxiliary.
	AttemptHistory []Attempt `json:"attemptHistory"`

	// ClarityScores and SimilarityScores hold the ScoreBufferLimit most
	// recent raw scores. Nil clarity scores are not appended.
	ClarityScores    []int `json:"clarityScores,omitempty"`
	SimilarityScores []int `json:"similarityScores,omitempty"`
}
