package progress

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/speakbetter/speakbetter/internal/evaluate"
)

// LedgerOption is a functional option for configuring a [Ledger].
type LedgerOption func(*Ledger)

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

// Ledger owns all writes to the progress store. Each recorded attempt is a
// single read-modify-write transaction against the per-word record: append
// to the bounded history, update the counters, and run the review-scheduler
// transition, then persist. The per-ledger mutex serializes writers — the
// counter updates are not commutative, so a lost update would corrupt the
// review state machine.
type Ledger struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

// NewLedger creates a Ledger backed by store.
func NewLedger(store Store, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// RecordAttempt appends one evaluated attempt for word and persists the
// updated state.
//
// The word's [WordProgress] is created lazily on its first attempt. The
// returned record reflects the update even when persistence fails: a store
// write error is returned alongside the updated record so the caller can
// surface a non-blocking warning, but the evaluation itself is never lost.
// A store read error is absorbed fail-open (treated as "no history yet") and
// logged.
func (l *Ledger) RecordAttempt(ctx context.Context, word string, res evaluate.Result) (WordProgress, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	all, err := l.store.Load(ctx)
	if err != nil {
		slog.Warn("progress load failed, starting from empty history", "err", err)
		all = map[string]WordProgress{}
	}

	wp := all[word]

	ts := l.now()
	// Timestamps within a word's history are monotonically non-decreasing.
	if wp.LastAttempted.After(ts) {
		ts = wp.LastAttempted
	}

	wp.Attempts++
	wp.LastAttempted = ts
	wp.LastGrade = res.Grade

	if res.ClarityScore != nil {
		wp.ClarityScores = appendBounded(wp.ClarityScores, *res.ClarityScore, ScoreBufferLimit)
	}
	wp.SimilarityScores = appendBounded(wp.SimilarityScores, res.SimilarityScore, ScoreBufferLimit)

	wp.AttemptHistory = appendBounded(wp.AttemptHistory, Attempt{
		Timestamp:       ts,
		Grade:           res.Grade,
		ClarityScore:    res.ClarityScore,
		SimilarityScore: res.SimilarityScore,
		IsCorrect:       res.IsCorrect,
	}, HistoryLimit)

	applyGrade(&wp, res.Grade)

	all[word] = wp

	if err := l.store.Save(ctx, all); err != nil {
		return wp, fmt.Errorf("progress: save: %w", err)
	}
	return wp, nil
}

// WordStats returns the progress record for word. An unpracticed word yields
// a zero-valued record, not an error.
func (l *Ledger) WordStats(ctx context.Context, word string) (WordProgress, error) {
	all, err := l.store.Load(ctx)
	if err != nil {
		return WordProgress{}, fmt.Errorf("progress: load: %w", err)
	}
	return all[word], nil
}

// AttemptHistory returns word's bounded attempt history, most recent last.
func (l *Ledger) AttemptHistory(ctx context.Context, word string) ([]Attempt, error) {
	wp, err := l.WordStats(ctx, word)
	if err != nil {
		return nil, err
	}
	return wp.AttemptHistory, nil
}

// ReviewQueue returns the words currently flagged for review, restricted to
// the configured word list, sorted by most mistakes first and most recently
// attempted first as the tie-break.
func (l *Ledger) ReviewQueue(ctx context.Context, wordList []string) ([]string, error) {
	all, err := l.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("progress: load: %w", err)
	}

	type entry struct {
		word string
		wp   WordProgress
	}
	var entries []entry
	for _, word := range wordList {
		wp, ok := all[word]
		if ok && wp.InReview {
			entries = append(entries, entry{word, wp})
		}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if a.wp.IncorrectAttempts != b.wp.IncorrectAttempts {
			return b.wp.IncorrectAttempts - a.wp.IncorrectAttempts
		}
		return b.wp.LastAttempted.Compare(a.wp.LastAttempted)
	})

	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.word
	}
	return words, nil
}

// FocusSuggestions returns up to limit practice-focus suggestions derived
// from the full progress map. See [Suggest].
func (l *Ledger) FocusSuggestions(ctx context.Context, limit int) ([]Suggestion, error) {
	all, err := l.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("progress: load: %w", err)
	}
	return Suggest(all, limit), nil
}

// Snapshot returns the full progress map for read-side consumers such as the
// cross-word overview helpers.
func (l *Ledger) Snapshot(ctx context.Context) (map[string]WordProgress, error) {
	all, err := l.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("progress: load: %w", err)
	}
	return all, nil
}

// Clear removes all stored progress. Test/debug use.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Clear(ctx); err != nil {
		return fmt.Errorf("progress: clear: %w", err)
	}
	return nil
}

// appendBounded appends v to s, evicting from the front so that the result
// holds at most limit elements.
func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if len(s) > limit {
		s = slices.Clone(s[len(s)-limit:])
	}
	return s
}
