package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/speakbetter/speakbetter/internal/evaluate"
	"github.com/speakbetter/speakbetter/internal/progress"
	"github.com/speakbetter/speakbetter/internal/progress/postgres"
)

// testDSN returns the test database DSN from the environment, or skips the
// test if SPEAKBETTER_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("SPEAKBETTER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SPEAKBETTER_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

// newTestStore creates a fresh [postgres.Store] with an empty table and
// registers cleanup to close it.
func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()

	store, err := postgres.NewStore(ctx, testDSN(t))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clarity := 89
	in := map[string]progress.WordProgress{
		"squirrel": {
			Attempts:          2,
			IncorrectAttempts: 1,
			LastAttempted:     time.Unix(1700000000, 0).UTC(),
			LastGrade:         evaluate.GradeCorrect,
			AttemptHistory: []progress.Attempt{
				{
					Timestamp:       time.Unix(1700000000, 0).UTC(),
					Grade:           evaluate.GradeCorrect,
					ClarityScore:    &clarity,
					SimilarityScore: 100,
					IsCorrect:       true,
				},
			},
			ClarityScores:    []int{89},
			SimilarityScores: []int{40, 100},
		},
		"rural": {Attempts: 1, IncorrectAttempts: 1},
	}

	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d words, want 2", len(got))
	}
	wp := got["squirrel"]
	if wp.Attempts != 2 || wp.IncorrectAttempts != 1 {
		t.Fatalf("counters lost: %+v", wp)
	}
	if len(wp.AttemptHistory) != 1 {
		t.Fatalf("AttemptHistory len = %d, want 1", len(wp.AttemptHistory))
	}
	if wp.AttemptHistory[0].ClarityScore == nil || *wp.AttemptHistory[0].ClarityScore != 89 {
		t.Fatalf("ClarityScore = %v, want 89", wp.AttemptHistory[0].ClarityScore)
	}
}

func TestStore_SaveReplacesWholeMap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, map[string]progress.WordProgress{
		"squirrel": {Attempts: 1},
		"rural":    {Attempts: 1},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, map[string]progress.WordProgress{
		"squirrel": {Attempts: 2},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("loaded %d words, want 1: save must replace, not merge", len(got))
	}
	if got["squirrel"].Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2", got["squirrel"].Attempts)
	}
}

func TestStore_ClearAndEmptyLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, map[string]progress.WordProgress{"market": {Attempts: 3}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("loaded %d words after clear, want 0", len(got))
	}
}
