package progress

import (
	"context"
	"sync"
)

// Compile-time assertion that MemStore satisfies the Store interface.
var _ Store = (*MemStore)(nil)

// MemStore is a thread-safe, in-memory implementation of [Store].
// It is suitable for single-session use and testing.
type MemStore struct {
	mu sync.RWMutex
	m  map[string]WordProgress
}

// NewMemStore returns an initialised [MemStore].
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]WordProgress)}
}

// Load implements [Store.Load]. The returned map is a deep-enough copy: the
// caller may mutate it and the slices it contains without affecting the store.
func (s *MemStore) Load(ctx context.Context) (map[string]WordProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]WordProgress, len(s.m))
	for word, wp := range s.m {
		out[word] = cloneProgress(wp)
	}
	return out, nil
}

// Save implements [Store.Save].
func (s *MemStore) Save(ctx context.Context, m map[string]WordProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = make(map[string]WordProgress, len(m))
	for word, wp := range m {
		s.m[word] = cloneProgress(wp)
	}
	return nil
}

// Clear implements [Store.Clear].
func (s *MemStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m = make(map[string]WordProgress)
	return nil
}

// cloneProgress copies wp including its backing slices.
func cloneProgress(wp WordProgress) WordProgress {
	out := wp
	if wp.AttemptHistory != nil {
		out.AttemptHistory = make([]Attempt, len(wp.AttemptHistory))
		copy(out.AttemptHistory, wp.AttemptHistory)
	}
	if wp.ClarityScores != nil {
		out.ClarityScores = make([]int, len(wp.ClarityScores))
		copy(out.ClarityScores, wp.ClarityScores)
	}
	if wp.SimilarityScores != nil {
		out.SimilarityScores = make([]int, len(wp.SimilarityScores))
		copy(out.SimilarityScores, wp.SimilarityScores)
	}
	return out
}
