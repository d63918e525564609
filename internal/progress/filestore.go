package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Compile-time assertion that FileStore satisfies the Store interface.
var _ Store = (*FileStore)(nil)

// FileStore persists the progress map as a single JSON document in a local
// file. It is the single-user default backend. Thread-safe for concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that reads and writes path. The file is
// created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements [Store.Load]. A missing file yields an empty map. A file
// that cannot be parsed also yields an empty map — history is recoverable by
// practicing again, while crashing the evaluation path is not.
func (s *FileStore) Load(ctx context.Context) (map[string]WordProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]WordProgress{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("progress: read %q: %w", s.path, err)
	}

	var m map[string]WordProgress
	if err := json.Unmarshal(data, &m); err != nil {
		slog.Warn("progress file is malformed, starting empty", "path", s.path, "err", err)
		return map[string]WordProgress{}, nil
	}
	if m == nil {
		m = map[string]WordProgress{}
	}
	return m, nil
}

// Save implements [Store.Save]. The document is written to a temporary file
// and renamed into place so a crash mid-write cannot leave a truncated store.
func (s *FileStore) Save(ctx context.Context, m map[string]WordProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("progress: marshal: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("progress: mkdir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("progress: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("progress: rename %q: %w", tmp, err)
	}
	return nil
}

// Clear implements [Store.Clear]. Clearing an absent file succeeds.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("progress: remove %q: %w", s.path, err)
	}
	return nil
}
