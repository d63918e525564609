// Package postgres provides a PostgreSQL-backed implementation of
// [progress.Store] for multi-instance deployments where a local JSON file
// will not do.
//
// The whole progress map lives in a single word_progress table with one JSONB
// document per word. Save replaces the table contents in one transaction so
// readers never observe a half-written map.
//
// Usage:
//
//	store, err := postgres.NewStore(ctx, dsn)
//	if err != nil { … }
//	defer store.Close()
//
//	ledger := progress.NewLedger(store)
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/speakbetter/speakbetter/internal/progress"
)

var _ progress.Store = (*Store)(nil)

const ddlWordProgress = `
CREATE TABLE IF NOT EXISTS word_progress (
    word        TEXT         PRIMARY KEY,
    progress    JSONB        NOT NULL,
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

// Store persists word progress in PostgreSQL. Safe for concurrent use; all
// operations share a single [pgxpool.Pool].
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at dsn, verifies the connection, and
// ensures the word_progress table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, ddlWordProgress); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Load implements [progress.Store.Load]. Rows whose JSONB document cannot be
// decoded are skipped with a warning; one corrupt word must not take the
// whole history down.
func (s *Store) Load(ctx context.Context) (map[string]progress.WordProgress, error) {
	rows, err := s.pool.Query(ctx, `SELECT word, progress FROM word_progress`)
	if err != nil {
		return nil, fmt.Errorf("postgres store: query: %w", err)
	}
	defer rows.Close()

	out := map[string]progress.WordProgress{}
	for rows.Next() {
		var word string
		var doc []byte
		if err := rows.Scan(&word, &doc); err != nil {
			return nil, fmt.Errorf("postgres store: scan: %w", err)
		}
		var wp progress.WordProgress
		if err := json.Unmarshal(doc, &wp); err != nil {
			slog.Warn("skipping malformed progress row", "word", word, "err", err)
			continue
		}
		out[word] = wp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres store: iterate: %w", err)
	}
	return out, nil
}

// Save implements [progress.Store.Save]. The table is replaced wholesale in
// one transaction: words removed from the map disappear from the table too.
func (s *Store) Save(ctx context.Context, m map[string]progress.WordProgress) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("postgres store: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM word_progress`); err != nil {
		return fmt.Errorf("postgres store: delete: %w", err)
	}

	batch := &pgx.Batch{}
	for word, wp := range m {
		doc, err := json.Marshal(wp)
		if err != nil {
			return fmt.Errorf("postgres store: marshal %q: %w", word, err)
		}
		batch.Queue(
			`INSERT INTO word_progress (word, progress, updated_at) VALUES ($1, $2, now())`,
			word, doc,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres store: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres store: commit: %w", err)
	}
	return nil
}

// Clear implements [progress.Store.Clear].
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM word_progress`); err != nil {
		return fmt.Errorf("postgres store: clear: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable. Used by health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all connections held by the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}
