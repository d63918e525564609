package progress

import "context"

// Store persists the full word → [WordProgress] map. The [Ledger] is the only
// writer; read-side consumers go through the Ledger as well.
//
// Implementations must be safe for concurrent use. The in-memory [MemStore]
// and JSON-file [FileStore] live in this package; a PostgreSQL-backed
// implementation lives in the postgres subpackage.
type Store interface {
	// Load returns the complete stored progress map. Implementations follow
	// fail-open semantics for malformed records: a record that cannot be
	// decoded is skipped (or zeroed), never fatal. An absent backing store
	// yields an empty map and no error.
	Load(ctx context.Context) (map[string]WordProgress, error)

	// Save replaces the stored progress map with m.
	Save(ctx context.Context, m map[string]WordProgress) error

	// Clear removes all stored progress.
	Clear(ctx context.Context) error
}
