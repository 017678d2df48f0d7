package db

import (
	"context"
	"time"
)

// Column describes one result column: its name and PostgreSQL type OID.
type Column struct {
	Name string
	OID  uint32
}

// Cursor is a forward-only, read-only iterator over query results. Rows are
// pulled incrementally from the server; the full result set is never held
// in memory. A Cursor is owned by exactly one export and must be closed.
type Cursor interface {
	// Columns is available immediately, even for empty result sets.
	Columns() []Column
	Next() bool
	Values() ([]any, error)
	Err() error
	Close()
}

// StreamOptions controls server-side streaming for one query.
type StreamOptions struct {
	// BatchSize is the number of rows fetched per server round-trip.
	BatchSize int
	// Timeout is the statement timeout applied for this query.
	Timeout time.Duration
}

// Store defines the interface for database operations.
// Implementations should handle connection management and streamed query
// execution.
type Store interface {
	Connect() error
	Close() error
	StreamQuery(ctx context.Context, sql string, opts StreamOptions) (Cursor, error)
}
