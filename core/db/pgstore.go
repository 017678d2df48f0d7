package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/fbz-tec/pgxdump/internal/logger"
	"github.com/jackc/pgx/v5"
)

const cursorName = "pgxdump_stream"

// PgStore represents a PostgreSQL database store connection.
type PgStore struct {
	dsn  string
	conn *pgx.Conn
}

// NewPgStore creates a new PostgreSQL store instance with the given DSN.
func NewPgStore(dsn string) *PgStore {
	return &PgStore{dsn: dsn}
}

// Connect establishes a connection to the PostgreSQL database.
// Returns an error if the connection fails or if ping fails.
func (s *PgStore) Connect() error {
	if s.conn != nil {
		return nil // already connected
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Debug("Attempting to connect to database host: %s", sanitizeDSN(s.dsn))

	conn, err := pgx.Connect(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	logger.Debug("Connection established, verifying connectivity (ping)...")

	if err := conn.Ping(ctx); err != nil {
		conn.Close(ctx)
		return fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Debug("Database ping successful")
	s.conn = conn
	return nil
}

// Close closes the database connection.
// Returns an error if the close operation fails.
func (s *PgStore) Close() error {
	logger.Debug("Closing database connection...")

	if s.conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := s.conn.Close(ctx)
		if err != nil {
			logger.Debug("Error closing database connection: %v", err)
		}
		s.conn = nil
		return err
	}
	return nil
}

// StreamQuery executes sql inside a read-only transaction and returns a
// Cursor streaming rows in batches of opts.BatchSize via a server-side
// cursor. The transaction holds the connection until the Cursor is closed;
// Close rolls the transaction back, which is always safe for reads.
func (s *PgStore) StreamQuery(ctx context.Context, sql string, opts StreamOptions) (Cursor, error) {
	if s.conn == nil {
		return nil, fmt.Errorf("database not connected")
	}

	batch := opts.BatchSize
	if batch < 1 {
		batch = 1
	}

	logger.Debug("Starting streamed query (batch=%d, timeout=%v)", batch, opts.Timeout)
	logger.Debug("Query: %s", sql)

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{
		AccessMode: pgx.ReadOnly,
		IsoLevel:   pgx.ReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to begin read-only transaction: %w", err)
	}

	if opts.Timeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", opts.Timeout.Milliseconds())); err != nil {
			tx.Rollback(ctx)
			return nil, fmt.Errorf("unable to set statement timeout: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("DECLARE %s NO SCROLL CURSOR FOR %s", cursorName, sql)); err != nil {
		tx.Rollback(ctx)
		return nil, fmt.Errorf("unable to declare cursor: %w", err)
	}

	cur := &pgCursor{ctx: ctx, tx: tx, batch: batch}

	// First fetch runs eagerly so column metadata is available before the
	// first Next call, including for empty result sets.
	if err := cur.fetch(); err != nil {
		cur.Close()
		return nil, err
	}

	return cur, nil
}

// pgCursor pulls rows from a server-side cursor in fixed-size batches.
// Only one batch is buffered client-side at any time.
type pgCursor struct {
	ctx    context.Context
	tx     pgx.Tx
	batch  int
	cols   []Column
	buf    [][]any
	pos    int
	done   bool
	err    error
	closed bool
}

func (c *pgCursor) fetch() error {
	rows, err := c.tx.Query(c.ctx, fmt.Sprintf("FETCH FORWARD %d FROM %s", c.batch, cursorName))
	if err != nil {
		c.err = fmt.Errorf("cursor fetch failed: %w", err)
		return c.err
	}
	defer rows.Close()

	if c.cols == nil {
		fields := rows.FieldDescriptions()
		c.cols = make([]Column, len(fields))
		for i, fd := range fields {
			c.cols[i] = Column{Name: string(fd.Name), OID: fd.DataTypeOID}
		}
	}

	c.buf = c.buf[:0]
	c.pos = 0
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			c.err = fmt.Errorf("error reading row: %w", err)
			return c.err
		}
		c.buf = append(c.buf, values)
	}
	if err := rows.Err(); err != nil {
		c.err = fmt.Errorf("error iterating rows: %w", err)
		return c.err
	}

	if len(c.buf) < c.batch {
		c.done = true
	}
	return nil
}

func (c *pgCursor) Columns() []Column { return c.cols }

func (c *pgCursor) Next() bool {
	if c.err != nil || c.closed {
		return false
	}
	if c.pos < len(c.buf) {
		return true
	}
	if c.done {
		return false
	}
	if err := c.fetch(); err != nil {
		return false
	}
	return c.pos < len(c.buf)
}

func (c *pgCursor) Values() ([]any, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.pos >= len(c.buf) {
		return nil, fmt.Errorf("no current row")
	}
	values := c.buf[c.pos]
	c.pos++
	return values, nil
}

func (c *pgCursor) Err() error { return c.err }

// Close releases the server-side cursor by rolling back the read-only
// transaction. Safe to call more than once.
func (c *pgCursor) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if err := c.tx.Rollback(context.Background()); err != nil && err != pgx.ErrTxClosed {
		logger.Debug("Error releasing cursor transaction: %v", err)
	}
}

// sanitizeDSN masks the password inside a PostgreSQL DSN before logging.
func sanitizeDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<invalid-dsn>"
	}

	var userInfo string
	if u.User != nil {
		username := u.User.Username()
		if _, hasPwd := u.User.Password(); hasPwd {
			userInfo = fmt.Sprintf("%s:***@", username)
		} else {
			userInfo = fmt.Sprintf("%s@", username)
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	return fmt.Sprintf("%s://%s%s%s", u.Scheme, userInfo, u.Host, path)
}
