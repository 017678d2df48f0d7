package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fbz-tec/pgxdump/core/config"
	"github.com/fbz-tec/pgxdump/core/db"
	"github.com/fbz-tec/pgxdump/core/exporters"
	"github.com/fbz-tec/pgxdump/core/manifest"
	"github.com/fbz-tec/pgxdump/core/query"
	"github.com/fbz-tec/pgxdump/core/validation"
	"github.com/fbz-tec/pgxdump/core/window"
	"github.com/fbz-tec/pgxdump/internal/logger"
)

// WriterOptions carries per-run output settings chosen by the caller
// (format, delimiter, compression, time rendering, progress display).
// Split size and batch size come from the injected Config.
type WriterOptions struct {
	Format      string
	Delimiter   rune
	Compression string
	TimeFormat  string
	TimeZone    string
	ProgressBar bool
}

// Service owns the end-to-end export flow: validate, build or accept a
// query, stream rows through a split writer, and report the produced file
// set. One Service handles any number of sequential exports; concurrent
// exports should each use their own Store.
type Service struct {
	cfg    config.Config
	store  db.Store
	opts   WriterOptions
	policy FilenamePolicy
}

// NewService builds a Service with explicit configuration. Nothing is read
// from ambient state.
func NewService(cfg config.Config, store db.Store, opts WriterOptions) *Service {
	if opts.Format == "" {
		opts.Format = exporters.FormatCSV
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Service{cfg: cfg, store: store, opts: opts}
}

// ExportWindowed runs a calendar-windowed export of one table. The window
// spec must already be constructed (and therefore bounds-checked); table
// and column identifiers are validated before any database round-trip.
func (s *Service) ExportWindowed(ctx context.Context, tableName string, spec window.Spec, dateColumn string) (*Result, error) {
	const op = "windowed export"

	logger.Info("Starting windowed export of %s (%s)", tableName, spec)

	q, err := query.Build(tableName, spec, dateColumn, s.cfg.DefaultSchema)
	if err != nil {
		return nil, validationErr(op, err)
	}

	base := s.policy.WindowedBase(tableName, spec)
	res, err := s.run(ctx, op, q.SQL, base, s.statementTimeout())
	if err != nil {
		return nil, err
	}

	s.writeManifest(res, base, manifest.Manifest{
		ExportName: Sanitize(tableName),
		Kind:       "windowed",
		Window:     spec.String(),
	})

	logger.Success("Windowed export completed: %d rows -> %d files", res.Rows, len(res.Files))
	return res, nil
}

// ExportCustomQuery runs a caller-supplied SELECT after it passes the
// safety gate. Validation failures are returned before any connection
// use; the statement timeout is doubled to tolerate heavier ad-hoc joins.
func (s *Service) ExportCustomQuery(ctx context.Context, sqlText, exportName string) (*Result, error) {
	const op = "custom query export"

	logger.Info("Starting custom query export %q", exportName)

	if err := validation.ValidateQuery(sqlText); err != nil {
		return nil, validationErr(op, err)
	}

	base := s.policy.CustomBase(exportName)
	res, err := s.run(ctx, op, sqlText, base, 2*s.statementTimeout())
	if err != nil {
		return nil, err
	}

	s.writeManifest(res, base, manifest.Manifest{
		ExportName: Sanitize(exportName),
		Kind:       "custom",
	})

	logger.Success("Custom query export completed: %d rows -> %d files in %v",
		res.Rows, len(res.Files), res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// ValidateOnly exposes the SQL safety gate standalone for pre-flight
// checks, without executing anything.
func (s *Service) ValidateOnly(sqlText string) error {
	if err := validation.ValidateQuery(sqlText); err != nil {
		return validationErr("query validation", err)
	}
	return nil
}

func (s *Service) statementTimeout() time.Duration {
	return time.Duration(s.cfg.TimeoutSeconds) * time.Second
}

// run is the shared execution core: acquire a streamed cursor, hand it to
// the split writer, and assemble the Result. The cursor is released on
// every exit path.
func (s *Service) run(ctx context.Context, op, sql, base string, timeout time.Duration) (*Result, error) {
	start := time.Now()

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return nil, executionErr(op, fmt.Errorf("unable to create output directory: %w", err))
	}

	writer, err := exporters.Get(s.opts.Format)
	if err != nil {
		return nil, validationErr(op, err)
	}

	cur, err := s.store.StreamQuery(ctx, sql, db.StreamOptions{
		BatchSize: s.cfg.BatchSize,
		Timeout:   timeout,
	})
	if err != nil {
		return nil, executionErr(op, err)
	}
	defer cur.Close()

	basePath := filepath.Join(s.cfg.OutputDir, base)

	splitRes, err := writer.WriteAll(cur, basePath, exporters.SplitOptions{
		Format:         s.opts.Format,
		Delimiter:      s.opts.Delimiter,
		Compression:    s.opts.Compression,
		TimeFormat:     s.opts.TimeFormat,
		TimeZone:       s.opts.TimeZone,
		MaxRowsPerFile: s.cfg.MaxRowsPerFile,
		ProgressBar:    s.opts.ProgressBar,
	})
	if err != nil {
		// No cleanup of already-finalized part files; the caller
		// decides what to do with a partial set.
		logger.Error("%s failed after %d rows (%v elapsed): %v", op, splitRes.Rows, time.Since(start), err)
		return nil, executionErr(op, err)
	}

	cols := cur.Columns()
	columns := make([]string, len(cols))
	for i, c := range cols {
		columns[i] = c.Name
	}

	return &Result{
		Files:   splitRes.Files,
		Rows:    splitRes.Rows,
		Columns: columns,
		Query:   sql,
		Elapsed: time.Since(start),
	}, nil
}

// writeManifest fills in the run details and writes the YAML sidecar.
// Manifest failures do not fail the export; the data files are already
// complete on disk.
func (s *Service) writeManifest(res *Result, base string, m manifest.Manifest) {
	m.Query = res.Query
	m.Format = s.opts.Format
	m.Columns = res.Columns
	m.TotalRows = res.Rows
	m.ElapsedMs = res.Elapsed.Milliseconds()
	m.GeneratedAt = time.Now().UTC()

	counts := manifest.NewFileCounts()
	for _, f := range res.Files {
		counts.Add(f.Path, f.Rows)
	}
	m.Files = counts

	path := manifest.Path(filepath.Join(s.cfg.OutputDir, base))
	if err := manifest.Write(path, m); err != nil {
		logger.Warn("Export succeeded but manifest could not be written: %v", err)
		return
	}
	res.ManifestPath = path
}
