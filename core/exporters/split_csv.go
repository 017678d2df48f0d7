package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/fbz-tec/pgxdump/core/db"
	"github.com/fbz-tec/pgxdump/core/formatters"
	"github.com/fbz-tec/pgxdump/core/output"
	"github.com/fbz-tec/pgxdump/internal/logger"
	"github.com/fbz-tec/pgxdump/internal/ui"
)

type csvSplitWriter struct{}

// WriteAll streams cursor rows into one or more CSV files, rolling over to
// a new part file every MaxRowsPerFile data rows. Every file gets a header
// row; an empty result still produces a single header-only file. Rows are
// written as they are pulled, so memory stays bounded by one fetch batch.
func (e *csvSplitWriter) WriteAll(cur db.Cursor, basePath string, options SplitOptions) (SplitResult, error) {
	start := time.Now()

	logger.Debug("Preparing CSV export (delimiter=%q, compression=%s, maxRowsPerFile=%d)",
		string(options.Delimiter), options.Compression, options.MaxRowsPerFile)

	maxRows := int64(options.MaxRowsPerFile)
	if maxRows < 1 {
		return SplitResult{}, fmt.Errorf("max rows per file must be at least 1, got %d", maxRows)
	}

	delimiter := options.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}

	cols := cur.Columns()
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}

	var bar = (*progressState)(nil)
	if options.ProgressBar {
		bar = newProgressState()
	}

	var result SplitResult
	var writer *csv.Writer
	var closer io.WriteCloser
	var fileRows int64
	fileNumber := 0

	closeCurrent := func() error {
		if closer == nil {
			return nil
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			closer.Close()
			closer = nil
			return fmt.Errorf("error flushing CSV: %w", err)
		}
		if err := closer.Close(); err != nil {
			closer = nil
			return fmt.Errorf("error closing output file: %w", err)
		}
		closer = nil
		result.Files[len(result.Files)-1].Rows = fileRows
		logger.Debug("Completed CSV file %s (%d rows)", result.Files[len(result.Files)-1].Path, fileRows)
		return nil
	}

	// Guaranteed release of the live file handle on every exit path.
	defer func() {
		if closer != nil {
			closer.Close()
		}
	}()

	openNext := func() error {
		fileNumber++
		path := PartPath(basePath, FormatCSV, fileNumber)
		wc, finalPath, err := output.CreateWriter(output.OutputConfig{
			Path:        path,
			Compression: options.Compression,
			Format:      FormatCSV,
		})
		if err != nil {
			return err
		}
		closer = wc
		writer = csv.NewWriter(wc)
		writer.Comma = delimiter
		fileRows = 0
		result.Files = append(result.Files, FilePart{Path: finalPath})

		if !options.NoHeader {
			if err := writer.Write(header); err != nil {
				return fmt.Errorf("error writing headers: %w", err)
			}
		}
		return nil
	}

	lastLog := time.Now()

	for cur.Next() {
		if result.Rows%maxRows == 0 {
			if err := closeCurrent(); err != nil {
				return result, err
			}
			if err := openNext(); err != nil {
				return result, err
			}
		}

		values, err := cur.Values()
		if err != nil {
			return result, fmt.Errorf("error reading row: %w", err)
		}

		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatters.FormatCSVValue(v, cols[i].OID, options.TimeFormat, options.TimeZone)
		}

		if err := writer.Write(record); err != nil {
			return result, fmt.Errorf("error writing row %d: %w", result.Rows+1, err)
		}

		result.Rows++
		fileRows++
		bar.advance(result.Rows)

		if logger.IsVerbose() && (result.Rows%10000 == 0 || time.Since(lastLog) > 2*time.Second) {
			elapsed := time.Since(start)
			logger.Debug("%d rows written across %d files (%.0f rows/s)",
				result.Rows, fileNumber, float64(result.Rows)/elapsed.Seconds())
			writer.Flush()
			lastLog = time.Now()
		}
	}

	if err := cur.Err(); err != nil {
		return result, fmt.Errorf("error iterating rows: %w", err)
	}

	// An empty result still yields one header-only file.
	if fileNumber == 0 {
		if err := openNext(); err != nil {
			return result, err
		}
	}

	if err := closeCurrent(); err != nil {
		return result, err
	}

	bar.finish(result.Rows, start)

	elapsed := time.Since(start)
	logger.Debug("CSV export completed: %d rows in %d files in %v",
		result.Rows, len(result.Files), elapsed.Round(time.Millisecond))

	return result, nil
}

// progressState wraps the indeterminate bar so call sites stay clean when
// progress display is off (nil receiver is a no-op).
type progressState struct {
	bar interface {
		Describe(string)
		Add(int) error
		Clear() error
	}
}

func newProgressState() *progressState {
	return &progressState{bar: ui.NewProgressBar()}
}

func (p *progressState) advance(rows int64) {
	if p == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("Exporting rows... %d rows", rows))
	p.bar.Add(1)
}

func (p *progressState) finish(rows int64, start time.Time) {
	if p == nil {
		return
	}
	p.bar.Describe(fmt.Sprintf("Exporting rows... %d rows [%ds]", rows, int(time.Since(start).Seconds())))
	p.bar.Add(0)
	p.bar.Clear()
	fmt.Println()
}

func init() {
	MustRegister(FormatCSV, func() SplitWriter { return &csvSplitWriter{} })
}
