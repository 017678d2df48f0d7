package exporters

import (
	"fmt"
	"time"

	"github.com/fbz-tec/pgxdump/core/db"
	"github.com/fbz-tec/pgxdump/core/formatters"
	"github.com/fbz-tec/pgxdump/core/output"
	"github.com/fbz-tec/pgxdump/internal/logger"
	"github.com/xuri/excelize/v2"
)

type xlsxSplitWriter struct{}

// WriteAll streams cursor rows into one or more XLSX workbooks under the
// same splitting contract as the CSV writer: a new workbook every
// MaxRowsPerFile data rows, header row in each, at least one file even for
// an empty result. Each workbook holds a single sheet written through
// excelize's StreamWriter.
func (e *xlsxSplitWriter) WriteAll(cur db.Cursor, basePath string, options SplitOptions) (SplitResult, error) {
	start := time.Now()

	logger.Debug("Preparing XLSX export (compression=%s, maxRowsPerFile=%d)",
		options.Compression, options.MaxRowsPerFile)

	maxRows := int64(options.MaxRowsPerFile)
	if maxRows < 1 {
		return SplitResult{}, fmt.Errorf("max rows per file must be at least 1, got %d", maxRows)
	}
	// One sheet per workbook, so the row cap must fit under Excel's
	// 1,048,576-row sheet limit (minus the header row).
	const sheetLimit = 1_048_575
	if maxRows > sheetLimit {
		return SplitResult{}, fmt.Errorf("max rows per file cannot exceed %d for xlsx output", sheetLimit)
	}

	cols := cur.Columns()

	var result SplitResult
	var f *excelize.File
	var sw *excelize.StreamWriter
	var pendingPath string
	var fileRows int64
	var sheetRow int
	fileNumber := 0

	defer func() {
		if f != nil {
			f.Close()
		}
	}()

	openNext := func() error {
		fileNumber++
		pendingPath = PartPath(basePath, FormatXLSX, fileNumber)

		f = excelize.NewFile()
		var err error
		sw, err = f.NewStreamWriter("Sheet1")
		if err != nil {
			return fmt.Errorf("error creating stream writer: %w", err)
		}

		sheetRow = 1
		fileRows = 0

		if !options.NoHeader {
			styleID, err := f.NewStyle(&excelize.Style{
				Font: &excelize.Font{Bold: true, Color: "000000"},
			})
			if err != nil {
				logger.Warn("Failed to create header style: %v", err)
			}

			headerCells := make([]interface{}, len(cols))
			for i, c := range cols {
				headerCells[i] = excelize.Cell{Value: c.Name, StyleID: styleID}
			}

			cell, _ := excelize.CoordinatesToCellName(1, sheetRow)
			if err := sw.SetRow(cell, headerCells); err != nil {
				return fmt.Errorf("error writing headers: %w", err)
			}
			sheetRow++
		}
		return nil
	}

	closeCurrent := func() error {
		if f == nil {
			return nil
		}
		if err := sw.Flush(); err != nil {
			return fmt.Errorf("error flushing stream: %w", err)
		}

		wc, finalPath, err := output.CreateWriter(output.OutputConfig{
			Path:        pendingPath,
			Compression: options.Compression,
			Format:      FormatXLSX,
		})
		if err != nil {
			return err
		}
		if err := f.Write(wc); err != nil {
			wc.Close()
			return fmt.Errorf("error writing Excel file: %w", err)
		}
		if err := wc.Close(); err != nil {
			return fmt.Errorf("error closing output file: %w", err)
		}
		if err := f.Close(); err != nil {
			logger.Warn("Error closing Excel file: %v", err)
		}
		f = nil
		sw = nil

		result.Files = append(result.Files, FilePart{Path: finalPath, Rows: fileRows})
		logger.Debug("Completed XLSX file %s (%d rows)", finalPath, fileRows)
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

		excelValues := make([]interface{}, len(values))
		for i, v := range values {
			excelValues[i] = formatters.FormatXLSXValue(v, cols[i].OID, options.TimeFormat, options.TimeZone)
		}

		cell, _ := excelize.CoordinatesToCellName(1, sheetRow)
		if err := sw.SetRow(cell, excelValues); err != nil {
			return result, fmt.Errorf("error writing row %d: %w", result.Rows+1, err)
		}

		result.Rows++
		fileRows++
		sheetRow++

		if result.Rows%10000 == 0 {
			elapsed := time.Since(lastLog)
			logger.Debug("Processed %d rows (%.2f rows/sec)", result.Rows, float64(10000)/elapsed.Seconds())
			lastLog = time.Now()
		}
	}

	if err := cur.Err(); err != nil {
		return result, fmt.Errorf("error iterating rows: %w", err)
	}

	if fileNumber == 0 {
		if err := openNext(); err != nil {
			return result, err
		}
	}

	if err := closeCurrent(); err != nil {
		return result, err
	}

	elapsed := time.Since(start)
	logger.Debug("XLSX export completed: %d rows in %d files in %.2fs",
		result.Rows, len(result.Files), elapsed.Seconds())

	return result, nil
}

func init() {
	MustRegister(FormatXLSX, func() SplitWriter { return &xlsxSplitWriter{} })
}
