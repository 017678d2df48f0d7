package exporters

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fbz-tec/pgxdump/core/db"
	"github.com/jackc/pgx/v5/pgtype"
)

// fakeCursor replays an in-memory row set through the db.Cursor interface.
type fakeCursor struct {
	cols     []db.Column
	rows     [][]any
	pos      int
	iterErr  error
	valueErr error
	closed   bool
}

func (c *fakeCursor) Columns() []db.Column { return c.cols }

func (c *fakeCursor) Next() bool {
	if c.pos >= len(c.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Values() ([]any, error) {
	if c.valueErr != nil {
		return nil, c.valueErr
	}
	return c.rows[c.pos-1], nil
}

func (c *fakeCursor) Err() error { return c.iterErr }
func (c *fakeCursor) Close()     { c.closed = true }

func newFakeCursor(numRows int) *fakeCursor {
	cur := &fakeCursor{
		cols: []db.Column{
			{Name: "id", OID: pgtype.Int4OID},
			{Name: "name", OID: pgtype.TextOID},
		},
	}
	for i := 1; i <= numRows; i++ {
		cur.rows = append(cur.rows, []any{i, fmt.Sprintf("row-%d", i)})
	}
	return cur
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return records
}

func TestCSVSplitWriter(t *testing.T) {
	tests := []struct {
		name      string
		numRows   int
		maxRows   int
		wantFiles int
		// data rows per file, in creation order
		wantPerFile []int64
	}{
		{"fewer rows than cap", 5, 10, 1, []int64{5}},
		{"exact multiple", 20, 10, 2, []int64{10, 10}},
		{"remainder spills into last file", 25, 10, 3, []int64{10, 10, 5}},
		{"cap of one", 3, 1, 3, []int64{1, 1, 1}},
		{"single row", 1, 100000, 1, []int64{1}},
		{"empty result still produces header file", 0, 10, 1, []int64{0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			base := filepath.Join(dir, "export_test")
			cur := newFakeCursor(tt.numRows)

			writer := &csvSplitWriter{}
			result, err := writer.WriteAll(cur, base, SplitOptions{
				Delimiter:      ',',
				MaxRowsPerFile: tt.maxRows,
			})
			if err != nil {
				t.Fatalf("WriteAll() error: %v", err)
			}

			if result.Rows != int64(tt.numRows) {
				t.Errorf("Rows = %d, want %d", result.Rows, tt.numRows)
			}
			if len(result.Files) != tt.wantFiles {
				t.Fatalf("got %d files, want %d: %v", len(result.Files), tt.wantFiles, result.Paths())
			}

			// First file keeps the bare name, later files get _partNNN.
			if got, want := result.Files[0].Path, base+".csv"; got != want {
				t.Errorf("first file = %s, want %s", got, want)
			}
			for i := 1; i < len(result.Files); i++ {
				want := fmt.Sprintf("%s_part%03d.csv", base, i+1)
				if result.Files[i].Path != want {
					t.Errorf("file %d = %s, want %s", i+1, result.Files[i].Path, want)
				}
			}

			seen := 0
			for i, f := range result.Files {
				if f.Rows != tt.wantPerFile[i] {
					t.Errorf("file %d row count = %d, want %d", i+1, f.Rows, tt.wantPerFile[i])
				}

				records := readCSVFile(t, f.Path)
				if len(records) == 0 {
					t.Fatalf("file %s has no header", f.Path)
				}
				if records[0][0] != "id" || records[0][1] != "name" {
					t.Errorf("file %s header = %v, want [id name]", f.Path, records[0])
				}
				if got := int64(len(records) - 1); got != f.Rows {
					t.Errorf("file %s holds %d data rows, reported %d", f.Path, got, f.Rows)
				}

				// Rows must appear in cursor order across the whole file set.
				for _, rec := range records[1:] {
					seen++
					if want := fmt.Sprintf("%d", seen); rec[0] != want {
						t.Fatalf("file %s row out of order: got id %s, want %s", f.Path, rec[0], want)
					}
				}
			}
			if seen != tt.numRows {
				t.Errorf("read back %d data rows, want %d", seen, tt.numRows)
			}
		})
	}
}

func TestCSVSplitWriterEscaping(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "escaping")

	values := []string{
		"plain",
		"with,comma",
		`with"quote`,
		"with\nnewline",
		"", // NULL renders identically to empty string
	}

	cur := &fakeCursor{
		cols: []db.Column{{Name: "v", OID: pgtype.TextOID}},
	}
	for _, v := range values {
		cur.rows = append(cur.rows, []any{v})
	}

	writer := &csvSplitWriter{}
	result, err := writer.WriteAll(cur, base, SplitOptions{
		Delimiter:      ',',
		MaxRowsPerFile: 100,
	})
	if err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("got %d files, want 1", len(result.Files))
	}

	records := readCSVFile(t, result.Files[0].Path)
	if len(records) != len(values)+1 {
		t.Fatalf("got %d records, want %d", len(records), len(values)+1)
	}
	for i, want := range values {
		if got := records[i+1][0]; got != want {
			t.Errorf("row %d round-trip = %q, want %q", i+1, got, want)
		}
	}
}

func TestCSVSplitWriterNullAndTypes(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "types")

	cur := &fakeCursor{
		cols: []db.Column{
			{Name: "id", OID: pgtype.Int8OID},
			{Name: "amount", OID: pgtype.Float8OID},
			{Name: "note", OID: pgtype.TextOID},
		},
		rows: [][]any{
			{int64(1), 12.5, "ok"},
			{int64(2), nil, nil},
		},
	}

	writer := &csvSplitWriter{}
	result, err := writer.WriteAll(cur, base, SplitOptions{
		Delimiter:      ',',
		MaxRowsPerFile: 100,
	})
	if err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}

	records := readCSVFile(t, result.Files[0].Path)
	if records[1][1] != "12.5" {
		t.Errorf("float rendered as %q, want 12.5", records[1][1])
	}
	if records[2][1] != "" || records[2][2] != "" {
		t.Errorf("NULLs rendered as %q/%q, want empty strings", records[2][1], records[2][2])
	}
}

func TestCSVSplitWriterCustomDelimiter(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "delim")

	cur := newFakeCursor(2)
	writer := &csvSplitWriter{}
	result, err := writer.WriteAll(cur, base, SplitOptions{
		Delimiter:      ';',
		MaxRowsPerFile: 100,
	})
	if err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}

	f, err := os.Open(result.Files[0].Path)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[1][1] != "row-1" {
		t.Errorf("row 1 name = %q, want row-1", records[1][1])
	}
}

func TestCSVSplitWriterNoHeader(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "noheader")

	cur := newFakeCursor(2)
	writer := &csvSplitWriter{}
	result, err := writer.WriteAll(cur, base, SplitOptions{
		Delimiter:      ',',
		MaxRowsPerFile: 100,
		NoHeader:       true,
	})
	if err != nil {
		t.Fatalf("WriteAll() error: %v", err)
	}

	records := readCSVFile(t, result.Files[0].Path)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 data rows without header", len(records))
	}
	if records[0][0] != "1" {
		t.Errorf("first record = %v, want data row", records[0])
	}
}

func TestCSVSplitWriterInvalidMaxRows(t *testing.T) {
	writer := &csvSplitWriter{}
	_, err := writer.WriteAll(newFakeCursor(1), filepath.Join(t.TempDir(), "x"), SplitOptions{
		Delimiter:      ',',
		MaxRowsPerFile: 0,
	})
	if err == nil {
		t.Fatal("WriteAll() with zero max rows must fail")
	}
}

func TestCSVSplitWriterRowReadFailure(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "failing")

	cur := newFakeCursor(3)
	cur.valueErr = fmt.Errorf("connection reset")

	writer := &csvSplitWriter{}
	_, err := writer.WriteAll(cur, base, SplitOptions{
		Delimiter:      ',',
		MaxRowsPerFile: 100,
	})
	if err == nil {
		t.Fatal("WriteAll() must surface row read failures")
	}
}

func TestPartPath(t *testing.T) {
	tests := []struct {
		base       string
		ext        string
		fileNumber int
		want       string
	}{
		{"/tmp/export_orders", "csv", 1, "/tmp/export_orders.csv"},
		{"/tmp/export_orders", "csv", 2, "/tmp/export_orders_part002.csv"},
		{"/tmp/export_orders", "csv", 12, "/tmp/export_orders_part012.csv"},
		{"/tmp/export_orders", "xlsx", 103, "/tmp/export_orders_part103.xlsx"},
	}

	for _, tt := range tests {
		if got := PartPath(tt.base, tt.ext, tt.fileNumber); got != tt.want {
			t.Errorf("PartPath(%q, %q, %d) = %q, want %q", tt.base, tt.ext, tt.fileNumber, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	for _, format := range []string{FormatCSV, FormatXLSX} {
		w, err := Get(format)
		if err != nil {
			t.Errorf("Get(%q) error: %v", format, err)
		}
		if w == nil {
			t.Errorf("Get(%q) returned nil writer", format)
		}
	}

	if _, err := Get("parquet"); err == nil {
		t.Error("Get() must reject unregistered formats")
	}

	if err := Register(FormatCSV, func() SplitWriter { return &csvSplitWriter{} }); err == nil {
		t.Error("Register() must reject duplicate formats")
	}
}
