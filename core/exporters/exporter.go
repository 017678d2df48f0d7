package exporters

import (
	"fmt"

	"github.com/fbz-tec/pgxdump/core/db"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SplitOptions holds per-export writer configuration.
type SplitOptions struct {
	Format         string
	Delimiter      rune
	Compression    string
	TimeFormat     string
	TimeZone       string
	MaxRowsPerFile int
	NoHeader       bool
	ProgressBar    bool
}

// FilePart is one finished output file and the number of data rows it holds.
type FilePart struct {
	Path string
	Rows int64
}

// SplitResult reports the files produced by one export, in creation order,
// plus the exact total row count.
type SplitResult struct {
	Files []FilePart
	Rows  int64
}

// Paths returns the file paths in creation order.
func (r SplitResult) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}

// SplitWriter consumes a forward-only cursor and writes one or more output
// files, starting a new file whenever MaxRowsPerFile data rows have been
// written. Implementations must never materialize the full result set and
// must produce at least one file (with a header) even for zero rows.
type SplitWriter interface {
	WriteAll(cur db.Cursor, basePath string, options SplitOptions) (SplitResult, error)
}

// PartPath names the fileNumber-th split file for a base path without
// extension: the first file keeps the bare base name, later files carry a
// zero-padded _partNNN suffix.
func PartPath(base, ext string, fileNumber int) string {
	if fileNumber == 1 {
		return fmt.Sprintf("%s.%s", base, ext)
	}
	return fmt.Sprintf("%s_part%03d.%s", base, fileNumber, ext)
}
