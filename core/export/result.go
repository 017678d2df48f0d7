package export

import (
	"time"

	"github.com/fbz-tec/pgxdump/core/exporters"
)

// Result is the terminal value of one successful export invocation.
// It is never mutated after being returned.
type Result struct {
	Files        []exporters.FilePart // creation order, exact per-file counts
	Rows         int64                // exact total data-row count
	Columns      []string             // result column names, in order
	Query        string               // the SQL that was executed
	Elapsed      time.Duration        // wall-clock execution time
	ManifestPath string               // empty if the manifest could not be written
}

// Paths returns the generated file paths in creation order.
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}
