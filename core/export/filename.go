package export

import (
	"fmt"
	"regexp"
	"time"

	"github.com/fbz-tec/pgxdump/core/window"
)

const (
	timestampLayout = "20060102_150405"
	maxNameLength   = 50
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// FilenamePolicy produces collision-resistant base names for export file
// sets. Names embed the export kind, a sanitized table/export name, the
// window parameters and a second-resolution timestamp, so concurrent
// exports land in distinct files.
type FilenamePolicy struct {
	// Now is the clock used for the timestamp component; nil means
	// time.Now. Injectable for tests.
	Now func() time.Time
}

func (p FilenamePolicy) timestamp() string {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().Format(timestampLayout)
}

// WindowedBase names a windowed table export, without extension.
func (p FilenamePolicy) WindowedBase(tableName string, spec window.Spec) string {
	name := fmt.Sprintf("export_%s", Sanitize(tableName))
	if label := spec.Label(); label != "" {
		name += "_" + label
	}
	return name + "_" + p.timestamp()
}

// CustomBase names a custom-query export, without extension.
func (p FilenamePolicy) CustomBase(exportName string) string {
	return fmt.Sprintf("export_custom_%s_%s", Sanitize(exportName), p.timestamp())
}

// Sanitize makes a user-supplied export name filesystem-safe: every
// character outside [A-Za-z0-9_-] becomes an underscore and the result is
// truncated to 50 characters.
func Sanitize(name string) string {
	sanitized := unsafeChars.ReplaceAllString(name, "_")
	if len(sanitized) > maxNameLength {
		sanitized = sanitized[:maxNameLength]
	}
	return sanitized
}
