package validation

import (
	"fmt"
	"time"

	"github.com/fbz-tec/pgxdump/core/formatters"
)

// ValidateTimeZone checks if a timezone string is valid.
// Empty string is considered valid (uses local time).
func ValidateTimeZone(timezone string) error {
	if timezone == "" {
		return nil
	}

	_, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	return nil
}

// ValidateTimeFormat validates a user time format string by formatting a
// known time and parsing it back.
func ValidateTimeFormat(format string) error {

	if format == "" {
		return fmt.Errorf("time format cannot be empty")
	}

	testTime := time.Date(2006, 1, 2, 15, 4, 5, 123456789, time.UTC)
	layout := formatters.ConvertUserTimeFormat(format)

	formatted := testTime.Format(layout)
	_, err := time.Parse(layout, formatted)

	if err != nil {
		return fmt.Errorf("invalid time format %q: %w", format, err)
	}

	return nil
}
