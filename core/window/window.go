package window

import (
	"fmt"
	"strings"
)

// Kind discriminates the supported calendar window shapes.
type Kind int

const (
	KindDayRange Kind = iota + 1
	KindWeek
	KindMonth
)

// Spec is a validated calendar time window used to filter windowed exports.
// Construct one with DayRange, Week or Month; a Spec is never mutated after
// construction. Optional month/year fields use 0 to mean "not set".
type Spec struct {
	kind     Kind
	startDay int
	endDay   int
	week     int
	month    int
	year     int
}

// DayRange builds a window covering days startDay..endDay of a month.
// month and year are optional (pass 0 to omit).
func DayRange(startDay, endDay, month, year int) (Spec, error) {
	if startDay < 1 || startDay > 31 {
		return Spec{}, fmt.Errorf("start day must be between 1 and 31, got %d", startDay)
	}
	if endDay < 1 || endDay > 31 {
		return Spec{}, fmt.Errorf("end day must be between 1 and 31, got %d", endDay)
	}
	if startDay > endDay {
		return Spec{}, fmt.Errorf("start day %d cannot be greater than end day %d", startDay, endDay)
	}
	if month != 0 {
		if err := checkMonth(month); err != nil {
			return Spec{}, err
		}
	}
	if year != 0 {
		if err := checkYear(year); err != nil {
			return Spec{}, err
		}
	}
	return Spec{kind: KindDayRange, startDay: startDay, endDay: endDay, month: month, year: year}, nil
}

// Week builds a window covering one ISO week of the year.
// year is optional (pass 0 to omit).
func Week(weekNumber, year int) (Spec, error) {
	if weekNumber < 1 || weekNumber > 52 {
		return Spec{}, fmt.Errorf("week number must be between 1 and 52, got %d", weekNumber)
	}
	if year != 0 {
		if err := checkYear(year); err != nil {
			return Spec{}, err
		}
	}
	return Spec{kind: KindWeek, week: weekNumber, year: year}, nil
}

// Month builds a window covering one calendar month.
// year is optional (pass 0 to omit).
func Month(month, year int) (Spec, error) {
	if err := checkMonth(month); err != nil {
		return Spec{}, err
	}
	if year != 0 {
		if err := checkYear(year); err != nil {
			return Spec{}, err
		}
	}
	return Spec{kind: KindMonth, month: month, year: year}, nil
}

func checkMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return nil
}

func checkYear(year int) error {
	if year < 1900 || year > 2100 {
		return fmt.Errorf("year must be between 1900 and 2100, got %d", year)
	}
	return nil
}

func (s Spec) Kind() Kind      { return s.kind }
func (s Spec) StartDay() int   { return s.startDay }
func (s Spec) EndDay() int     { return s.endDay }
func (s Spec) WeekNumber() int { return s.week }
func (s Spec) Month() int      { return s.month }
func (s Spec) Year() int       { return s.year }

// IsZero reports whether the Spec was never constructed.
func (s Spec) IsZero() bool { return s.kind == 0 }

// Label returns a filesystem-friendly description of the window, used in
// generated filenames.
func (s Spec) Label() string {
	var parts []string
	switch s.kind {
	case KindDayRange:
		parts = append(parts, fmt.Sprintf("days_%d-%d", s.startDay, s.endDay))
		if s.month != 0 {
			parts = append(parts, fmt.Sprintf("month_%d", s.month))
		}
	case KindWeek:
		parts = append(parts, fmt.Sprintf("week_%d", s.week))
	case KindMonth:
		parts = append(parts, fmt.Sprintf("month_%d", s.month))
	}
	if s.year != 0 {
		parts = append(parts, fmt.Sprintf("year_%d", s.year))
	}
	return strings.Join(parts, "_")
}

func (s Spec) String() string {
	switch s.kind {
	case KindDayRange:
		return fmt.Sprintf("day range %d-%d (month=%d, year=%d)", s.startDay, s.endDay, s.month, s.year)
	case KindWeek:
		return fmt.Sprintf("week %d (year=%d)", s.week, s.year)
	case KindMonth:
		return fmt.Sprintf("month %d (year=%d)", s.month, s.year)
	default:
		return "unspecified window"
	}
}
