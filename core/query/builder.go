package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fbz-tec/pgxdump/core/window"
)

// ExportQuery is a fully formed SELECT statement ready for execution,
// together with the window it was derived from (if any) for filename
// traceability. Immutable once built.
type ExportQuery struct {
	SQL    string
	Window window.Spec
}

// Identifiers are interpolated into SQL text, so they are restricted to a
// safe shape instead of being quoted: letters, digits, underscore, with an
// optional single schema qualifier.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Build produces a windowed SELECT for one table.
//
// The projection is always *; callers needing a column subset must use the
// custom-query path. When dateColumn is empty the query carries no WHERE
// clause and orders by ordinal position 1, which gives deterministic but
// not temporal ordering.
func Build(tableName string, spec window.Spec, dateColumn, defaultSchema string) (ExportQuery, error) {
	tableName = strings.TrimSpace(tableName)
	dateColumn = strings.TrimSpace(dateColumn)

	if tableName == "" {
		return ExportQuery{}, fmt.Errorf("table name cannot be empty")
	}
	if !identPattern.MatchString(tableName) {
		return ExportQuery{}, fmt.Errorf("invalid table name: %q", tableName)
	}
	if dateColumn != "" && !identPattern.MatchString(dateColumn) {
		return ExportQuery{}, fmt.Errorf("invalid date column name: %q", dateColumn)
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(qualify(tableName, defaultSchema))

	if dateColumn != "" && !spec.IsZero() {
		preds := predicates(spec, dateColumn)
		if len(preds) > 0 {
			sb.WriteString(" WHERE ")
			sb.WriteString(strings.Join(preds, " AND "))
		}
	}

	sb.WriteString(" ORDER BY ")
	if dateColumn != "" {
		sb.WriteString(dateColumn)
	} else {
		sb.WriteString("1")
	}

	return ExportQuery{SQL: sb.String(), Window: spec}, nil
}

// qualify prefixes the configured default schema when the table name
// carries no qualifier of its own.
func qualify(tableName, defaultSchema string) string {
	if strings.Contains(tableName, ".") || defaultSchema == "" {
		return tableName
	}
	return defaultSchema + "." + tableName
}

func predicates(spec window.Spec, dateColumn string) []string {
	var preds []string

	switch spec.Kind() {
	case window.KindDayRange:
		preds = append(preds, fmt.Sprintf("EXTRACT(DAY FROM %s) BETWEEN %d AND %d",
			dateColumn, spec.StartDay(), spec.EndDay()))
		if spec.Month() != 0 {
			preds = append(preds, fmt.Sprintf("EXTRACT(MONTH FROM %s) = %d", dateColumn, spec.Month()))
		}
	case window.KindWeek:
		preds = append(preds, fmt.Sprintf("EXTRACT(WEEK FROM %s) = %d", dateColumn, spec.WeekNumber()))
	case window.KindMonth:
		preds = append(preds, fmt.Sprintf("EXTRACT(MONTH FROM %s) = %d", dateColumn, spec.Month()))
	}

	if spec.Year() != 0 {
		preds = append(preds, fmt.Sprintf("EXTRACT(YEAR FROM %s) = %d", dateColumn, spec.Year()))
	}

	return preds
}
