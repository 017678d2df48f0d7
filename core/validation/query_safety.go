package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Keywords that modify data or schema, or execute server-side code.
var prohibitedKeywords = []string{
	"INSERT",
	"UPDATE",
	"DELETE",
	"DROP",
	"CREATE",
	"ALTER",
	"EXEC",
	"EXECUTE",
	"CALL",
	"DECLARE",
	"TRUNCATE",
	"MERGE",
	"REPLACE",
}

// MaxQueryLength is the upper bound on accepted query text.
const MaxQueryLength = 10000

var (
	// First non-whitespace token must be SELECT; tolerates leading
	// newlines, tabs and repeated spaces.
	selectPattern = regexp.MustCompile(`(?i)^\s*SELECT\b`)

	// Whole-word match so identifiers like created_at or last_update
	// do not trip the filter.
	prohibitedPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(prohibitedKeywords, "|") + `)\b`)
)

// ValidateQuery checks whether a candidate SQL statement is safe to execute
// for a read-only export. Rules are applied in order; the first failure wins.
//
// This is a defense-in-depth textual filter, not a SQL parser: a SELECT that
// smuggles a dangerous call through comments or encoding tricks can slip
// past it. The database connection is opened read-only as the second line
// of defense.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("empty query")
	}

	trimmed := strings.TrimSpace(query)

	if !selectPattern.MatchString(trimmed) {
		return fmt.Errorf("only SELECT queries are allowed")
	}

	if m := prohibitedPattern.FindString(trimmed); m != "" {
		return fmt.Errorf("prohibited keyword found: %s", strings.ToUpper(m))
	}

	if len(trimmed) > MaxQueryLength {
		return fmt.Errorf("query too long: %d characters (limit %d)", len(trimmed), MaxQueryLength)
	}

	if n := countStatements(trimmed); n > 1 {
		return fmt.Errorf("multiple statements not allowed")
	}

	return nil
}

// countStatements counts non-empty semicolon-separated segments.
// Semicolons inside string literals and quoted identifiers are ignored so
// that queries like SELECT 'a;b' are not mistaken for two statements.
// A single trailing terminator is harmless: it yields an empty segment.
func countStatements(query string) int {
	count := 0
	var sb strings.Builder
	inString := false
	stringChar := byte(0)

	flush := func() {
		if strings.TrimSpace(sb.String()) != "" {
			count++
		}
		sb.Reset()
	}

	for i := 0; i < len(query); i++ {
		char := query[i]

		if char == '\'' || char == '"' {
			if !inString {
				inString = true
				stringChar = char
			} else if char == stringChar {
				// Doubled quote is an escape, stay inside the literal
				if i+1 < len(query) && query[i+1] == stringChar {
					sb.WriteByte(char)
					sb.WriteByte(char)
					i++
					continue
				}
				inString = false
				stringChar = 0
			}
			sb.WriteByte(char)
			continue
		}

		if !inString && char == ';' {
			flush()
			continue
		}

		sb.WriteByte(char)
	}

	flush()
	return count
}
