package formatters

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fbz-tec/pgxdump/internal/logger"
	"github.com/jackc/pgx/v5/pgtype"
)

var timeFormatReplacer = strings.NewReplacer(
	"yyyy", "2006",
	"yy", "06",
	"MM", "01",
	"dd", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
	"SSS", "000", // Milliseconds
	"S", "0", // Deciseconds
)

// formatValueByOID renders PostgreSQL driver values into export-friendly
// values. Types without a dedicated case pass through unchanged so the
// exported text stays faithful to the driver's native conversion.
func formatValueByOID(val interface{}, valueType uint32, userTimefmt string, timeZone string) interface{} {
	if val == nil {
		return nil
	}

	switch valueType {
	case pgtype.DateOID:
		if t, ok := val.(time.Time); ok {
			dateFmt := extractUserDateFormat(userTimefmt)
			return t.Format(ConvertUserTimeFormat(dateFmt))
		}

	case pgtype.TimestampOID:
		if t, ok := val.(time.Time); ok {
			return t.Format(ConvertUserTimeFormat(userTimefmt))
		}

	case pgtype.TimestamptzOID:
		if t, ok := val.(time.Time); ok {
			layout, loc := UserTimeZoneFormat(userTimefmt, timeZone)
			return t.In(loc).Format(layout)
		}

	case pgtype.UUIDOID:
		if uuid, ok := val.([16]byte); ok {
			return fmt.Sprintf("%x-%x-%x-%x-%x", uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:16])
		}

	case pgtype.ByteaOID:
		if bytes, ok := val.([]byte); ok {
			return string(bytes)
		}

	case pgtype.NumericOID:
		if num, ok := val.(pgtype.Numeric); ok {
			if !num.Valid {
				return nil
			}
			f, err := num.Float64Value()
			if err != nil || !f.Valid {
				return nil
			}
			return f.Float64
		}

	case pgtype.IntervalOID:
		if interval, ok := val.(pgtype.Interval); ok {
			if !interval.Valid {
				return nil
			}
			strVal, err := interval.Value()
			if err != nil {
				return nil
			}
			return strVal
		}

	case pgtype.JSONBOID, pgtype.JSONOID:
		return val
	}

	return val
}

// FormatCSVValue formats a value for CSV export. NULL renders as the empty
// string; escaping is left to encoding/csv.
func FormatCSVValue(val interface{}, valueType uint32, userTimefmt string, timeZone string) string {
	result := formatValueByOID(val, valueType, userTimefmt, timeZone)

	if result == nil {
		return ""
	}

	switch v := result.(type) {
	case string:
		return v

	case float64:
		return fmt.Sprintf("%.15g", v)

	case float32:
		return fmt.Sprintf("%.15g", v)

	case []interface{}:
		if len(v) == 0 {
			return "{}"
		}
		elems := make([]string, len(v))
		for i, elem := range v {
			elems[i] = fmt.Sprintf("%v", elem)
		}
		return fmt.Sprintf("{%s}", strings.Join(elems, ","))

	default:
		if valueType == pgtype.JSONBOID || valueType == pgtype.JSONOID {
			jsonStr, err := json.Marshal(v)
			if err != nil {
				return "{}"
			}
			return string(jsonStr)
		}
		return fmt.Sprintf("%v", v)
	}
}

// FormatXLSXValue formats a PostgreSQL value for Excel. Date and timestamp
// values are passed through so Excel can apply cell formatting.
func FormatXLSXValue(value interface{}, oid uint32, timeFormat, timeZone string) interface{} {

	if pgtype.DateOID == oid || pgtype.TimestampOID == oid || pgtype.TimestamptzOID == oid {
		return value
	}

	if pgtype.JSONBOID == oid || pgtype.JSONOID == oid {
		jsonStr, err := json.Marshal(value)
		if err != nil {
			return "{}"
		}
		return string(jsonStr)
	}

	if val, ok := value.([]interface{}); ok {
		b, err := json.Marshal(val)
		if err != nil {
			return "[]"
		}
		return string(b)
	}

	return formatValueByOID(value, oid, timeFormat, timeZone)
}

// UserTimeZoneFormat resolves a user time format and timezone name into a
// Go layout and location. Falls back to local time for unknown zones.
func UserTimeZoneFormat(userTimefmt string, timeZone string) (string, *time.Location) {

	layout := ConvertUserTimeFormat(userTimefmt)

	if timeZone == "" {
		return layout, time.Local
	}

	loc, err := time.LoadLocation(timeZone)

	if err != nil {
		logger.Warn("Invalid timezone %q, using local time: %v", timeZone, err)
		return layout, time.Local
	}

	return layout, loc
}

// ConvertUserTimeFormat translates yyyy-MM-dd style tokens to a Go layout.
func ConvertUserTimeFormat(userTimefmt string) string {
	return timeFormatReplacer.Replace(userTimefmt)
}

// extractUserDateFormat extracts only the date portion from a datetime
// format string, so DATE columns are exported without time components.
func extractUserDateFormat(userFmt string) string {
	dateTokens := []string{"yyyy", "yy", "MM", "dd"}
	last := -1
	for _, tok := range dateTokens {
		idx := strings.LastIndex(userFmt, tok)
		if idx != -1 {
			end := idx + len(tok)
			if end > last {
				last = end
			}
		}
	}

	if last == -1 {
		return userFmt
	}
	return strings.TrimSpace(userFmt[:last])
}
