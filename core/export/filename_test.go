package export

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/fbz-tec/pgxdump/core/window"
)

var safeName = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

func fixedClock() time.Time {
	return time.Date(2023, 12, 20, 14, 30, 52, 0, time.UTC)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already safe", "orders_2023", "orders_2023"},
		{"spaces and punctuation", "my report: Q4/final", "my_report__Q4_final"},
		{"path traversal", "../../etc/passwd", "______etc_passwd"},
		{"empty", "", ""},
		{"unicode", "commandes_été", "commandes__t_"},
		{"keeps dash", "a-b_c", "a-b_c"},
		{"truncated to fifty", strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if !safeName.MatchString(got) {
				t.Errorf("Sanitize(%q) = %q contains unsafe characters", tt.input, got)
			}
			if len(got) > 50 {
				t.Errorf("Sanitize(%q) length = %d, want <= 50", tt.input, len(got))
			}
		})
	}
}

func TestWindowedBase(t *testing.T) {
	policy := FilenamePolicy{Now: fixedClock}

	spec, err := window.DayRange(1, 15, 12, 2023)
	if err != nil {
		t.Fatalf("DayRange: %v", err)
	}

	got := policy.WindowedBase("orders", spec)
	want := "export_orders_days_1-15_month_12_year_2023_20231220_143052"
	if got != want {
		t.Errorf("WindowedBase() = %q, want %q", got, want)
	}
}

func TestWindowedBaseZeroWindow(t *testing.T) {
	policy := FilenamePolicy{Now: fixedClock}

	got := policy.WindowedBase("users", window.Spec{})
	want := "export_users_20231220_143052"
	if got != want {
		t.Errorf("WindowedBase() = %q, want %q", got, want)
	}
}

func TestCustomBase(t *testing.T) {
	policy := FilenamePolicy{Now: fixedClock}

	tests := []struct {
		name       string
		exportName string
		want       string
	}{
		{
			name:       "safe name",
			exportName: "big_orders",
			want:       "export_custom_big_orders_20231220_143052",
		},
		{
			name:       "unsafe name is sanitized",
			exportName: "q4 report: final",
			want:       "export_custom_q4_report__final_20231220_143052",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.CustomBase(tt.exportName); got != tt.want {
				t.Errorf("CustomBase(%q) = %q, want %q", tt.exportName, got, tt.want)
			}
		})
	}
}

func TestFilenamePolicyDefaultClock(t *testing.T) {
	var policy FilenamePolicy

	before := time.Now().Format("20060102")
	got := policy.CustomBase("x")

	if !strings.HasPrefix(got, "export_custom_x_"+before) {
		t.Errorf("CustomBase with default clock = %q, want prefix export_custom_x_%s", got, before)
	}
}
