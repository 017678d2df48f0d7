package query

import (
	"strings"
	"testing"

	"github.com/fbz-tec/pgxdump/core/window"
)

func mustDayRange(t *testing.T, start, end, month, year int) window.Spec {
	t.Helper()
	spec, err := window.DayRange(start, end, month, year)
	if err != nil {
		t.Fatalf("DayRange(%d, %d, %d, %d): %v", start, end, month, year, err)
	}
	return spec
}

func TestBuild(t *testing.T) {
	dayRange := mustDayRange(t, 1, 15, 12, 2023)

	week, err := window.Week(7, 2024)
	if err != nil {
		t.Fatalf("Week: %v", err)
	}
	month, err := window.Month(3, 2024)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}

	tests := []struct {
		name          string
		tableName     string
		spec          window.Spec
		dateColumn    string
		defaultSchema string
		wantSQL       string
		wantErr       bool
	}{
		{
			name:          "day range with month and year",
			tableName:     "orders",
			spec:          dayRange,
			dateColumn:    "order_date",
			defaultSchema: "public",
			wantSQL: "SELECT * FROM public.orders" +
				" WHERE EXTRACT(DAY FROM order_date) BETWEEN 1 AND 15" +
				" AND EXTRACT(MONTH FROM order_date) = 12" +
				" AND EXTRACT(YEAR FROM order_date) = 2023" +
				" ORDER BY order_date",
		},
		{
			name:          "week window",
			tableName:     "orders",
			spec:          week,
			dateColumn:    "order_date",
			defaultSchema: "public",
			wantSQL: "SELECT * FROM public.orders" +
				" WHERE EXTRACT(WEEK FROM order_date) = 7" +
				" AND EXTRACT(YEAR FROM order_date) = 2024" +
				" ORDER BY order_date",
		},
		{
			name:          "month window",
			tableName:     "events",
			spec:          month,
			dateColumn:    "created_at",
			defaultSchema: "public",
			wantSQL: "SELECT * FROM public.events" +
				" WHERE EXTRACT(MONTH FROM created_at) = 3" +
				" AND EXTRACT(YEAR FROM created_at) = 2024" +
				" ORDER BY created_at",
		},
		{
			name:          "already qualified table keeps its schema",
			tableName:     "sales.orders",
			spec:          month,
			dateColumn:    "created_at",
			defaultSchema: "public",
			wantSQL: "SELECT * FROM sales.orders" +
				" WHERE EXTRACT(MONTH FROM created_at) = 3" +
				" AND EXTRACT(YEAR FROM created_at) = 2024" +
				" ORDER BY created_at",
		},
		{
			name:          "no date column exports whole table ordered by position",
			tableName:     "users",
			spec:          dayRange,
			dateColumn:    "",
			defaultSchema: "public",
			wantSQL:       "SELECT * FROM public.users ORDER BY 1",
		},
		{
			name:          "zero window with date column has no filter",
			tableName:     "users",
			spec:          window.Spec{},
			dateColumn:    "created_at",
			defaultSchema: "public",
			wantSQL:       "SELECT * FROM public.users ORDER BY created_at",
		},
		{
			name:          "empty default schema leaves table unqualified",
			tableName:     "users",
			spec:          window.Spec{},
			dateColumn:    "",
			defaultSchema: "",
			wantSQL:       "SELECT * FROM users ORDER BY 1",
		},
		{
			name:          "empty table name",
			tableName:     "",
			spec:          dayRange,
			dateColumn:    "order_date",
			defaultSchema: "public",
			wantErr:       true,
		},
		{
			name:          "table name with injection",
			tableName:     "users; DROP TABLE users",
			spec:          dayRange,
			dateColumn:    "order_date",
			defaultSchema: "public",
			wantErr:       true,
		},
		{
			name:          "date column with injection",
			tableName:     "users",
			spec:          dayRange,
			dateColumn:    "d) = 1 OR (1",
			defaultSchema: "public",
			wantErr:       true,
		},
		{
			name:          "doubly qualified table",
			tableName:     "a.b.c",
			spec:          dayRange,
			dateColumn:    "order_date",
			defaultSchema: "public",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.tableName, tt.spec, tt.dateColumn, tt.defaultSchema)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.SQL != tt.wantSQL {
				t.Errorf("Build() SQL =\n  %s\nwant:\n  %s", got.SQL, tt.wantSQL)
			}
		})
	}
}

func TestBuildAlwaysOrders(t *testing.T) {
	spec := mustDayRange(t, 1, 31, 0, 0)

	for _, dateColumn := range []string{"", "created_at"} {
		q, err := Build("users", spec, dateColumn, "public")
		if err != nil {
			t.Fatalf("Build(dateColumn=%q): %v", dateColumn, err)
		}
		if !strings.Contains(q.SQL, " ORDER BY ") {
			t.Errorf("Build(dateColumn=%q) produced no ORDER BY: %s", dateColumn, q.SQL)
		}
	}
}
