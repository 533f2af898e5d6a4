package datecalc

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", s, err)
	}
	return d
}

func TestDifference(t *testing.T) {
	tests := []struct {
		a, b string
		want Span
	}{
		{"2024-01-01", "2024-01-01", Span{}},
		{"2024-01-01", "2024-01-31", Span{TotalDays: 30, Months: 1}},
		{"2024-01-31", "2024-01-01", Span{TotalDays: 30, Months: 1}},
		{"2023-01-01", "2024-01-01", Span{TotalDays: 365, Years: 1}},
		{"2024-01-01", "2025-01-01", Span{TotalDays: 366, Years: 1, Days: 1}},
		{"2020-03-15", "2024-08-20", Span{TotalDays: 1619, Years: 4, Months: 5, Days: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			got := Difference(mustParse(t, tt.a), mustParse(t, tt.b))
			if got != tt.want {
				t.Errorf("Difference() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDifferenceIgnoresZoneAndClock(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	a := time.Date(2024, 3, 10, 23, 59, 0, 0, tokyo)
	b := time.Date(2024, 3, 12, 0, 1, 0, 0, time.UTC)
	if got := Difference(a, b).TotalDays; got != 2 {
		t.Errorf("TotalDays = %d, want 2", got)
	}
}

func TestSpanString(t *testing.T) {
	if got := (Span{Years: 1, Months: 2, Days: 3}).String(); got != "1 years, 2 months, 3 days" {
		t.Errorf("String() = %q", got)
	}
}

func TestBusinessDays(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"identical weekday", "2024-06-05", "2024-06-05", 0},
		{"identical saturday", "2024-06-08", "2024-06-08", 0},
		{"saturday to sunday", "2024-06-08", "2024-06-09", 0},
		{"monday to friday", "2024-06-03", "2024-06-07", 5},
		{"friday to monday", "2024-06-07", "2024-06-10", 2},
		{"reversed order", "2024-06-07", "2024-06-03", 5},
		{"two full weeks", "2024-06-03", "2024-06-16", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BusinessDays(mustParse(t, tt.a), mustParse(t, tt.b)); got != tt.want {
				t.Errorf("BusinessDays(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		d    string
		n    int
		want string
	}{
		{"2024-02-28", 1, "2024-02-29"},
		{"2023-02-28", 1, "2023-03-01"},
		{"2024-01-01", -1, "2023-12-31"},
		{"2024-12-31", 0, "2024-12-31"},
		{"2024-01-01", 366, "2025-01-01"},
	}
	for _, tt := range tests {
		if got := AddDays(mustParse(t, tt.d), tt.n).Format(Layout); got != tt.want {
			t.Errorf("AddDays(%s, %d) = %s, want %s", tt.d, tt.n, got, tt.want)
		}
	}
}

func TestIsLeap(t *testing.T) {
	tests := map[int]bool{2000: true, 1900: false, 2024: true, 2023: false, 2100: false, 2400: true}
	for year, want := range tests {
		if got := IsLeap(year); got != want {
			t.Errorf("IsLeap(%d) = %v, want %v", year, got, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		d          string
		weekday    string
		week, year int
		leap       bool
		daysInYear int
	}{
		{"2024-12-30", "Monday", 1, 2025, true, 366},
		{"2021-01-03", "Sunday", 53, 2020, false, 365},
		{"2024-02-29", "Thursday", 9, 2024, true, 366},
	}
	for _, tt := range tests {
		got := Describe(mustParse(t, tt.d))
		if got.Weekday != tt.weekday || got.ISOWeek != tt.week || got.ISOYear != tt.year ||
			got.Leap != tt.leap || got.DaysInYear != tt.daysInYear {
			t.Errorf("Describe(%s) = %+v", tt.d, got)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "tomorrow", "2024/01/01"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) succeeded", s)
		}
	}
}
