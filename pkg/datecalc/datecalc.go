// Package datecalc does calendar arithmetic on civil dates: spans, business days,
// day offsets and per-date facts. Times of day and zones are ignored; every
// input is reduced to its year, month and day.
package datecalc

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the accepted date format.
const Layout = "2006-01-02"

// Parse reads a "2006-01-02" date.
func Parse(s string) (time.Time, error) {
	d, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return d, nil
}

// civil strips the time of day and zone, keeping the calendar date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Span is the distance between two dates.
// Years, Months and Days approximate a year as 365 days and a month as 30 days;
// TotalDays is exact.
type Span struct {
	TotalDays int `json:"total_days"`
	Years     int `json:"years"`
	Months    int `json:"months"`
	Days      int `json:"days"`
}

// String renders "1 years, 2 months, 3 days".
func (s Span) String() string {
	return fmt.Sprintf("%d years, %d months, %d days", s.Years, s.Months, s.Days)
}

// Difference returns the unsigned span between a and b.
func Difference(a, b time.Time) Span {
	days := int(civil(b).Sub(civil(a)).Hours() / 24)
	if days < 0 {
		days = -days
	}
	rem := days % 365
	return Span{
		TotalDays: days,
		Years:     days / 365,
		Months:    rem / 30,
		Days:      rem % 30,
	}
}

// BusinessDays counts Monday-Friday dates between a and b, both ends inclusive,
// in either order. Identical dates count as zero: there is no span to work in.
func BusinessDays(a, b time.Time) int {
	start, end := civil(a), civil(b)
	if start.Equal(end) {
		return 0
	}
	if end.Before(start) {
		start, end = end, start
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// AddDays moves d by n calendar days; n may be negative.
func AddDays(d time.Time, n int) time.Time {
	return civil(d).AddDate(0, 0, n)
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Info describes one date.
type Info struct {
	Date       string `json:"date"`
	Weekday    string `json:"weekday"`
	DayOfYear  int    `json:"day_of_year"`
	ISOWeek    int    `json:"iso_week"`
	ISOYear    int    `json:"iso_year"`
	DaysInYear int    `json:"days_in_year"`
	Leap       bool   `json:"leap"`
}

// Describe returns weekday, ISO week and leap-year facts for d.
func Describe(d time.Time) Info {
	c := civil(d)
	isoYear, week := c.ISOWeek()
	leap := IsLeap(c.Year())
	days := 365
	if leap {
		days = 366
	}
	return Info{
		Date:       c.Format(Layout),
		Weekday:    c.Weekday().String(),
		DayOfYear:  c.YearDay(),
		ISOWeek:    week,
		ISOYear:    isoYear,
		DaysInYear: days,
		Leap:       leap,
	}
}
