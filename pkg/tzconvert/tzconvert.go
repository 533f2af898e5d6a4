// Package tzconvert projects a single instant onto the wall clock of an IANA timezone.
// ALL instants in the codebase are plain time.Time values; conversion to local
// fields happens here and only for display.
package tzconvert

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	// Embedded tz database so projections match on hosts without /usr/share/zoneinfo.
	_ "time/tzdata"
)

// ErrUnknownZone is returned for identifiers the timezone database does not know.
var ErrUnknownZone = errors.New("unknown timezone")

var zoneCache sync.Map // map[string]*time.Location

// LoadZone resolves an IANA identifier such as "Asia/Tokyo".
// An empty identifier is rejected rather than silently mapped to UTC.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrUnknownZone)
	}
	if loc, ok := zoneCache.Load(name); ok {
		return loc.(*time.Location), nil //nolint:forcetypeassert // only *time.Location is stored
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownZone, name, err)
	}
	zoneCache.Store(name, loc)
	return loc, nil
}

// IsValidZone reports whether name is a loadable IANA identifier.
func IsValidZone(name string) bool {
	_, err := LoadZone(name)
	return err == nil
}

// WallClock holds the human-readable fields of an instant in one zone.
// OffsetSeconds is the UTC offset in effect at that instant, which keeps the
// projection reversible inside DST overlaps.
type WallClock struct {
	Zone          string       `json:"zone"`
	Abbrev        string       `json:"abbrev"`
	Year          int          `json:"year"`
	Month         time.Month   `json:"month"`
	Day           int          `json:"day"`
	Hour          int          `json:"hour"`
	Minute        int          `json:"minute"`
	Second        int          `json:"second"`
	Weekday       time.Weekday `json:"weekday"`
	OffsetSeconds int          `json:"offset_seconds"`
}

// Project converts instant into the wall-clock fields of zone.
func Project(instant time.Time, zone string) (WallClock, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return WallClock{}, err
	}
	return ProjectIn(instant, loc), nil
}

// ProjectIn is Project for an already-loaded location.
func ProjectIn(instant time.Time, loc *time.Location) WallClock {
	local := instant.In(loc)
	abbrev, offset := local.Zone()
	return WallClock{
		Zone:          loc.String(),
		Abbrev:        abbrev,
		Year:          local.Year(),
		Month:         local.Month(),
		Day:           local.Day(),
		Hour:          local.Hour(),
		Minute:        local.Minute(),
		Second:        local.Second(),
		Weekday:       local.Weekday(),
		OffsetSeconds: offset,
	}
}

// Instant rebuilds the absolute instant the fields were projected from.
func (w WallClock) Instant() time.Time {
	fixed := time.FixedZone(w.Abbrev, w.OffsetSeconds)
	return time.Date(w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second, 0, fixed).UTC()
}

// Resolve turns user-entered wall-clock fields into an instant in zone.
// Times inside a spring-forward gap or fall-back overlap are resolved by
// time.Date, the runtime's standard rule.
func Resolve(year int, month time.Month, day, hour, minute int, zone string) (time.Time, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, day, hour, minute, 0, 0, loc), nil
}

// ParseLocal parses a "2006-01-02" date and an optional "15:04" time in zone.
// An empty clock means midnight.
func ParseLocal(date, clock, zone string) (time.Time, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return time.Time{}, err
	}
	if strings.TrimSpace(clock) == "" {
		clock = "00:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing local time %q %q: %w", date, clock, err)
	}
	return t, nil
}

func (w WallClock) local() time.Time {
	return time.Date(w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second, 0, time.UTC)
}

// Time12 formats as "3:04 PM".
func (w WallClock) Time12() string {
	return w.local().Format("3:04 PM")
}

// Time12Seconds formats as "03:04:05 PM".
func (w WallClock) Time12Seconds() string {
	return w.local().Format("03:04:05 PM")
}

// Time24 formats as "15:04".
func (w WallClock) Time24() string {
	return w.local().Format("15:04")
}

// Time24Seconds formats as "15:04:05".
func (w WallClock) Time24Seconds() string {
	return w.local().Format("15:04:05")
}

// WeekdayShort returns "Mon".
func (w WallClock) WeekdayShort() string {
	return w.Weekday.String()[:3]
}

// DateShort returns "Mon, Jan 2".
func (w WallClock) DateShort() string {
	return w.local().Format("Mon, Jan 2")
}

// DateLong returns "Monday, January 2".
func (w WallClock) DateLong() string {
	return w.local().Format("Monday, January 2")
}

// ISODate returns "2006-01-02" in the zone's calendar.
func (w WallClock) ISODate() string {
	return w.local().Format("2006-01-02")
}

// IsNight reports whether the local hour is at or after 18:00 or before 06:00.
func (w WallClock) IsNight() bool {
	return w.Hour >= 18 || w.Hour < 6
}

// DecimalHour returns the local time as fractional hours, e.g. 13.5 for 13:30.
func (w WallClock) DecimalHour() float64 {
	return float64(w.Hour) + float64(w.Minute)/60.0 + float64(w.Second)/3600.0
}

// OffsetLabel formats the UTC offset as "UTC+05:30".
func (w WallClock) OffsetLabel() string {
	return FormatOffset(w.OffsetSeconds)
}

// OffsetHoursLabel formats the UTC offset as decimal hours: "+5.5", "-4", "+0".
func (w WallClock) OffsetHoursLabel() string {
	hours := float64(w.OffsetSeconds) / 3600.0
	sign := "+"
	if hours < 0 {
		sign = "-"
	}
	return sign + strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", math.Abs(hours)), "0"), ".")
}

// FormatOffset formats seconds east of UTC as "UTC+HH:MM".
func FormatOffset(offsetSeconds int) string {
	sign := "+"
	if offsetSeconds < 0 {
		sign = "-"
		offsetSeconds = -offsetSeconds
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offsetSeconds/3600, (offsetSeconds%3600)/60)
}

// Hands holds analog clock hand angles in degrees clockwise from 12.
type Hands struct {
	Hour   float64 `json:"hour"`
	Minute float64 `json:"minute"`
	Second float64 `json:"second"`
}

// Hands computes analog clock hand angles for the wall-clock time.
func (w WallClock) Hands() Hands {
	s := float64(w.Second)
	m := float64(w.Minute)
	return Hands{
		Second: s / 60 * 360,
		Minute: (m + s/60) / 60 * 360,
		Hour:   (float64(w.Hour%12) + m/60) / 12 * 360,
	}
}

// CityFromZone derives a display name from an IANA identifier:
// "America/Argentina/Buenos_Aires" -> "Buenos Aires".
func CityFromZone(zone string) string {
	parts := strings.Split(zone, "/")
	return strings.ReplaceAll(parts[len(parts)-1], "_", " ")
}

// OffsetSecondsAt returns the UTC offset of zone at instant.
func OffsetSecondsAt(instant time.Time, zone string) (int, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return 0, err
	}
	_, offset := instant.In(loc).Zone()
	return offset, nil
}
