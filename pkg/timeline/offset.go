// Package timeline holds the shared "viewed instant": a live base instant plus a
// bounded minute offset that scrub controls move around.
package timeline

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// MaxOffsetMinutes bounds the offset window to seven days either side of now.
const MaxOffsetMinutes = 7 * 24 * 60

// Clamp coerces minutes into [-MaxOffsetMinutes, MaxOffsetMinutes].
func Clamp(minutes int) int {
	return max(-MaxOffsetMinutes, min(MaxOffsetMinutes, minutes))
}

// Offset is the base instant plus a signed minute offset.
// It is safe for concurrent use; the server and TUI both tick it from another goroutine.
type Offset struct {
	base    time.Time
	minutes int
	mu      sync.RWMutex
}

// NewOffset returns an Offset with the given base and no offset applied.
func NewOffset(base time.Time) *Offset {
	return &Offset{base: base}
}

// SetBase replaces the base instant, typically once per second from the tick source.
func (o *Offset) SetBase(base time.Time) {
	o.mu.Lock()
	o.base = base
	o.mu.Unlock()
}

// Base returns the current base instant.
func (o *Offset) Base() time.Time {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.base
}

// SetOffset stores minutes clamped to the window and returns the stored value.
func (o *Offset) SetOffset(minutes int) int {
	clamped := Clamp(minutes)
	o.mu.Lock()
	o.minutes = clamped
	o.mu.Unlock()
	return clamped
}

// Shift adds delta minutes to the current offset, clamped.
func (o *Offset) Shift(delta int) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.minutes = Clamp(o.minutes + delta)
	return o.minutes
}

// Minutes returns the current offset.
func (o *Offset) Minutes() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.minutes
}

// Reset returns to the present.
func (o *Offset) Reset() {
	o.SetOffset(0)
}

// Selected returns base + offset.
func (o *Offset) Selected() time.Time {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.base.Add(time.Duration(o.minutes) * time.Minute)
}

// SetSelected moves the offset so that Selected lands on target, rounded to the
// nearest minute and clamped. Used by the planner date strip and slot clicks.
func (o *Offset) SetSelected(target time.Time) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	diff := target.Sub(o.base)
	o.minutes = Clamp(int(math.Round(diff.Minutes())))
	return o.minutes
}

// Label returns the offset label shown next to the scrub control.
func (o *Offset) Label() string {
	return FormatOffset(o.Minutes())
}

// FormatOffset renders an offset in minutes as "+1d 2h 3m", "-5h 30m" or "0h 0m".
// The day component is the rounded number of days; hours and minutes come from
// the remainder within the day.
func FormatOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
	}
	abs := minutes
	if abs < 0 {
		abs = -abs
	}
	days := int(math.Round(float64(minutes) / 1440))
	hours := (abs % 1440) / 60
	mins := abs % 60

	prefix := ""
	if days != 0 {
		d := days
		if d < 0 {
			d = -d
		}
		prefix = fmt.Sprintf("%s%dd ", sign, d)
	} else if minutes != 0 {
		prefix = sign
	}
	return fmt.Sprintf("%s%dh %dm", prefix, hours, mins)
}
