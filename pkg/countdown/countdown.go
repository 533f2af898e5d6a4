// Package countdown tracks named target instants and the form that edits them.
package countdown

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle replaces a blank title.
const DefaultTitle = "Precision Tracker"

var (
	// ErrNotFound is returned for unknown countdown ids.
	ErrNotFound = errors.New("countdown not found")
	// ErrInvalidTarget is returned when a target instant is missing.
	ErrInvalidTarget = errors.New("invalid countdown target")
)

// Countdown is one tracked target. Target is serialized as ISO-8601.
type Countdown struct {
	Target time.Time `json:"targetDate"`
	ID     string    `json:"id"`
	Title  string    `json:"title"`
}

// Breakdown is the remaining time split into units.
type Breakdown struct {
	Days    int  `json:"d"`
	Hours   int  `json:"h"`
	Minutes int  `json:"m"`
	Seconds int  `json:"s"`
	Expired bool `json:"expired"`
}

// Remaining computes the breakdown of target relative to now. Once target is at
// or before now the breakdown is the fixed expired state.
func Remaining(target, now time.Time) Breakdown {
	diff := target.Sub(now)
	if diff <= 0 {
		return Breakdown{Expired: true}
	}
	total := int64(diff / time.Second)
	return Breakdown{
		Days:    int(total / 86400),
		Hours:   int(total % 86400 / 3600),
		Minutes: int(total % 3600 / 60),
		Seconds: int(total % 60),
	}
}

// String renders "1d 01h 01m 01s" or "reached".
func (b Breakdown) String() string {
	if b.Expired {
		return "reached"
	}
	return fmt.Sprintf("%dd %02dh %02dm %02ds", b.Days, b.Hours, b.Minutes, b.Seconds)
}

// List is the ordered collection of countdowns. Insertion order is kept.
type List struct {
	items    []Countdown
	newID    func() string
	onChange func([]Countdown)
	mu       sync.RWMutex
}

// NewList builds a List from persisted entries. onChange, if set, is called
// with a snapshot after every mutation.
func NewList(items []Countdown, onChange func([]Countdown)) *List {
	l := &List{newID: uuid.NewString, onChange: onChange}
	for _, c := range items {
		if c.Target.IsZero() {
			continue
		}
		if c.ID == "" {
			c.ID = l.newID()
		}
		c.Title = normalizeTitle(c.Title)
		l.items = append(l.items, c)
	}
	return l
}

func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

func (l *List) changed() {
	if l.onChange != nil {
		l.onChange(slices.Clone(l.items))
	}
}

// Add appends a new countdown.
func (l *List) Add(title string, target time.Time) (Countdown, error) {
	if target.IsZero() {
		return Countdown{}, ErrInvalidTarget
	}
	c := Countdown{ID: l.newID(), Title: normalizeTitle(title), Target: target}
	l.mu.Lock()
	l.items = append(l.items, c)
	l.changed()
	l.mu.Unlock()
	return c, nil
}

// Update applies fn to the countdown with id in place.
func (l *List) Update(id string, fn func(*Countdown)) (Countdown, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := slices.IndexFunc(l.items, func(c Countdown) bool { return c.ID == id })
	if i < 0 {
		return Countdown{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(&l.items[i])
	l.items[i].Title = normalizeTitle(l.items[i].Title)
	l.changed()
	return l.items[i], nil
}

// Remove deletes the countdown with id.
func (l *List) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := slices.IndexFunc(l.items, func(c Countdown) bool { return c.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	l.items = slices.Delete(l.items, i, i+1)
	l.changed()
	return nil
}

// Get returns the countdown with id.
func (l *List) Get(id string) (Countdown, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.items {
		if c.ID == id {
			return c, true
		}
	}
	return Countdown{}, false
}

// All returns a snapshot in insertion order.
func (l *List) All() []Countdown {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}
