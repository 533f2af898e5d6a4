// Package locations manages the ordered list of cities on the dashboard.
// Position 0 is the base entry that relative displays measure against.
package locations

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

// ErrDuplicateTimezone is returned when an entry's timezone is already listed.
var ErrDuplicateTimezone = errors.New("timezone already listed")

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("location not found")

// Coords are normalized map coordinates: 0-100 on each axis, origin top-left.
type Coords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Location is one listed city.
type Location struct {
	Coords      *Coords `json:"coords,omitempty"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Timezone    string  `json:"timezone"`
	CountryCode string  `json:"countryCode,omitempty"`
}

// DuplicateError carries the user-facing notice for a rejected add.
type DuplicateError struct {
	Name     string
	Timezone string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateTimezone, e.Timezone)
}

// Unwrap lets errors.Is match ErrDuplicateTimezone.
func (*DuplicateError) Unwrap() error {
	return ErrDuplicateTimezone
}

// Notice is the transient message shown to the user.
func (e *DuplicateError) Notice() string {
	return e.Name + " is already listed."
}

// Set is an ordered list of locations with unique timezones.
type Set struct {
	items []Location
	newID func() string
	mu    sync.RWMutex
}

// NewSet builds a Set from persisted entries. Later duplicates of a timezone and
// entries with unknown zones are dropped, and blank ids are filled in.
func NewSet(items []Location) *Set {
	s := &Set{newID: uuid.NewString}
	for _, it := range items {
		if !tzconvert.IsValidZone(it.Timezone) || s.indexOfZone(it.Timezone) >= 0 {
			continue
		}
		if it.ID == "" {
			it.ID = s.newID()
		}
		s.items = append(s.items, it)
	}
	return s
}

func (s *Set) indexOfZone(zone string) int {
	return slices.IndexFunc(s.items, func(l Location) bool { return l.Timezone == zone })
}

// Add appends loc with a fresh id. It returns a *DuplicateError when the
// timezone is already present, and leaves the set untouched.
func (s *Set) Add(loc Location) (Location, error) {
	loc.Timezone = strings.TrimSpace(loc.Timezone)
	if _, err := tzconvert.LoadZone(loc.Timezone); err != nil {
		return Location{}, err
	}
	if strings.TrimSpace(loc.Name) == "" {
		loc.Name = tzconvert.CityFromZone(loc.Timezone)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfZone(loc.Timezone) >= 0 {
		return Location{}, &DuplicateError{Name: loc.Name, Timezone: loc.Timezone}
	}
	loc.ID = s.newID()
	s.items = append(s.items, loc)
	return loc, nil
}

// Remove deletes the entry with id. Removing position 0 is allowed here;
// front ends decide whether to offer it.
func (s *Set) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(l Location) bool { return l.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// Replace swaps in a whole new list, as bulk editors do. The current base entry
// stays at position 0: if items omits it, it is prepended; if items moves it,
// it is moved back. Duplicate timezones in items are rejected.
func (s *Set) Replace(items []Location) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if _, err := tzconvert.LoadZone(it.Timezone); err != nil {
			return err
		}
		if seen[it.Timezone] {
			return &DuplicateError{Name: it.Name, Timezone: it.Timezone}
		}
		seen[it.Timezone] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]Location, 0, len(items)+1)
	if len(s.items) > 0 {
		base := s.items[0]
		next = append(next, base)
		for _, it := range items {
			if it.Timezone != base.Timezone {
				next = append(next, it)
			}
		}
	} else {
		next = append(next, items...)
	}
	for i := range next {
		if next[i].ID == "" {
			next[i].ID = s.newID()
		}
	}
	s.items = next
	return nil
}

// All returns a copy of the entries in order.
func (s *Set) All() []Location {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of entries.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Base returns the entry at position 0.
func (s *Set) Base() (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.items) == 0 {
		return Location{}, false
	}
	return s.items[0], true
}

// Get returns the entry with id.
func (s *Set) Get(id string) (Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.items {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}

// HasTimezone reports whether zone is already listed.
func (s *Set) HasTimezone(zone string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfZone(zone) >= 0
}
