// Package session is the explicit application state shared by every front end:
// the location list, theme, scrub offset, countdowns and widget preview.
// Each mutation is written through to a store.Store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/vibetime/pkg/countdown"
	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/store"
	"github.com/codeGROOVE-dev/vibetime/pkg/timeline"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

// Persisted keys.
const (
	KeyLocations  = "locations"
	KeyTheme      = "theme"
	KeyCountdowns = "countdowns"
)

// NoticeTTL is how long a transient notice stays visible.
const NoticeTTL = 3 * time.Second

const writeTimeout = 5 * time.Second

// Theme is one of the closed set of dashboard themes.
type Theme string

// Themes.
const (
	ThemeLight    Theme = "light"
	ThemeMidnight Theme = "midnight"
	ThemeBlackout Theme = "blackout"
	ThemeCyber    Theme = "cyber"
)

// Themes lists every valid theme in display order.
var Themes = []Theme{ThemeLight, ThemeMidnight, ThemeBlackout, ThemeCyber}

// ErrUnknownTheme is returned by SetTheme for names outside Themes.
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme maps a stored or user-supplied name onto a Theme.
func ParseTheme(name string) (Theme, bool) {
	for _, t := range Themes {
		if string(t) == name {
			return t, true
		}
	}
	return ThemeLight, false
}

// Notice is a transient user-facing message.
type Notice struct {
	Expires time.Time `json:"expires"`
	Text    string    `json:"text"`
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithWriteObserver is called after every persisted write.
func WithWriteObserver(fn func(key string, err error)) Option {
	return func(s *Session) { s.observeWrite = fn }
}

// WithBootstrap sets the zone and default cities used when no list is stored.
func WithBootstrap(localZone string, defaults []locations.Location) Option {
	return func(s *Session) {
		s.localZone = localZone
		s.defaults = defaults
	}
}

// WithDefaultTheme sets the theme used when none is stored.
func WithDefaultTheme(t Theme) Option {
	return func(s *Session) { s.defaultTheme = t }
}

// Session owns all mutable dashboard state.
type Session struct {
	store        store.Store
	logger       *slog.Logger
	now          func() time.Time
	observeWrite func(string, error)
	locs         *locations.Set
	offset       *timeline.Offset
	gesture      *timeline.Gesture
	countdowns   *countdown.List
	preview      *locations.Location
	localZone    string
	defaultTheme Theme
	theme        Theme
	notice       Notice
	defaults     []locations.Location
	mu           sync.RWMutex
	// writeMu serializes a location or theme mutation with its persisted snapshot.
	writeMu sync.Mutex
}

// Open loads state from st. Missing keys start from defaults; unreadable
// records are logged, discarded and rewritten with defaults.
func Open(ctx context.Context, st store.Store, opts ...Option) (*Session, error) {
	s := &Session{
		store:        st,
		logger:       slog.Default(),
		now:          time.Now,
		localZone:    locations.LocalZone(),
		defaults:     locations.DefaultCities,
		defaultTheme: ThemeLight,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.offset = timeline.NewOffset(s.now())
	s.gesture = timeline.NewGesture(s.offset)

	if err := s.loadLocations(ctx); err != nil {
		return nil, err
	}
	if err := s.loadTheme(ctx); err != nil {
		return nil, err
	}
	if err := s.loadCountdowns(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

type loadResult int

const (
	recordMissing loadResult = iota
	recordCorrupt
	recordLoaded
)

// load reads key into v. A value that cannot be decoded is logged and
// reported as recordCorrupt so the caller can rewrite it.
func (s *Session) load(ctx context.Context, key string, v any) (loadResult, error) {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return recordMissing, nil
	}
	if err != nil {
		return recordMissing, fmt.Errorf("loading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding corrupt state record", "key", key, "error", err)
		return recordCorrupt, nil
	}
	return recordLoaded, nil
}

func (s *Session) loadLocations(ctx context.Context) error {
	var items []locations.Location
	res, err := s.load(ctx, KeyLocations, &items)
	if err != nil {
		return err
	}
	if res == recordLoaded {
		s.locs = locations.NewSet(items)
		return nil
	}
	s.locs = locations.Bootstrap(s.localZone, s.defaults)
	s.logger.Debug("bootstrapped locations", "local_zone", s.localZone, "count", s.locs.Len())
	return s.persist(ctx, KeyLocations, s.locs.All())
}

func (s *Session) loadTheme(ctx context.Context) error {
	var name string
	res, err := s.load(ctx, KeyTheme, &name)
	if err != nil {
		return err
	}
	switch res {
	case recordMissing:
		s.theme = s.defaultTheme
		return nil
	case recordCorrupt:
		s.theme = ThemeLight
		return s.persist(ctx, KeyTheme, string(s.theme))
	}
	t, valid := ParseTheme(name)
	s.theme = t
	if !valid {
		s.logger.Warn("unknown stored theme", "theme", name)
		return s.persist(ctx, KeyTheme, string(t))
	}
	return nil
}

func (s *Session) loadCountdowns(ctx context.Context) error {
	var items []countdown.Countdown
	res, err := s.load(ctx, KeyCountdowns, &items)
	if err != nil {
		return err
	}
	if res == recordCorrupt {
		items = nil
		if err := s.persist(ctx, KeyCountdowns, []countdown.Countdown{}); err != nil {
			return err
		}
	}
	s.countdowns = countdown.NewList(items, s.saveCountdowns)
	return nil
}

func (s *Session) saveCountdowns(items []countdown.Countdown) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.persist(ctx, KeyCountdowns, items); err != nil {
		s.logger.Warn("failed to save countdowns", "error", err)
	}
}

// persist writes v as JSON under key.
func (s *Session) persist(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err == nil {
		err = s.store.Set(ctx, key, data)
	}
	if s.observeWrite != nil {
		s.observeWrite(key, err)
	}
	if err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// Locations returns the listed cities, base first.
func (s *Session) Locations() []locations.Location {
	return s.locs.All()
}

// Base returns the reference location at position 0.
func (s *Session) Base() (locations.Location, bool) {
	return s.locs.Base()
}

// AddLocation appends loc. A duplicate timezone leaves the list unchanged,
// raises a notice and returns the *locations.DuplicateError.
func (s *Session) AddLocation(ctx context.Context, loc locations.Location) (locations.Location, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	added, err := s.locs.Add(loc)
	if err != nil {
		var dup *locations.DuplicateError
		if errors.As(err, &dup) {
			s.setNotice(dup.Notice())
		}
		return locations.Location{}, err
	}
	s.logger.Debug("location added", "name", added.Name, "timezone", added.Timezone)
	return added, s.persist(ctx, KeyLocations, s.locs.All())
}

// RemoveLocation deletes the entry with id.
func (s *Session) RemoveLocation(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.locs.Remove(id); err != nil {
		return err
	}
	return s.persist(ctx, KeyLocations, s.locs.All())
}

// ReplaceLocations swaps in a whole list, keeping the base at position 0.
func (s *Session) ReplaceLocations(ctx context.Context, items []locations.Location) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.locs.Replace(items); err != nil {
		return err
	}
	return s.persist(ctx, KeyLocations, s.locs.All())
}

// Theme returns the active theme.
func (s *Session) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme switches and persists the theme.
func (s *Session) SetTheme(ctx context.Context, name string) (Theme, error) {
	t, ok := ParseTheme(name)
	if !ok {
		return s.Theme(), fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
	return t, s.persist(ctx, KeyTheme, string(t))
}

// Offset is the shared scrub offset.
func (s *Session) Offset() *timeline.Offset { return s.offset }

// Gesture is the drag/slider control bound to Offset.
func (s *Session) Gesture() *timeline.Gesture { return s.gesture }

// Countdowns is the countdown list; its mutations persist automatically.
func (s *Session) Countdowns() *countdown.List { return s.countdowns }

// Tick advances the live base instant.
func (s *Session) Tick(now time.Time) {
	s.offset.SetBase(now)
}

// Now is the session clock.
func (s *Session) Now() time.Time { return s.now() }

// Selected returns base + offset.
func (s *Session) Selected() time.Time { return s.offset.Selected() }

// Preview returns the widget preview location, if one is set.
func (s *Session) Preview() (locations.Location, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.preview == nil {
		return locations.Location{}, false
	}
	return *s.preview, true
}

// SetPreview sets the widget preview. It is not part of the list and is not persisted.
func (s *Session) SetPreview(loc locations.Location) error {
	if _, err := tzconvert.LoadZone(loc.Timezone); err != nil {
		return err
	}
	if loc.Name == "" {
		loc.Name = tzconvert.CityFromZone(loc.Timezone)
	}
	s.mu.Lock()
	s.preview = &loc
	s.mu.Unlock()
	return nil
}

// ClearPreview removes the widget preview.
func (s *Session) ClearPreview() {
	s.mu.Lock()
	s.preview = nil
	s.mu.Unlock()
}

func (s *Session) setNotice(text string) {
	s.mu.Lock()
	s.notice = Notice{Text: text, Expires: s.now().Add(NoticeTTL)}
	s.mu.Unlock()
}

// Notice returns the current notice while it has not expired.
func (s *Session) Notice() (Notice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.notice.Text == "" || !s.now().Before(s.notice.Expires) {
		return Notice{}, false
	}
	return s.notice, true
}
