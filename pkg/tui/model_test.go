package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/codeGROOVE-dev/vibetime/pkg/countdown"
	"github.com/codeGROOVE-dev/vibetime/pkg/fortune"
	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/session"
	"github.com/codeGROOVE-dev/vibetime/pkg/store"
	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
)

var t0 = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

type staticLookup []suggest.Suggestion

func (s staticLookup) Lookup(context.Context, string) []suggest.Suggestion { return s }

func newTestModel(t *testing.T, lookup suggest.Lookuper) (Model, *session.Session) {
	t.Helper()
	return newTestModelIn(t, "Europe/London", lookup)
}

func newTestModelIn(t *testing.T, zone string, lookup suggest.Lookuper) (Model, *session.Session) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.NewFileStore("", logger)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := session.Open(context.Background(), st,
		session.WithLogger(logger),
		session.WithClock(func() time.Time { return t0 }),
		session.WithBootstrap(zone, locations.DefaultCities),
	)
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{Session: sess, Logger: logger, Oracle: fortune.NewOracle(nil, logger, nil)}
	if lookup != nil {
		s := suggest.NewSearcher(lookup, time.Millisecond, 2)
		t.Cleanup(s.Close)
		cfg.Searcher = s
	}
	return New(context.Background(), cfg), sess
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model) //nolint:forcetypeassert // Update always returns Model
	}
	return m
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m = send(m, runes(string(r)))
	}
	return m
}

func TestScrubKeys(t *testing.T) {
	m, sess := newTestModel(t, nil)
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want int
	}{
		{"right", key(tea.KeyRight), 15},
		{"shift right", key(tea.KeyShiftRight), 75},
		{"left", key(tea.KeyLeft), 60},
		{"next day", runes("]"), 60 + 1440},
		{"previous day", runes("["), 60},
		{"shift left", key(tea.KeyShiftLeft), 0},
		{"back to present", runes("0"), 0},
	}
	for _, tt := range tests {
		m = send(m, tt.msg)
		if got := sess.Offset().Minutes(); got != tt.want {
			t.Errorf("%s: offset = %d, want %d", tt.name, got, tt.want)
		}
	}

	for range 10 {
		m = send(m, runes("]"))
	}
	if got := sess.Offset().Minutes(); got != 10080 {
		t.Errorf("offset after 10 days = %d, want clamp at 10080", got)
	}
	if !strings.Contains(m.View(), "+7d 0h 0m") {
		t.Error("header does not show the offset label")
	}
	send(m, runes("0"))
	if sess.Offset().Minutes() != 0 {
		t.Error("0 did not return to present")
	}
}

func mouse(action tea.MouseAction, button tea.MouseButton, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: button}
}

func TestScrubDrag(t *testing.T) {
	m, sess := newTestModel(t, nil)
	row := m.scrubRow()
	if lines := strings.Split(m.View(), "\n"); row >= len(lines) || !strings.Contains(lines[row], "-7d") {
		t.Fatalf("row %d is not the scrub bar", row)
	}

	tests := []struct {
		name   string
		msg    tea.MouseMsg
		want   int
		active bool
	}{
		{"press off the bar", mouse(tea.MouseActionPress, tea.MouseButtonLeft, 10, 0), 0, false},
		{"motion without drag", mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 40, 0), 0, false},
		{"press on the bar", mouse(tea.MouseActionPress, tea.MouseButtonLeft, 10, row), 0, true},
		{"drag right 3 cells", mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 13, row), 16, true},
		{"drag left past start", mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 7, row + 2), -16, true},
		{"release 6 cells right", mouse(tea.MouseActionRelease, tea.MouseButtonNone, 16, row), 32, false},
		{"motion after release", mouse(tea.MouseActionMotion, tea.MouseButtonNone, 90, row), 32, false},
		{"wheel up", mouse(tea.MouseActionPress, tea.MouseButtonWheelUp, 0, 0), 47, false},
		{"wheel down", mouse(tea.MouseActionPress, tea.MouseButtonWheelDown, 0, 0), 32, false},
	}
	for _, tt := range tests {
		m = send(m, tt.msg)
		if got := sess.Offset().Minutes(); got != tt.want {
			t.Errorf("%s: offset = %d, want %d", tt.name, got, tt.want)
		}
		if got := sess.Gesture().Active(); got != tt.active {
			t.Errorf("%s: drag active = %v, want %v", tt.name, got, tt.active)
		}
	}

	m = send(m, runes("2"), mouse(tea.MouseActionPress, tea.MouseButtonLeft, 10, row))
	if sess.Gesture().Active() {
		t.Error("press on another tab started a drag")
	}
}

func TestTickAdvancesBase(t *testing.T) {
	m, sess := newTestModel(t, nil)
	later := t0.Add(5 * time.Second)
	ticks := make(chan time.Time, 1)
	m.ticks = ticks
	send(m, tickMsg(later))
	if !sess.Selected().Equal(later) {
		t.Errorf("Selected() = %v, want %v", sess.Selected(), later)
	}
}

func TestTabs(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(m, runes("2"))
	if m.tab != TabPlanner {
		t.Errorf("tab = %v, want Planner", m.tab)
	}
	m = send(m, key(tea.KeyTab), key(tea.KeyTab))
	if m.tab != TabCountdown {
		t.Errorf("tab = %v, want Countdown", m.tab)
	}
	m = send(m, key(tea.KeyShiftTab))
	if m.tab != TabWidgets {
		t.Errorf("tab = %v, want Widgets", m.tab)
	}
	if !strings.Contains(m.View(), "London") {
		t.Error("widget should preview the base city")
	}
}

func TestSearchAddsFirstSuggestion(t *testing.T) {
	m, sess := newTestModel(t, staticLookup{{City: "Sydney", Country: "Australia", Timezone: "Australia/Sydney"}})

	m = send(m, runes("/"))
	if m.mode != modeSearch {
		t.Fatal("/ did not open search")
	}
	m = typeText(m, "syd")
	if m.search.Value() != "syd" {
		t.Errorf("search value = %q", m.search.Value())
	}

	stale := searchMsg{Seq: m.searcher.Latest() - 1, Suggestions: []suggest.Suggestion{{City: "Stale", Timezone: "UTC"}}}
	m = send(m, stale)
	if len(m.suggestions) != 0 {
		t.Fatal("stale result was applied")
	}
	m = send(m, searchMsg{Seq: m.searcher.Latest(), Suggestions: staticLookup{{City: "Sydney", Country: "Australia", Timezone: "Australia/Sydney"}}})
	if !strings.Contains(m.View(), "Sydney, Australia") {
		t.Error("suggestions not rendered")
	}

	m = send(m, key(tea.KeyEnter))
	if m.mode != modeBrowse {
		t.Error("enter should close search")
	}
	locs := sess.Locations()
	if last := locs[len(locs)-1]; last.Name != "Sydney" {
		t.Errorf("last location = %+v", last)
	}
}

func TestDuplicateShowsNotice(t *testing.T) {
	m, sess := newTestModel(t, nil)
	before := len(sess.Locations())
	m.mode = modeSearch
	m.suggestions = []suggest.Suggestion{{City: "Tokyo", Country: "Japan", Timezone: "Asia/Tokyo"}}
	m = send(m, key(tea.KeyEnter))

	if len(sess.Locations()) != before {
		t.Error("duplicate changed the list")
	}
	if !strings.Contains(m.View(), "Tokyo is already listed.") {
		t.Error("duplicate notice not shown")
	}
}

func TestRemoveSkipsBase(t *testing.T) {
	m, sess := newTestModel(t, nil)
	before := len(sess.Locations())

	m = send(m, runes("x"))
	if len(sess.Locations()) != before {
		t.Fatal("x removed the base city")
	}
	m = send(m, key(tea.KeyDown), runes("x"))
	if len(sess.Locations()) != before-1 {
		t.Errorf("x did not remove the selected city")
	}
	if base, _ := sess.Base(); base.Timezone != "Europe/London" {
		t.Errorf("base changed to %+v", base)
	}
	_ = m
}

func TestCountdownForm(t *testing.T) {
	m, sess := newTestModel(t, nil)
	m = send(m, runes("4"), runes("n"))
	if m.mode != modeCountdownForm || m.editor.State() != countdown.Creating {
		t.Fatalf("n did not open a create form: mode %v state %v", m.mode, m.editor.State())
	}
	m = typeText(m, "Launch")
	m = send(m, key(tea.KeyTab))
	m = typeText(m, "2030-01-01 10:00")
	m = send(m, key(tea.KeyEnter))

	items := sess.Countdowns().All()
	if len(items) != 1 || items[0].Title != "Launch" {
		t.Fatalf("countdowns = %+v", items)
	}
	if m.mode != modeBrowse {
		t.Error("form still open after submit")
	}

	// Editing writes through before submit; esc keeps the change.
	m = send(m, runes("e"))
	if m.editor.State() != countdown.Editing {
		t.Fatalf("e did not start editing, state %v", m.editor.State())
	}
	m = send(m, key(tea.KeyBackspace), key(tea.KeyBackspace))
	if got := sess.Countdowns().All()[0].Title; got != "Laun" {
		t.Errorf("live edit title = %q, want Laun", got)
	}
	m = send(m, key(tea.KeyEsc))
	if got := sess.Countdowns().All()[0].Title; got != "Laun" {
		t.Errorf("discard undid live edit: %q", got)
	}
	_ = m
}

func TestCountdownFormUsesBaseZone(t *testing.T) {
	tests := []struct {
		zone string
		want time.Time
	}{
		{"Asia/Tokyo", time.Date(2030, 1, 1, 1, 0, 0, 0, time.UTC)},
		{"America/New_York", time.Date(2030, 1, 1, 15, 0, 0, 0, time.UTC)},
		{"Europe/London", time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			m, sess := newTestModelIn(t, tt.zone, nil)
			m = send(m, runes("4"), runes("n"))
			m = typeText(m, "Launch")
			m = send(m, key(tea.KeyTab))
			m = typeText(m, "2030-01-01 10:00")
			m = send(m, key(tea.KeyEnter))

			items := sess.Countdowns().All()
			if len(items) != 1 {
				t.Fatalf("countdowns = %+v", items)
			}
			if !items[0].Target.Equal(tt.want) {
				t.Errorf("target = %v, want %v", items[0].Target.UTC(), tt.want)
			}
			if !strings.Contains(m.View(), "2030-01-01 10:00") {
				t.Error("list does not show the target in the base zone")
			}

			m = send(m, runes("e"))
			if got := m.formTarget.Value(); got != "2030-01-01 10:00" {
				t.Errorf("edit form target = %q, want 2030-01-01 10:00", got)
			}
		})
	}
}

func TestFortuneAndTheme(t *testing.T) {
	m, sess := newTestModel(t, nil)
	m = send(m, runes("6"))
	if !strings.Contains(m.View(), "Press f") {
		t.Error("fortune tab prompt missing")
	}
	m = send(m, fortuneMsg(fortune.Fallback()))
	if !strings.Contains(m.View(), "ticking in your favor") {
		t.Error("fortune not rendered")
	}

	m = send(m, runes("t"))
	if sess.Theme() != session.ThemeMidnight {
		t.Errorf("theme = %q, want midnight", sess.Theme())
	}
	_ = m
}

func TestCalculatorView(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = send(m, runes("5"))
	m.calcA.SetValue("2024-06-03")
	m.calcB.SetValue("2024-06-07")
	out := m.View()
	for _, want := range []string{"Business days  5", "ISO week 23", "leap year"} {
		if !strings.Contains(out, want) {
			t.Errorf("calculator view missing %q", want)
		}
	}
}
