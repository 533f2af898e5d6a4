package countdown

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2024, 12, 24, 10, 0, 0, 0, time.UTC)

func TestRemaining(t *testing.T) {
	tests := []struct {
		name   string
		target time.Time
		want   Breakdown
	}{
		{
			name:   "one of each unit",
			target: now.Add(90061000 * time.Millisecond),
			want:   Breakdown{Days: 1, Hours: 1, Minutes: 1, Seconds: 1},
		},
		{
			name:   "sub-second truncates",
			target: now.Add(59*time.Second + 999*time.Millisecond),
			want:   Breakdown{Seconds: 59},
		},
		{
			name:   "exactly now is expired",
			target: now,
			want:   Breakdown{Expired: true},
		},
		{
			name:   "past is expired",
			target: now.Add(-time.Hour),
			want:   Breakdown{Expired: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(tt.target, now); got != tt.want {
				t.Errorf("Remaining() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBreakdownString(t *testing.T) {
	if got := (Breakdown{Days: 3, Hours: 4, Minutes: 5, Seconds: 6}).String(); got != "3d 04h 05m 06s" {
		t.Errorf("String() = %q", got)
	}
	if got := (Breakdown{Expired: true}).String(); got != "reached" {
		t.Errorf("String() = %q", got)
	}
}

func TestListAddDefaultsTitle(t *testing.T) {
	var snapshots int
	l := NewList(nil, func([]Countdown) { snapshots++ })

	c, err := l.Add("   ", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if c.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", c.Title, DefaultTitle)
	}
	if _, err := l.Add("x", time.Time{}); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Add(zero) error = %v", err)
	}
	if snapshots != 1 {
		t.Errorf("onChange called %d times, want 1", snapshots)
	}
}

func TestListRemoveKeepsOrder(t *testing.T) {
	l := NewList(nil, nil)
	a, _ := l.Add("a", now)
	b, _ := l.Add("b", now)
	c, _ := l.Add("c", now)

	if err := l.Remove(b.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	got := l.All()
	if len(got) != 2 || got[0].ID != a.ID || got[1].ID != c.ID {
		t.Errorf("All() = %+v", got)
	}
	if err := l.Remove(b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove() twice error = %v", err)
	}
}

func TestCountdownJSONUsesISOTarget(t *testing.T) {
	c := Countdown{ID: "x", Title: "Launch", Target: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"targetDate":"2025-01-01T00:00:00Z"`) {
		t.Errorf("json = %s", data)
	}
}

func TestEditorCreateFlow(t *testing.T) {
	l := NewList(nil, nil)
	e := NewEditor(l)

	e.StartCreate()
	if e.State() != Creating {
		t.Fatalf("State() = %s", e.State())
	}
	if err := e.SetTitle("Trip"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetTarget(now.Add(48 * time.Hour)); err != nil {
		t.Fatal(err)
	}
	if len(l.All()) != 0 {
		t.Fatal("creating should stage fields, not write them")
	}

	c, err := e.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if c.Title != "Trip" || len(l.All()) != 1 {
		t.Errorf("after Submit: %+v, list=%d", c, len(l.All()))
	}
	if e.State() != Idle {
		t.Errorf("State() = %s after Submit", e.State())
	}
}

func TestEditorCreateDiscard(t *testing.T) {
	l := NewList(nil, nil)
	e := NewEditor(l)
	e.StartCreate()
	_ = e.SetTitle("Never")
	_ = e.SetTarget(now)
	e.Discard()
	if len(l.All()) != 0 {
		t.Error("discarded create added a countdown")
	}
	if title, target := e.Fields(); title != "" || !target.IsZero() {
		t.Errorf("Fields() = %q, %s after Discard", title, target)
	}
}

func TestEditorEditWritesThroughAndDiscardKeeps(t *testing.T) {
	l := NewList(nil, nil)
	orig, _ := l.Add("Old", now.Add(time.Hour))
	e := NewEditor(l)

	if err := e.StartEdit(orig.ID); err != nil {
		t.Fatalf("StartEdit() error = %v", err)
	}
	if e.BoundID() != orig.ID {
		t.Errorf("BoundID() = %q", e.BoundID())
	}
	if err := e.SetTitle("New"); err != nil {
		t.Fatal(err)
	}
	newTarget := now.Add(2 * time.Hour)
	if err := e.SetTarget(newTarget); err != nil {
		t.Fatal(err)
	}

	got, _ := l.Get(orig.ID)
	if got.Title != "New" || !got.Target.Equal(newTarget) {
		t.Errorf("live edit not applied: %+v", got)
	}

	e.Discard()
	got, _ = l.Get(orig.ID)
	if got.Title != "New" {
		t.Errorf("Discard undid a live edit: %+v", got)
	}
	if e.State() != Idle || e.BoundID() != "" {
		t.Errorf("editor not reset: state=%s bound=%q", e.State(), e.BoundID())
	}
}

func TestEditorStartEditUnknown(t *testing.T) {
	e := NewEditor(NewList(nil, nil))
	if err := e.StartEdit("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("StartEdit() error = %v", err)
	}
	if e.State() != Idle {
		t.Errorf("State() = %s", e.State())
	}
}

func TestEditorEditBlankTitleFallsBack(t *testing.T) {
	l := NewList(nil, nil)
	c, _ := l.Add("Named", now)
	e := NewEditor(l)
	_ = e.StartEdit(c.ID)
	_ = e.SetTitle("")
	got, _ := l.Get(c.ID)
	if got.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", got.Title, DefaultTitle)
	}
}
