package countdown

import (
	"time"
)

// State is the editor's mode.
type State int

const (
	Idle State = iota
	Creating
	Editing
)

func (s State) String() string {
	switch s {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

// Editor is the create/edit form. While editing, every field change writes
// straight through to the bound countdown; Discard does not undo those writes.
// While creating, fields are staged and only Submit adds the countdown.
type Editor struct {
	list    *List
	target  time.Time
	boundID string
	title   string
	state   State
}

// NewEditor returns an idle editor over list.
func NewEditor(list *List) *Editor {
	return &Editor{list: list}
}

// State returns the current mode.
func (e *Editor) State() State { return e.state }

// BoundID returns the id being edited, or "" outside Editing.
func (e *Editor) BoundID() string { return e.boundID }

// Fields returns the staged or bound title and target.
func (e *Editor) Fields() (string, time.Time) { return e.title, e.target }

// StartCreate opens an empty form.
func (e *Editor) StartCreate() {
	e.state = Creating
	e.boundID = ""
	e.title = ""
	e.target = time.Time{}
}

// StartEdit binds the form to an existing countdown.
func (e *Editor) StartEdit(id string) error {
	c, ok := e.list.Get(id)
	if !ok {
		return ErrNotFound
	}
	e.state = Editing
	e.boundID = id
	e.title = c.Title
	e.target = c.Target
	return nil
}

// SetTitle changes the title field.
func (e *Editor) SetTitle(title string) error {
	e.title = title
	return e.writeThrough()
}

// SetTarget changes the target field.
func (e *Editor) SetTarget(target time.Time) error {
	e.target = target
	return e.writeThrough()
}

func (e *Editor) writeThrough() error {
	if e.state != Editing {
		return nil
	}
	title, target := e.title, e.target
	_, err := e.list.Update(e.boundID, func(c *Countdown) {
		c.Title = title
		if !target.IsZero() {
			c.Target = target
		}
	})
	return err
}

// Submit commits the form. Creating adds a new countdown; Editing just unbinds,
// since edits are already applied. The editor returns to Idle either way.
func (e *Editor) Submit() (Countdown, error) {
	switch e.state {
	case Creating:
		c, err := e.list.Add(e.title, e.target)
		if err != nil {
			return Countdown{}, err
		}
		e.reset()
		return c, nil
	case Editing:
		c, ok := e.list.Get(e.boundID)
		e.reset()
		if !ok {
			return Countdown{}, ErrNotFound
		}
		return c, nil
	default:
		return Countdown{}, ErrInvalidTarget
	}
}

// Discard clears the form and returns to Idle. Live edits made while Editing stay.
func (e *Editor) Discard() {
	e.reset()
}

func (e *Editor) reset() {
	e.state = Idle
	e.boundID = ""
	e.title = ""
	e.target = time.Time{}
}
