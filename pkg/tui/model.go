// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/codeGROOVE-dev/vibetime/pkg/countdown"
	"github.com/codeGROOVE-dev/vibetime/pkg/datecalc"
	"github.com/codeGROOVE-dev/vibetime/pkg/fortune"
	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/session"
	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

// Scrub steps in minutes.
const (
	stepSmall = 15
	stepLarge = 60
	stepDay   = 24 * 60
)

// cellPixels is the nominal pixel width of one terminal cell for drag input.
const cellPixels = 8

const (
	targetLayout   = "2006-01-02 15:04"
	fortuneTimeout = 15 * time.Second
)

// Tab is one dashboard page.
type Tab int

const (
	TabConverter Tab = iota
	TabPlanner
	TabWidgets
	TabCountdown
	TabCalculator
	TabFortune
)

var tabNames = []string{"Converter", "Planner", "Widgets", "Countdown", "Calculator", "Fortune"}

func (t Tab) String() string { return tabNames[t] }

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeCountdownForm
	modeCalc
)

// Config wires the dashboard to its collaborators. Searcher, Oracle and Ticks
// are optional.
type Config struct {
	Session  *session.Session
	Searcher *suggest.Searcher
	Oracle   *fortune.Oracle
	Ticks    <-chan time.Time
	Logger   *slog.Logger
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctx         context.Context //nolint:containedctx // bubbletea models outlive any single call
	sess        *session.Session
	searcher    *suggest.Searcher
	oracle      *fortune.Oracle
	ticks       <-chan time.Time
	logger      *slog.Logger
	editor      *countdown.Editor
	fortune     *fortune.Fortune
	styles      Styles
	suggestions []suggest.Suggestion
	status      string
	search      textinput.Model
	formTitle   textinput.Model
	formTarget  textinput.Model
	calcA       textinput.Model
	calcB       textinput.Model
	spinner     spinner.Model
	tab         Tab
	mode        mode
	cursor      int
	formField   int
	calcField   int
	width       int
	height      int
	loading     bool
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

// New creates the dashboard model.
func New(ctx context.Context, cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	today := cfg.Session.Now().Format(datecalc.Layout)
	calcA := newInput("YYYY-MM-DD", 10)
	calcA.SetValue(today)
	calcB := newInput("YYYY-MM-DD", 10)
	calcB.SetValue(today)

	search := newInput("Search a city…", 64)
	search.Prompt = "/ "

	return Model{
		ctx:        ctx,
		sess:       cfg.Session,
		searcher:   cfg.Searcher,
		oracle:     cfg.Oracle,
		ticks:      cfg.Ticks,
		logger:     logger,
		editor:     countdown.NewEditor(cfg.Session.Countdowns()),
		styles:     NewStyles(cfg.Session.Theme()),
		search:     search,
		formTitle:  newInput(countdown.DefaultTitle, 48),
		formTarget: newInput(targetLayout, len(targetLayout)),
		calcA:      calcA,
		calcB:      calcB,
		spinner:    sp,
		width:      100,
	}
}

// Init starts listening to the tick source and the searcher.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.ticks != nil {
		cmds = append(cmds, waitForTick(m.ticks))
	}
	if m.searcher != nil {
		cmds = append(cmds, waitForSearch(m.searcher.Results()))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.sess.Tick(time.Time(msg))
		return m, waitForTick(m.ticks)

	case searchMsg:
		if m.searcher == nil {
			return m, nil
		}
		if msg.Seq == m.searcher.Latest() {
			m.suggestions = msg.Suggestions
		}
		return m, waitForSearch(m.searcher.Results())

	case fortuneMsg:
		f := fortune.Fortune(msg)
		m.fortune = &f
		m.loading = false

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// handleMouse drags the timeline from the scrub bar. A drag that started on the
// bar keeps tracking when the pointer leaves its row.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	g := m.sess.Gesture()
	x := float64(msg.X * cellPixels)
	switch msg.Action {
	case tea.MouseActionPress:
		if m.tab != TabConverter || m.mode != modeBrowse {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.sess.Offset().Shift(stepSmall)
		case tea.MouseButtonWheelDown:
			m.sess.Offset().Shift(-stepSmall)
		case tea.MouseButtonLeft:
			if msg.Y == m.scrubRow() {
				g.Begin(x)
			}
		}
	case tea.MouseActionMotion:
		if g.Active() {
			g.Move(x)
		}
	case tea.MouseActionRelease:
		if g.Active() {
			g.Move(x)
			g.End()
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeCountdownForm:
		return m.handleFormKey(msg)
	case modeCalc:
		return m.handleCalcKey(msg)
	}

	m.status = ""
	offset := m.sess.Offset()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.cursor = 0
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.cursor = 0
	case "1", "2", "3", "4", "5", "6":
		m.tab = Tab(msg.String()[0] - '1')
		m.cursor = 0
	case "left", "h":
		offset.Shift(-stepSmall)
	case "right", "l":
		offset.Shift(stepSmall)
	case "shift+left", "H":
		offset.Shift(-stepLarge)
	case "shift+right", "L":
		offset.Shift(stepLarge)
	case "[":
		offset.Shift(-stepDay)
	case "]":
		offset.Shift(stepDay)
	case "0":
		m.sess.Gesture().ReturnToPresent()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.listLen()-1 {
			m.cursor++
		}
	case "t":
		m.cycleTheme()
	case "/":
		if m.tab == TabConverter || m.tab == TabPlanner || m.tab == TabWidgets {
			m.mode = modeSearch
			m.search.SetValue("")
			m.suggestions = nil
			cmd := m.search.Focus()
			return m, cmd
		}
	case "x", "delete":
		m.removeSelected()
	case "n":
		if m.tab == TabCountdown {
			m.editor.StartCreate()
			return m.openForm("", "")
		}
	case "e", "enter":
		switch m.tab {
		case TabCountdown:
			items := m.sess.Countdowns().All()
			if m.cursor < len(items) {
				c := items[m.cursor]
				if err := m.editor.StartEdit(c.ID); err == nil {
					return m.openForm(c.Title, c.Target.In(m.formZone()).Format(targetLayout))
				}
			}
		case TabCalculator:
			m.mode = modeCalc
			m.calcField = 0
			cmd := m.calcA.Focus()
			return m, cmd
		case TabFortune:
			return m.fetchFortune()
		}
	case "f":
		if m.tab == TabFortune {
			return m.fetchFortune()
		}
	}
	return m, nil
}

func (m Model) listLen() int {
	switch m.tab {
	case TabConverter, TabPlanner:
		return len(m.sess.Locations())
	case TabCountdown:
		return len(m.sess.Countdowns().All())
	default:
		return 0
	}
}

func (m *Model) cycleTheme() {
	current := m.sess.Theme()
	next := session.Themes[0]
	for i, t := range session.Themes {
		if t == current {
			next = session.Themes[(i+1)%len(session.Themes)]
		}
	}
	if _, err := m.sess.SetTheme(m.ctx, string(next)); err != nil {
		m.logger.Warn("failed to save theme", "error", err)
	}
	m.styles = NewStyles(next)
	m.status = "Theme: " + string(next)
}

func (m *Model) removeSelected() {
	switch m.tab {
	case TabConverter, TabPlanner:
		locs := m.sess.Locations()
		if m.cursor == 0 || m.cursor >= len(locs) {
			return
		}
		if err := m.sess.RemoveLocation(m.ctx, locs[m.cursor].ID); err != nil {
			m.status = err.Error()
			return
		}
		m.status = "Removed " + locs[m.cursor].Name
	case TabCountdown:
		items := m.sess.Countdowns().All()
		if m.cursor >= len(items) {
			return
		}
		if err := m.sess.Countdowns().Remove(items[m.cursor].ID); err != nil {
			m.status = err.Error()
			return
		}
	default:
		return
	}
	if n := m.listLen(); m.cursor >= n && n > 0 {
		m.cursor = n - 1
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.search.Blur()
		m.suggestions = nil
		return m, nil
	case "enter":
		if len(m.suggestions) > 0 {
			m.choose(m.suggestions[0])
		}
		m.mode = modeBrowse
		m.search.Blur()
		m.suggestions = nil
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.searcher != nil && m.search.Value() != before {
		m.searcher.Query(m.search.Value())
	}
	return m, cmd
}

// choose adds the suggestion to the list, or previews it on the Widgets tab.
func (m *Model) choose(s suggest.Suggestion) {
	loc := locations.Location{Name: s.City, Timezone: s.Timezone}
	if m.tab == TabWidgets {
		if err := m.sess.SetPreview(loc); err != nil {
			m.status = err.Error()
		}
		return
	}
	added, err := m.sess.AddLocation(m.ctx, loc)
	var dup *locations.DuplicateError
	switch {
	case errors.As(err, &dup):
		// The session notice is shown by View.
	case err != nil:
		m.status = err.Error()
	default:
		m.status = "Added " + added.Name
	}
}

func (m Model) openForm(title, target string) (tea.Model, tea.Cmd) {
	m.mode = modeCountdownForm
	m.formField = 0
	m.formTitle.SetValue(title)
	m.formTitle.CursorEnd()
	m.formTarget.SetValue(target)
	m.formTarget.CursorEnd()
	m.formTarget.Blur()
	cmd := m.formTitle.Focus()
	return m, cmd
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editor.Discard()
		m.mode = modeBrowse
		return m, nil
	case "tab", "shift+tab":
		m.formField = 1 - m.formField
		if m.formField == 0 {
			m.formTarget.Blur()
			cmd := m.formTitle.Focus()
			return m, cmd
		}
		m.formTitle.Blur()
		cmd := m.formTarget.Focus()
		return m, cmd
	case "enter":
		if err := m.syncForm(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		c, err := m.editor.Submit()
		if err != nil {
			m.status = "Enter a target as " + targetLayout
			return m, nil
		}
		m.status = "Saved " + c.Title
		m.mode = modeBrowse
		return m, nil
	}

	var cmd tea.Cmd
	if m.formField == 0 {
		m.formTitle, cmd = m.formTitle.Update(msg)
	} else {
		m.formTarget, cmd = m.formTarget.Update(msg)
	}
	if err := m.syncForm(); err != nil {
		m.logger.Debug("countdown form incomplete", "error", err)
	}
	return m, cmd
}

// formZone is the zone countdown targets are typed and shown in: the base
// location's, or UTC when there is none.
func (m Model) formZone() *time.Location {
	base, ok := m.sess.Base()
	if !ok {
		return time.UTC
	}
	loc, err := tzconvert.LoadZone(base.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// syncForm pushes the form fields into the editor. While editing this writes
// through to the countdown; an unparsable target is left for the user to finish.
func (m *Model) syncForm() error {
	if err := m.editor.SetTitle(m.formTitle.Value()); err != nil {
		return err
	}
	target, err := time.ParseInLocation(targetLayout, m.formTarget.Value(), m.formZone())
	if err != nil {
		return nil //nolint:nilerr // partial input while typing
	}
	return m.editor.SetTarget(target)
}

func (m Model) handleCalcKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.mode = modeBrowse
		m.calcA.Blur()
		m.calcB.Blur()
		return m, nil
	case "tab", "shift+tab":
		m.calcField = 1 - m.calcField
		if m.calcField == 0 {
			m.calcB.Blur()
			cmd := m.calcA.Focus()
			return m, cmd
		}
		m.calcA.Blur()
		cmd := m.calcB.Focus()
		return m, cmd
	}
	var cmd tea.Cmd
	if m.calcField == 0 {
		m.calcA, cmd = m.calcA.Update(msg)
	} else {
		m.calcB, cmd = m.calcB.Update(msg)
	}
	return m, cmd
}

func (m Model) fetchFortune() (tea.Model, tea.Cmd) {
	if m.oracle == nil || m.loading {
		return m, nil
	}
	m.loading = true
	oracle, ctx := m.oracle, m.ctx
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, fortuneTimeout)
		defer cancel()
		return fortuneMsg(oracle.Next(ctx))
	}
	return m, tea.Batch(fetch, m.spinner.Tick)
}
