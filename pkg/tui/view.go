package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codeGROOVE-dev/vibetime/pkg/countdown"
	"github.com/codeGROOVE-dev/vibetime/pkg/datecalc"
	"github.com/codeGROOVE-dev/vibetime/pkg/planner"
	"github.com/codeGROOVE-dev/vibetime/pkg/render"
	"github.com/codeGROOVE-dev/vibetime/pkg/timeline"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

const scrubWidth = 49

// View renders the UI
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	var body string
	switch m.tab {
	case TabConverter:
		body = m.renderConverter()
	case TabPlanner:
		body = m.renderPlanner()
	case TabWidgets:
		body = m.renderWidget()
	case TabCountdown:
		body = m.renderCountdowns()
	case TabCalculator:
		body = m.renderCalculator()
	case TabFortune:
		body = m.renderFortune()
	}
	b.WriteString(m.styles.Panel.Width(max(m.width-2, 40)).Render(body))
	b.WriteString("\n")

	if n, ok := m.sess.Notice(); ok {
		b.WriteString(m.styles.Notice.Render(n.Text) + "\n")
	} else if m.status != "" {
		b.WriteString(m.styles.Muted.Render(m.status) + "\n")
	}
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	selected := m.sess.Selected()
	title := m.styles.Title.Render("vibetime")
	when := selected.Local().Format("Mon Jan 2 15:04:05")
	parts := []string{title, "  ", m.styles.Selected.Render(when)}
	if mins := m.sess.Offset().Minutes(); mins != 0 {
		parts = append(parts, "  ", m.styles.Notice.Render(timeline.FormatOffset(mins)))
	}
	parts = append(parts, "  ", m.styles.Muted.Render("theme: "+string(m.sess.Theme())))
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.tab {
			tabs[i] = m.styles.ActiveTab.Render(label)
			continue
		}
		tabs[i] = m.styles.Tab.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// scrubBar draws the ±7 day window with the current offset marked.
func (m Model) scrubBar() string {
	mins := m.sess.Offset().Minutes()
	pos := (mins + timeline.MaxOffsetMinutes) * (scrubWidth - 1) / (2 * timeline.MaxOffsetMinutes)
	bar := []rune(strings.Repeat("─", scrubWidth))
	bar[scrubWidth/2] = '┼'
	bar[pos] = '●'
	return m.styles.Muted.Render("-7d ") + m.styles.Accent.Render(string(bar)) + m.styles.Muted.Render(" +7d")
}

// scrubRow is the screen row the scrub bar occupies on the Converter tab.
func (m Model) scrubRow() int {
	return lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderTabs()) + 1 +
		m.styles.Panel.GetBorderTopSize() + m.styles.Panel.GetPaddingTop()
}

func (m Model) renderSearch() string {
	if m.mode != modeSearch {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + m.search.View() + "\n")
	for i, s := range m.suggestions {
		line := fmt.Sprintf("  %s, %s  %s", s.City, s.Country, m.styles.Muted.Render(s.Timezone))
		if i == 0 {
			line = m.styles.Accent.Render("›") + line[1:]
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderConverter() string {
	var b strings.Builder
	b.WriteString(m.scrubBar() + "\n\n")
	for i, c := range m.sess.Clocks() {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Accent.Render("▸ ")
		}
		name := c.Location.Name
		if c.IsBase {
			name = m.styles.Accent.Render(name + " ●")
		}
		icon := "☀"
		if c.Night {
			icon = "☾"
		}
		fmt.Fprintf(&b, "%s%-24s %s %s  %s  %s  %s\n",
			cursor, name, icon,
			m.styles.Selected.Render(c.Wall.Time12Seconds()),
			c.Date, c.Offset, m.styles.Muted.Render(c.Relative))
	}
	b.WriteString(m.renderSearch())
	return b.String()
}

func (m Model) renderPlanner() string {
	g, err := planner.Build(m.sess.Locations(), m.sess.Selected(), m.sess.Now())
	if err != nil {
		return m.styles.Notice.Render(err.Error())
	}
	var b strings.Builder
	strip := make([]string, len(g.Strip))
	for i, d := range g.Strip {
		label := d.Date.Format("Mon 2")
		switch {
		case d.Selected:
			strip[i] = m.styles.ActiveTab.Render(label)
		case d.Today:
			strip[i] = m.styles.Accent.Render(label)
		default:
			strip[i] = m.styles.Tab.Render(label)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, strip...) + "\n\n")

	for i, r := range g.Rows {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Accent.Render("▸ ")
		}
		cells := make([]string, len(r.Cells))
		for h, c := range r.Cells {
			label := c.Label()
			if h == g.NowColumn {
				label = "•" + label
			}
			cells[h] = m.styles.Slots[c.Class].Render(label)
		}
		fmt.Fprintf(&b, "%s%-14s %5s %s\n", cursor, r.Location.Name, r.OffsetLabel, strings.Join(cells, ""))
	}
	b.WriteString(m.renderSearch())
	return b.String()
}

func (m Model) renderWidget() string {
	loc, ok := m.sess.Preview()
	if !ok {
		loc, ok = m.sess.Base()
	}
	if !ok {
		return "Press / to pick a city to preview."
	}
	w, err := tzconvert.Project(m.sess.Selected(), loc.Timezone)
	if err != nil {
		return m.styles.Notice.Render(err.Error())
	}
	dial := strings.Join(render.Dial(w.Hands()), "\n")
	digital := strings.Join([]string{
		m.styles.Accent.Render(loc.Name),
		m.styles.Muted.Render(loc.Timezone),
		"",
		m.styles.Selected.Render(w.Time24Seconds()),
		w.DateLong(),
		m.styles.Muted.Render(w.OffsetLabel() + " " + w.Abbrev),
	}, "\n")
	return lipgloss.JoinHorizontal(lipgloss.Center, dial, "    ", digital) + m.renderSearch()
}

func (m Model) renderCountdowns() string {
	var b strings.Builder
	now := m.sess.Now()
	items := m.sess.Countdowns().All()
	if len(items) == 0 {
		b.WriteString(m.styles.Muted.Render("No countdowns. Press n to add one.") + "\n")
	}
	for i, c := range items {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Accent.Render("▸ ")
		}
		left := countdown.Remaining(c.Target, now)
		status := m.styles.Selected.Render(left.String())
		if left.Expired {
			status = m.styles.Notice.Render("reached")
		}
		fmt.Fprintf(&b, "%s%-24s %s  %s\n", cursor, c.Title, m.styles.Muted.Render(c.Target.In(m.formZone()).Format(targetLayout)), status)
	}

	if m.mode == modeCountdownForm {
		heading := "New countdown"
		if m.editor.State() == countdown.Editing {
			heading = "Editing (changes apply live)"
		}
		fmt.Fprintf(&b, "\n%s\n%s\n%s\n", m.styles.Accent.Render(heading), m.formTitle.View(), m.formTarget.View())
	}
	return b.String()
}

func (m Model) renderCalculator() string {
	var b strings.Builder
	fmt.Fprintf(&b, "From %s\nTo   %s\n\n", m.calcA.View(), m.calcB.View())

	a, errA := datecalc.Parse(m.calcA.Value())
	c, errB := datecalc.Parse(m.calcB.Value())
	if errA != nil || errB != nil {
		b.WriteString(m.styles.Muted.Render("Enter both dates as YYYY-MM-DD."))
		return b.String()
	}
	span := datecalc.Difference(a, c)
	info := datecalc.Describe(a)
	fmt.Fprintf(&b, "Difference     %s (%d days)\n", m.styles.Selected.Render(span.String()), span.TotalDays)
	fmt.Fprintf(&b, "Business days  %d\n", datecalc.BusinessDays(a, c))
	fmt.Fprintf(&b, "From date      %s, day %d, ISO week %d", info.Weekday, info.DayOfYear, info.ISOWeek)
	if info.Leap {
		b.WriteString(", leap year")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderFortune() string {
	switch {
	case m.loading:
		return m.spinner.View() + " Consulting the oracle…"
	case m.fortune == nil:
		return m.styles.Muted.Render("Press f for a fortune.")
	}
	nums := make([]string, len(m.fortune.LuckyNumbers))
	for i, n := range m.fortune.LuckyNumbers {
		nums[i] = fmt.Sprint(n)
	}
	return m.styles.Accent.Render("“"+m.fortune.Text+"”") + "\n\n" +
		m.styles.Muted.Render("Lucky numbers: "+strings.Join(nums, " · "))
}

func (m Model) renderHelp() string {
	var hints []string
	switch m.mode {
	case modeSearch:
		hints = []string{m.styles.keyHint("enter", "add first"), m.styles.keyHint("esc", "cancel")}
	case modeCountdownForm, modeCalc:
		hints = []string{m.styles.keyHint("tab", "field"), m.styles.keyHint("enter", "save"), m.styles.keyHint("esc", "close")}
	default:
		hints = []string{
			m.styles.keyHint("←/→", "15m"),
			m.styles.keyHint("⇧←/→", "1h"),
			m.styles.keyHint("[/]", "day"),
			m.styles.keyHint("0", "now"),
			m.styles.keyHint("/", "search"),
			m.styles.keyHint("x", "remove"),
			m.styles.keyHint("t", "theme"),
			m.styles.keyHint("q", "quit"),
		}
	}
	return strings.Join(hints, "  ")
}
