// Package render draws vibetime views as coloured terminal text.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/vibetime/pkg/countdown"
	"github.com/codeGROOVE-dev/vibetime/pkg/fortune"
	"github.com/codeGROOVE-dev/vibetime/pkg/planner"
	"github.com/codeGROOVE-dev/vibetime/pkg/session"
	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

const rule = 50

// Palette is the set of colours a theme draws with.
type Palette struct {
	Accent  *color.Color
	Muted   *color.Color
	Night   *color.Color
	Sunrise *color.Color
	Work    *color.Color
	Evening *color.Color
	Alert   *color.Color
}

// PaletteFor returns the palette for a theme. Unknown themes get light.
func PaletteFor(theme session.Theme) Palette {
	p := Palette{
		Muted:   color.New(color.FgHiBlack),
		Night:   color.New(color.FgBlue),
		Sunrise: color.New(color.FgYellow),
		Work:    color.New(color.FgGreen),
		Evening: color.New(color.FgMagenta),
		Alert:   color.New(color.FgRed, color.Bold),
	}
	switch theme {
	case session.ThemeMidnight:
		p.Accent = color.New(color.FgHiBlue, color.Bold)
		p.Night = color.New(color.FgHiBlue)
	case session.ThemeBlackout:
		p.Accent = color.New(color.FgHiWhite, color.Bold)
		p.Sunrise = color.New(color.FgWhite)
		p.Work = color.New(color.FgHiWhite)
		p.Evening = color.New(color.FgWhite)
	case session.ThemeCyber:
		p.Accent = color.New(color.FgHiCyan, color.Bold)
		p.Work = color.New(color.FgHiGreen)
		p.Evening = color.New(color.FgHiMagenta)
	default:
		p.Accent = color.New(color.FgCyan, color.Bold)
	}
	return p
}

func (p Palette) class(c planner.Class) *color.Color {
	switch c {
	case planner.Night:
		return p.Night
	case planner.Sunrise:
		return p.Sunrise
	case planner.Work:
		return p.Work
	default:
		return p.Evening
	}
}

func header(out *strings.Builder, title string) {
	out.WriteString(title + "\n")
	out.WriteString(strings.Repeat("─", rule) + "\n")
}

// Clocks renders the world-clock list. offsetLabel is shown when the view is scrubbed.
func Clocks(p Palette, clocks []session.Clock, offsetLabel string) string {
	var out strings.Builder
	title := "🌍 World Clock"
	if offsetLabel != "" {
		title += " " + p.Alert.Sprintf("(%s)", offsetLabel)
	}
	header(&out, title)
	if len(clocks) == 0 {
		out.WriteString("No cities listed. Add one with `vibetime cities add <name>`.\n")
		return out.String()
	}

	width := 0
	for _, c := range clocks {
		width = max(width, len([]rune(c.Location.Name)))
	}
	for _, c := range clocks {
		marker := "  "
		if c.IsBase {
			marker = p.Accent.Sprint("● ")
		}
		icon := "☀"
		if c.Night {
			icon = "☾"
		}
		name := c.Location.Name + strings.Repeat(" ", width-len([]rune(c.Location.Name)))
		fmt.Fprintf(&out, "%s%s  %s %8s  %-11s %-9s %s\n",
			marker, name, icon, p.Accent.Sprint(c.Time), c.Date, c.Offset, p.Muted.Sprint(c.Relative))
	}
	return out.String()
}

// Planner renders the heatmap grid with the date strip above it.
func Planner(p Palette, g *planner.Grid) string {
	var out strings.Builder
	header(&out, "📅 Meeting Planner "+g.Day.Format("Mon, Jan 2 2006"))

	for i, d := range g.Strip {
		if i > 0 {
			out.WriteString(" ")
		}
		label := d.Date.Format("Mon 2")
		switch {
		case d.Selected:
			out.WriteString(p.Accent.Sprintf("[%s]", label))
		case d.Today:
			fmt.Fprintf(&out, "*%s*", label)
		default:
			out.WriteString(p.Muted.Sprintf(" %s ", label))
		}
	}
	out.WriteString("\n\n")

	width := 0
	for _, r := range g.Rows {
		width = max(width, len([]rune(r.Location.Name)))
	}
	pad := strings.Repeat(" ", width+8)
	out.WriteString(pad)
	for h := range planner.Slots {
		if h == g.NowColumn {
			out.WriteString(p.Alert.Sprint("  ▼  "))
			continue
		}
		out.WriteString("     ")
	}
	out.WriteString("\n")

	for _, r := range g.Rows {
		name := r.Location.Name + strings.Repeat(" ", width-len([]rune(r.Location.Name)))
		if r.IsBase {
			name = p.Accent.Sprint(name)
		}
		fmt.Fprintf(&out, "%s %6s ", name, r.OffsetLabel)
		for _, c := range r.Cells {
			label := c.Label()
			if c.NewDay {
				if w, err := tzconvert.Project(c.Instant, r.Location.Timezone); err == nil {
					label = fmt.Sprintf("%.3s%d", w.Month, w.Day)
				}
			}
			fmt.Fprintf(&out, "%s", p.class(c.Class).Sprintf("%5s", label))
		}
		out.WriteString("\n")
	}

	out.WriteString("\n")
	fmt.Fprintf(&out, "%s night  %s sunrise  %s work  %s evening\n",
		p.Night.Sprint("■"), p.Sunrise.Sprint("■"), p.Work.Sprint("■"), p.Evening.Sprint("■"))
	return out.String()
}

// Countdowns renders the countdown table at now.
func Countdowns(p Palette, items []countdown.Countdown, now time.Time) string {
	var out strings.Builder
	header(&out, "⏳ Countdowns")
	if len(items) == 0 {
		out.WriteString("No countdowns yet.\n")
		return out.String()
	}
	for _, c := range items {
		b := countdown.Remaining(c.Target, now)
		status := p.Accent.Sprint(b.String())
		if b.Expired {
			status = p.Alert.Sprint("✓ reached")
		}
		fmt.Fprintf(&out, "%-20s %-22s %s  %s\n",
			c.Title, c.Target.In(now.Location()).Format("2006-01-02 15:04 MST"), status, p.Muted.Sprint(short(c.ID)))
	}
	return out.String()
}

// Suggestions renders numbered search results.
func Suggestions(p Palette, items []suggest.Suggestion) string {
	if len(items) == 0 {
		return "No matching cities.\n"
	}
	var out strings.Builder
	for i, s := range items {
		fmt.Fprintf(&out, "%s %s, %s %s\n", p.Accent.Sprintf("%d.", i+1), s.City, s.Country, p.Muted.Sprint(s.Timezone))
	}
	return out.String()
}

// Fortune renders a fortune cookie.
func Fortune(p Palette, f fortune.Fortune) string {
	var out strings.Builder
	header(&out, "🥠 Fortune")
	out.WriteString(p.Accent.Sprintf("“%s”", f.Text) + "\n")
	nums := make([]string, len(f.LuckyNumbers))
	for i, n := range f.LuckyNumbers {
		nums[i] = fmt.Sprint(n)
	}
	fmt.Fprintf(&out, "Lucky numbers: %s\n", strings.Join(nums, " · "))
	return out.String()
}

// Notice renders a transient message.
func Notice(p Palette, text string) string {
	return p.Alert.Sprint("⚠️  "+text) + "\n"
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
