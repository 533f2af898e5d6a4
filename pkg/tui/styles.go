package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/codeGROOVE-dev/vibetime/pkg/planner"
	"github.com/codeGROOVE-dev/vibetime/pkg/session"
)

// Styles is the lipgloss style set for one theme.
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Panel     lipgloss.Style
	Accent    lipgloss.Style
	Muted     lipgloss.Style
	Selected  lipgloss.Style
	Notice    lipgloss.Style
	HelpKey   lipgloss.Style
	HelpDesc  lipgloss.Style
	Slots     map[planner.Class]lipgloss.Style
}

type palette struct {
	primary, text, muted, panel, alert  lipgloss.Color
	night, sunrise, work, evening, cell lipgloss.Color
}

var palettes = map[session.Theme]palette{
	session.ThemeLight: {
		primary: "#2563EB", text: "#0F172A", muted: "#64748B", panel: "#CBD5E1", alert: "#DC2626",
		night: "#1E3A8A", sunrise: "#F59E0B", work: "#10B981", evening: "#8B5CF6", cell: "#F8FAFC",
	},
	session.ThemeMidnight: {
		primary: "#818CF8", text: "#E2E8F0", muted: "#94A3B8", panel: "#334155", alert: "#F87171",
		night: "#1E1B4B", sunrise: "#B45309", work: "#047857", evening: "#6D28D9", cell: "#F8FAFC",
	},
	session.ThemeBlackout: {
		primary: "#FFFFFF", text: "#E5E5E5", muted: "#737373", panel: "#262626", alert: "#FCA5A5",
		night: "#0A0A0A", sunrise: "#404040", work: "#737373", evening: "#262626", cell: "#FAFAFA",
	},
	session.ThemeCyber: {
		primary: "#22D3EE", text: "#F0ABFC", muted: "#A21CAF", panel: "#701A75", alert: "#FACC15",
		night: "#0C0A3E", sunrise: "#DB2777", work: "#16A34A", evening: "#7C3AED", cell: "#ECFEFF",
	},
}

// NewStyles builds the style set for theme; unknown themes use light.
func NewStyles(theme session.Theme) Styles {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[session.ThemeLight]
	}
	slot := func(bg lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().Background(bg).Foreground(p.cell).Width(5).Align(lipgloss.Right)
	}
	return Styles{
		Title:     lipgloss.NewStyle().Foreground(p.primary).Bold(true),
		Tab:       lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Foreground(p.primary).Bold(true).Underline(true).Padding(0, 1),
		Panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.panel).Padding(0, 1),
		Accent:    lipgloss.NewStyle().Foreground(p.primary).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(p.muted),
		Selected:  lipgloss.NewStyle().Foreground(p.text).Bold(true),
		Notice:    lipgloss.NewStyle().Foreground(p.alert).Bold(true),
		HelpKey:   lipgloss.NewStyle().Foreground(p.primary).Bold(true),
		HelpDesc:  lipgloss.NewStyle().Foreground(p.muted),
		Slots: map[planner.Class]lipgloss.Style{
			planner.Night:   slot(p.night),
			planner.Sunrise: slot(p.sunrise),
			planner.Work:    slot(p.work),
			planner.Evening: slot(p.evening),
		},
	}
}

// keyHint renders a keyboard shortcut hint
func (s Styles) keyHint(key, description string) string {
	return s.HelpKey.Render(key) + " " + s.HelpDesc.Render(description)
}
