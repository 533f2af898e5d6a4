package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/codeGROOVE-dev/vibetime/pkg/fortune"
	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
)

// tickMsg carries one shared clock tick.
type tickMsg time.Time

// searchMsg carries a debounced search result.
type searchMsg suggest.Result

// fortuneMsg is sent when a fortune arrives.
type fortuneMsg fortune.Fortune

// waitForTick blocks on the shared tick source.
func waitForTick(ticks <-chan time.Time) tea.Cmd {
	return func() tea.Msg {
		t, ok := <-ticks
		if !ok {
			return nil
		}
		return tickMsg(t)
	}
}

// waitForSearch blocks until the searcher publishes a result.
func waitForSearch(results <-chan suggest.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-results
		if !ok {
			return nil
		}
		return searchMsg(r)
	}
}
