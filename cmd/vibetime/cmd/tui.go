package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
	"github.com/codeGROOVE-dev/vibetime/pkg/ticker"
	"github.com/codeGROOVE-dev/vibetime/pkg/tui"
)

const debugLogFile = "vibetime-debug.log"

func newTUICommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive dashboard",
		Long: `Starts the terminal dashboard.

Navigation:
  1-6, Tab     switch views
  ←/→          scrub 15 minutes (shift: 1 hour)
  [ / ]        one day back / forward
  0            back to the present
  /            search for a city, Enter adds the first match
  x            remove the selected city
  t            next theme
  q, Ctrl+C    quit

With --verbose, logs go to ` + debugLogFile + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Log lines would tear the alternate screen.
			o.stderr = io.Discard
			if o.verbose {
				f, err := tea.LogToFile(debugLogFile, "vibetime")
				if err != nil {
					return fmt.Errorf("opening debug log: %w", err)
				}
				defer f.Close() //nolint:errcheck // best effort
				o.stderr = f
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer closeApp(a)

			src := ticker.New(time.Second, ticker.WithLogger(a.Logger))
			go src.Run(ctx)
			ticks, unsubscribe := src.Subscribe()
			defer unsubscribe()

			searcher := suggest.NewSearcher(a.Provider, a.Config.Suggest.Debounce.Duration, a.Config.Suggest.MinQueryLength)
			defer searcher.Close()

			model := tui.New(ctx, tui.Config{
				Session:  a.Session,
				Searcher: searcher,
				Oracle:   a.Oracle,
				Ticks:    ticks,
				Logger:   a.Logger,
			})
			if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run(); err != nil {
				return fmt.Errorf("dashboard: %w", err)
			}
			return nil
		},
	}
}
