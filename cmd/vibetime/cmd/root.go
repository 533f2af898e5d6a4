// Package cmd holds the vibetime command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/vibetime/pkg/app"
	"github.com/codeGROOVE-dev/vibetime/pkg/config"
	"github.com/codeGROOVE-dev/vibetime/pkg/render"
)

// options are the persistent flags shared by every command.
type options struct {
	cfgFile  string
	storeDir string
	offset   time.Duration
	verbose  bool
	noColor  bool

	// set by tests
	stderr    io.Writer
	localZone string
	now       func() time.Time
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{stderr: os.Stderr})
}

func newRootCommand(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "vibetime",
		Short: "World clock, meeting planner and time toolkit",
		Long: `vibetime keeps a list of cities and shows what time it is in each one.

Scrub through time with --offset, plan meetings across zones, track countdowns
and do date arithmetic. Run "vibetime tui" for the interactive dashboard.

Examples:
  vibetime clock
  vibetime clock --offset 3h30m
  vibetime cities add tokyo
  vibetime planner --date 2025-03-14`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if o.noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().StringVar(&o.cfgFile, "config", "", "config file (default: ./vibetime.toml or ~/.config/vibetime/config.toml)")
	root.PersistentFlags().StringVar(&o.storeDir, "store-dir", "", "state directory for the file store")
	root.PersistentFlags().DurationVar(&o.offset, "offset", 0, "view the clocks shifted by this duration (clamped to ±7 days)")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().BoolVar(&o.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newClockCommand(o),
		newCitiesCommand(o),
		newPlannerCommand(o),
		newCountdownCommand(o),
		newCalcCommand(),
		newFortuneCommand(o),
		newSuggestCommand(o),
		newAskCommand(o),
		newThemeCommand(o),
		newWidgetCommand(o),
		newTUICommand(o),
	)
	return root
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	w := o.stderr
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// open loads config and assembles the app, applying --store-dir and --offset.
func (o *options) open(ctx context.Context) (*app.App, error) {
	logger := o.logger()
	cfg, path, err := config.Resolve(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logger.Debug("loaded config", "path", path)
	}
	if o.storeDir != "" {
		cfg.Store.Backend = "file"
		cfg.Store.Path = o.storeDir
	}
	a, err := app.New(ctx, cfg, logger, app.Options{LocalZone: o.localZone, Now: o.now})
	if err != nil {
		return nil, err
	}
	if o.offset != 0 {
		a.Session.Offset().SetOffset(int(o.offset / time.Minute))
	}
	return a, nil
}

func (o *options) palette(a *app.App) render.Palette {
	return render.PaletteFor(a.Session.Theme())
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Logger.Warn("failed to close store", "error", err)
	}
}

// errAmbiguous is returned when an id prefix matches more than one entry.
var errAmbiguous = errors.New("ambiguous id prefix")

// matchID resolves an id or unique id prefix against ids.
func matchID(prefix string, ids []string) (string, error) {
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no entry with id %q", prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %d entries", errAmbiguous, prefix, len(found))
	}
}
