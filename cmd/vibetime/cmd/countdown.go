package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/vibetime/pkg/app"
	"github.com/codeGROOVE-dev/vibetime/pkg/countdown"
	"github.com/codeGROOVE-dev/vibetime/pkg/render"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

type countdownFlags struct {
	title string
	date  string
	clock string
}

func (f *countdownFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.title, "title", "", "countdown title (blank uses \""+countdown.DefaultTitle+"\")")
	c.Flags().StringVar(&f.date, "date", "", "target date, YYYY-MM-DD")
	c.Flags().StringVar(&f.clock, "time", "", "target time, HH:MM (default 00:00)")
}

// target reads --date and --time as wall-clock time in the base city.
func (f *countdownFlags) target(a *app.App) (time.Time, error) {
	zone := "UTC"
	if base, ok := a.Session.Base(); ok {
		zone = base.Timezone
	}
	return tzconvert.ParseLocal(f.date, f.clock, zone)
}

func newCountdownCommand(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:     "countdown",
		Aliases: []string{"countdowns"},
		Short:   "Track time remaining until target moments",
		Long: `Countdowns count down to a target date and time, entered as wall-clock time
in the base city.

Examples:
  vibetime countdown add --title Launch --date 2026-01-01 --time 09:00
  vibetime countdown edit 3f2a --time 10:30
  vibetime countdown remove 3f2a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCountdownList(cmd, o)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List countdowns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCountdownList(cmd, o)
		},
	}

	var addFlags countdownFlags
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a countdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			target, err := addFlags.target(a)
			if err != nil {
				return err
			}
			c, err := a.Session.Countdowns().Add(addFlags.title, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", c.Title, render.PaletteFor(a.Session.Theme()).Muted.Sprint(shortID(c.ID)))
			return nil
		},
	}
	addFlags.register(add)
	_ = add.MarkFlagRequired("date") //nolint:errcheck // flag is registered above

	var editFlags countdownFlags
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a countdown's title or target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			list := a.Session.Countdowns()
			id, err := matchID(args[0], countdownIDs(list))
			if err != nil {
				return err
			}
			current, _ := list.Get(id)

			editor := countdown.NewEditor(list)
			if err := editor.StartEdit(id); err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				if err := editor.SetTitle(editFlags.title); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("date") || cmd.Flags().Changed("time") {
				// Unchanged parts keep the current target's wall time in the base city.
				base, _ := a.Session.Base()
				wall := tzconvert.ProjectIn(current.Target, mustZone(base.Timezone))
				if !cmd.Flags().Changed("date") {
					editFlags.date = wall.ISODate()
				}
				if !cmd.Flags().Changed("time") {
					editFlags.clock = wall.Time24()
				}
				target, err := editFlags.target(a)
				if err != nil {
					return err
				}
				if err := editor.SetTarget(target); err != nil {
					return err
				}
			}
			c, err := editor.Submit()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", c.Title)
			return nil
		},
	}
	editFlags.register(edit)

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a countdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			list := a.Session.Countdowns()
			id, err := matchID(args[0], countdownIDs(list))
			if err != nil {
				return err
			}
			c, _ := list.Get(id)
			if err := list.Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", c.Title)
			return nil
		},
	}

	root.AddCommand(list, add, edit, remove)
	return root
}

func runCountdownList(cmd *cobra.Command, o *options) error {
	a, err := o.open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp(a)

	now := a.Session.Now()
	if base, ok := a.Session.Base(); ok {
		now = now.In(mustZone(base.Timezone))
	}
	fmt.Fprint(cmd.OutOrStdout(), render.Countdowns(o.palette(a), a.Session.Countdowns().All(), now))
	return nil
}

func countdownIDs(list *countdown.List) []string {
	items := list.All()
	ids := make([]string, len(items))
	for i, c := range items {
		ids[i] = c.ID
	}
	return ids
}

// mustZone loads a zone already validated by the location list, falling back to UTC.
func mustZone(name string) *time.Location {
	loc, err := tzconvert.LoadZone(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
