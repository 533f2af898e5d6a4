package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/planner"
	"github.com/codeGROOVE-dev/vibetime/pkg/render"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

func newClockCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clock",
		Short: "Show the time in every listed city",
		Long: `Shows every listed city at the selected instant: now, or now shifted by
--offset. The base city is marked with ●.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			label := ""
			if a.Session.Offset().Minutes() != 0 {
				label = a.Session.Offset().Label()
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Clocks(o.palette(a), a.Session.Clocks(), label))
			return nil
		},
	}
}

func newPlannerCommand(o *options) *cobra.Command {
	var date string
	c := &cobra.Command{
		Use:   "planner",
		Short: "Show a 24-hour meeting planner across cities",
		Long: `Lays out one day in the base city's calendar as a heatmap: every row is a
city, every column an hour. Colours mark night, sunrise, work and evening hours.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			locs := a.Session.Locations()
			selected := a.Session.Selected()
			if date != "" {
				zone := "UTC"
				if len(locs) > 0 {
					zone = locs[0].Timezone
				}
				if selected, err = tzconvert.ParseLocal(date, "12:00", zone); err != nil {
					return err
				}
			}
			grid, err := planner.Build(locs, selected, a.Session.Now())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Planner(o.palette(a), grid))
			return nil
		},
	}
	c.Flags().StringVar(&date, "date", "", "day to plan, YYYY-MM-DD in the base city (default: selected day)")
	return c
}

func newWidgetCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "widget [query]",
		Short: "Show an analog and digital clock for one city",
		Long: `Previews a city as a clock widget without adding it to the list.
With no query the base city is shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := o.open(ctx)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if len(args) > 0 {
				s, err := resolvePlace(ctx, a, strings.Join(args, " "), 1)
				if err != nil {
					return err
				}
				if err := a.Session.SetPreview(locations.Location{Name: s.City, Timezone: s.Timezone}); err != nil {
					return err
				}
			}
			loc, ok := a.Session.Preview()
			if !ok {
				if loc, ok = a.Session.Base(); !ok {
					return errors.New("no city to show")
				}
			}
			w, err := tzconvert.Project(a.Session.Selected(), loc.Timezone)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Widget(o.palette(a), loc, w))
			return nil
		},
	}
}
