package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/vibetime/pkg/app"
	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/render"
	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
)

func newCitiesCommand(o *options) *cobra.Command {
	cities := &cobra.Command{
		Use:   "cities",
		Short: "Manage the listed cities",
		Long: `Lists, adds and removes cities. The first city is the base that relative
times are measured against; it cannot be removed.

Examples:
  vibetime cities
  vibetime cities add san fran
  vibetime cities add springfield --pick 2
  vibetime cities remove 3f2a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCitiesList(cmd, o)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List cities in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCitiesList(cmd, o)
		},
	}

	var pick int
	add := &cobra.Command{
		Use:   "add <query>",
		Short: "Add the best match for a city name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCitiesAdd(cmd, o, strings.Join(args, " "), pick)
		},
	}
	add.Flags().IntVar(&pick, "pick", 1, "which suggestion to add (1-based)")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a city by id or id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCitiesRemove(cmd, o, args[0])
		},
	}

	cities.AddCommand(list, add, remove)
	return cities
}

func runCitiesList(cmd *cobra.Command, o *options) error {
	a, err := o.open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp(a)

	p := o.palette(a)
	out := cmd.OutOrStdout()
	for i, l := range a.Session.Locations() {
		marker := "  "
		if i == 0 {
			marker = p.Accent.Sprint("● ")
		}
		fmt.Fprintf(out, "%s%-8s %-20s %-30s %s\n", marker, p.Muted.Sprint(shortID(l.ID)), l.Name, l.Timezone, l.CountryCode)
	}
	return nil
}

// resolvePlace turns a query into one suggestion: the pick-th local or cached
// match, or a remote resolution when nothing matches.
func resolvePlace(ctx context.Context, a *app.App, query string, pick int) (suggest.Suggestion, error) {
	found := a.Provider.Lookup(ctx, query)
	if len(found) == 0 && a.Gemini != nil {
		c, err := a.Gemini.ResolveCity(ctx, query)
		if err != nil {
			a.Logger.Warn("city resolution failed", "query", query, "error", err)
		} else {
			found = []suggest.Suggestion{{City: c.City, Country: c.Country, Timezone: c.Timezone}}
		}
	}
	if len(found) == 0 {
		return suggest.Suggestion{}, fmt.Errorf("no city matches %q", query)
	}
	if pick < 1 || pick > len(found) {
		return suggest.Suggestion{}, fmt.Errorf("--pick %d out of range: %d suggestions", pick, len(found))
	}
	return found[pick-1], nil
}

func runCitiesAdd(cmd *cobra.Command, o *options, query string, pick int) error {
	ctx := cmd.Context()
	a, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	s, err := resolvePlace(ctx, a, query, pick)
	if err != nil {
		return err
	}
	loc := locations.Location{Name: s.City, Timezone: s.Timezone}
	if a.Geocoder != nil {
		coords, err := a.Geocoder.Coords(ctx, s.City+", "+s.Country)
		if err != nil {
			a.Logger.Warn("geocoding failed, adding without coordinates", "city", s.City, "error", err)
		} else {
			loc.Coords = coords
		}
	}

	p := o.palette(a)
	added, err := a.Session.AddLocation(ctx, loc)
	var dup *locations.DuplicateError
	if errors.As(err, &dup) {
		fmt.Fprint(cmd.OutOrStdout(), render.Notice(p, dup.Notice()))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) %s\n", added.Name, added.Timezone, p.Muted.Sprint(shortID(added.ID)))
	return nil
}

func runCitiesRemove(cmd *cobra.Command, o *options, prefix string) error {
	ctx := cmd.Context()
	a, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer closeApp(a)

	locs := a.Session.Locations()
	ids := make([]string, len(locs))
	for i, l := range locs {
		ids[i] = l.ID
	}
	id, err := matchID(prefix, ids)
	if err != nil {
		return err
	}
	if id == locs[0].ID {
		return fmt.Errorf("%s is the base city and cannot be removed", locs[0].Name)
	}
	var name string
	for _, l := range locs {
		if l.ID == id {
			name = l.Name
		}
	}
	if err := a.Session.RemoveLocation(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
