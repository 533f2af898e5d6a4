package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/vibetime/pkg/render"
	"github.com/codeGROOVE-dev/vibetime/pkg/session"
)

const remoteTimeout = 30 * time.Second

func newFortuneCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fortune",
		Short: "Crack open a fortune cookie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()
			fmt.Fprint(cmd.OutOrStdout(), render.Fortune(o.palette(a), a.Oracle.Next(ctx)))
			return nil
		},
	}
}

func newSuggestCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <query>",
		Short: "Show city suggestions for a partial name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()
			found := a.Provider.Lookup(ctx, strings.Join(args, " "))
			fmt.Fprint(cmd.OutOrStdout(), render.Suggestions(o.palette(a), found))
			return nil
		},
	}
}

func newAskCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Convert a natural-language time, like \"3pm in Tokyo next Friday\"",
		Long: `Asks Gemini to interpret a time question, then shows that moment in every
listed city. Needs GEMINI_API_KEY or a GCP project.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			p := o.palette(a)
			out := cmd.OutOrStdout()
			if a.Gemini == nil {
				fmt.Fprint(out, render.Notice(p, "ask needs a Gemini API key (set GEMINI_API_KEY)."))
				return nil
			}
			question := strings.Join(args, " ")
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()
			tq, err := a.Gemini.ParseTimeQuery(ctx, question, a.Session.Now())
			if err != nil {
				a.Logger.Warn("time query failed", "query", question, "error", err)
				fmt.Fprint(out, render.Notice(p, "Could not interpret that question."))
				return nil
			}
			instant, err := tq.Instant()
			if err != nil {
				a.Logger.Warn("time query returned an unusable time", "time", tq.Time, "error", err)
				fmt.Fprint(out, render.Notice(p, "Could not interpret that question."))
				return nil
			}
			if tq.Explanation != "" {
				fmt.Fprintln(out, p.Muted.Sprint(tq.Explanation))
			}
			fmt.Fprint(out, render.Clocks(p, session.ClocksAt(a.Session.Locations(), instant), ""))
			return nil
		},
	}
}

func newThemeCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [name]",
		Short: "Show or set the colour theme",
		Long:  "Themes: light, midnight, blackout, cyber.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp(a)

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				names := make([]string, len(session.Themes))
				for i, t := range session.Themes {
					names[i] = string(t)
					if t == a.Session.Theme() {
						names[i] = "[" + names[i] + "]"
					}
				}
				fmt.Fprintln(out, strings.Join(names, " "))
				return nil
			}
			t, err := a.Session.SetTheme(cmd.Context(), args[0])
			if errors.Is(err, session.ErrUnknownTheme) {
				return fmt.Errorf("unknown theme %q (want light, midnight, blackout or cyber)", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Theme set to %s\n", render.PaletteFor(t).Accent.Sprint(t))
			return nil
		},
	}
}
