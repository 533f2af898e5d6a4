package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/vibetime/pkg/datecalc"
)

func newCalcCommand() *cobra.Command {
	calc := &cobra.Command{
		Use:   "calc",
		Short: "Date arithmetic",
		Long: `Calendar arithmetic on YYYY-MM-DD dates. Times of day and zones are ignored.

Examples:
  vibetime calc diff 2024-01-01 2024-12-25
  vibetime calc business 2024-06-03 2024-06-14
  vibetime calc add 2024-02-28 1
  vibetime calc info 2024-12-30`,
	}

	diff := &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Distance between two dates",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b, err := parsePair(args)
			if err != nil {
				return err
			}
			span := datecalc.Difference(a, b)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d days)\n", span, span.TotalDays)
			fmt.Fprintf(out, "Business days: %d\n", datecalc.BusinessDays(a, b))
			return nil
		},
	}

	business := &cobra.Command{
		Use:   "business <from> <to>",
		Short: "Count Monday-Friday days, both ends included",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b, err := parsePair(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), datecalc.BusinessDays(a, b))
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <date> <days>",
		Short: "Add (or with a negative count, subtract) days",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := datecalc.Parse(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("days must be a whole number: %w", err)
			}
			r := datecalc.AddDays(d, n)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", r.Format(datecalc.Layout), r.Weekday())
			return nil
		},
	}

	info := &cobra.Command{
		Use:   "info <date>",
		Short: "Weekday, day of year, ISO week and leap year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := datecalc.Parse(args[0])
			if err != nil {
				return err
			}
			in := datecalc.Describe(d)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date:        %s\n", in.Date)
			fmt.Fprintf(out, "Weekday:     %s\n", in.Weekday)
			fmt.Fprintf(out, "Day of year: %d of %d\n", in.DayOfYear, in.DaysInYear)
			fmt.Fprintf(out, "ISO week:    %d-W%02d\n", in.ISOYear, in.ISOWeek)
			fmt.Fprintf(out, "Leap year:   %t\n", in.Leap)
			return nil
		},
	}

	calc.AddCommand(diff, business, add, info)
	return calc
}

func parsePair(args []string) (a, b time.Time, err error) {
	if a, err = datecalc.Parse(args[0]); err != nil {
		return a, b, err
	}
	b, err = datecalc.Parse(args[1])
	return a, b, err
}
