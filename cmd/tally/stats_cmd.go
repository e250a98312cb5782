package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tally/internal/bootstrap"
	statsdto "tally/internal/modules/stats/dto"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	stats := &cobra.Command{Use: "stats", Short: "Totals, averages and streaks"}

	optionalArg := func(args []string) string {
		if len(args) == 0 {
			return ""
		}
		return args[0]
	}

	day := &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "Time per activity on one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.StatsCLI.Day(cmd.Context(), optionalArg(args))
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "%s  total %s\n", out.Date, out.Total)
				for _, a := range out.Activities {
					_, _ = fmt.Fprintf(w, "  %-20s %8s  (%d sessions)\n", a.ActivityName, a.Formatted, a.Sessions)
				}
				return nil
			})
		},
	}

	week := &cobra.Command{
		Use:   "week [YYYY-MM-DD]",
		Short: "Daily totals for the Monday-start week containing the date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.StatsCLI.Week(cmd.Context(), optionalArg(args))
				if err != nil {
					return err
				}
				printPeriod(cmd.OutOrStdout(), "week of "+out.Start, out)
				return nil
			})
		},
	}

	month := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Daily totals for a calendar month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.StatsCLI.Month(cmd.Context(), optionalArg(args))
				if err != nil {
					return err
				}
				printPeriod(cmd.OutOrStdout(), "month of "+out.Start, out)
				return nil
			})
		},
	}

	streak := &cobra.Command{
		Use:   "streak",
		Short: "Consecutive days with recorded time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.StatsCLI.Streak(cmd.Context())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "streak: %d day(s) as of %s\n", out.Days, out.AsOf)
				return nil
			})
		},
	}

	calendar := &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Per-day activity entries for a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.StatsCLI.Calendar(cmd.Context(), optionalArg(args))
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintln(w, out.Month)
				for _, d := range out.Days {
					if len(d.Entries) == 0 {
						continue
					}
					parts := make([]string, 0, len(d.Entries))
					for _, e := range d.Entries {
						parts = append(parts, e.ActivityName+" "+e.Formatted)
					}
					_, _ = fmt.Fprintf(w, "  %s  %-8s %s\n", d.Date, d.Total, strings.Join(parts, ", "))
				}
				return nil
			})
		},
	}

	progress := &cobra.Command{
		Use:   "progress <session-id>",
		Short: "Goal progress of a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.StatsCLI.Progress(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !out.HasTarget {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: no target\n", out.SessionID)
					return nil
				}
				state := ""
				if out.Achieved {
					state = " achieved"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %.0f%% of %dm%s\n", out.SessionID, out.Percent, out.TargetMinutes, state)
				return nil
			})
		},
	}

	stats.AddCommand(day, week, month, streak, calendar, progress)
	return stats
}

func printPeriod(w io.Writer, title string, out statsdto.PeriodOutput) {
	_, _ = fmt.Fprintf(w, "%s  total %s  avg %s/day over %d day(s)\n", title, out.Total, out.Average, out.ElapsedDays)
	for _, d := range out.Days {
		_, _ = fmt.Fprintf(w, "  %s %s  %s\n", d.Weekday, d.Date, d.Formatted)
	}
}
