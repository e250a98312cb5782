package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/bootstrap"
)

func newActivityCmd(opts *rootOptions) *cobra.Command {
	activity := &cobra.Command{Use: "activity", Short: "Manage activities"}

	var color, icon, goalID string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.CatalogCLI.AddActivity(cmd.Context(), args[0], color, icon, goalID)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "activity created: %s (%s)\n", out.Name, out.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&color, "color", "", "display color, e.g. #89b4fa")
	add.Flags().StringVar(&icon, "icon", "", "display icon")
	add.Flags().StringVar(&goalID, "goal", "", "linked goal id")

	list := &cobra.Command{
		Use:   "list",
		Short: "List activities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				activities, err := app.CatalogCLI.ListActivities(cmd.Context())
				if err != nil {
					return err
				}
				if len(activities) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no activities")
					return nil
				}
				for _, a := range activities {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tgoal=%s\n", a.ID, a.Name, dash(a.GoalID))
				}
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				if err := app.CatalogCLI.RemoveActivity(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "activity removed: %s\n", args[0])
				return nil
			})
		},
	}

	activity.AddCommand(add, list, rm)
	return activity
}

func newGoalCmd(opts *rootOptions) *cobra.Command {
	goal := &cobra.Command{Use: "goal", Short: "Manage daily goals"}

	var weekday, weekend float64
	var deadline string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a goal with weekday and weekend targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				var due time.Time
				if strings.TrimSpace(deadline) != "" {
					parsed, err := time.ParseInLocation("2006-01-02", deadline, app.Config.Timezone)
					if err != nil {
						return fmt.Errorf("--deadline must be YYYY-MM-DD: %w", err)
					}
					due = parsed
				}
				out, err := app.CatalogCLI.AddGoal(cmd.Context(), args[0], due, weekday, weekend)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goal created: %s (%s) weekday=%.2fh weekend=%.2fh\n", out.Title, out.ID, out.WeekdayTargetHours, out.WeekendTargetHours)
				return nil
			})
		},
	}
	add.Flags().Float64Var(&weekday, "weekday-hours", 1, "daily target on weekdays")
	add.Flags().Float64Var(&weekend, "weekend-hours", 1, "daily target on weekends")
	add.Flags().StringVar(&deadline, "deadline", "", "deadline (YYYY-MM-DD)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				goals, err := app.CatalogCLI.ListGoals(cmd.Context())
				if err != nil {
					return err
				}
				if len(goals) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no goals")
					return nil
				}
				for _, g := range goals {
					due := "-"
					if !g.Deadline.IsZero() {
						due = g.Deadline.Format("2006-01-02")
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tweekday=%.2fh weekend=%.2fh due=%s\n", g.ID, g.Title, g.Status, g.WeekdayTargetHours, g.WeekendTargetHours, due)
				}
				return nil
			})
		},
	}

	status := &cobra.Command{
		Use:   "status <id> <active|completed|paused>",
		Short: "Change a goal's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.CatalogCLI.SetGoalStatus(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "goal %s is now %s\n", out.ID, out.Status)
				return nil
			})
		},
	}

	goal.AddCommand(add, list, status)
	return goal
}

func dash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
