package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/bootstrap"
	sessiondto "tally/internal/modules/session/dto"
	"tally/internal/platform/durationfmt"
	"tally/internal/platform/timebucket"
)

func newSessionCmd(opts *rootOptions) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Session lifecycle"}

	var location string
	start := &cobra.Command{
		Use:   "start <activity-id>",
		Short: "Start timing an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Start(cmd.Context(), args[0], location)
				if err != nil {
					return err
				}
				printActive(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	start.Flags().StringVar(&location, "location", "", "where the session happens")

	transition := func(use, short string, run func(*cobra.Command, *bootstrap.App) (sessiondto.ActiveSessionOutput, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
					out, err := run(cmd, app)
					if err != nil {
						return err
					}
					printActive(cmd.OutOrStdout(), out)
					return nil
				})
			},
		}
	}
	pause := transition("pause", "Pause the active session", func(cmd *cobra.Command, app *bootstrap.App) (sessiondto.ActiveSessionOutput, error) {
		return app.SessionCLI.Pause(cmd.Context())
	})
	resume := transition("resume", "Resume a paused session", func(cmd *cobra.Command, app *bootstrap.App) (sessiondto.ActiveSessionOutput, error) {
		return app.SessionCLI.Resume(cmd.Context())
	})
	end := transition("end", "Stop timing; the session waits for save or discard", func(cmd *cobra.Command, app *bootstrap.App) (sessiondto.ActiveSessionOutput, error) {
		return app.SessionCLI.End(cmd.Context())
	})
	status := transition("status", "Show the active session", func(cmd *cobra.Command, app *bootstrap.App) (sessiondto.ActiveSessionOutput, error) {
		return app.SessionCLI.GetActive(cmd.Context())
	})

	discard := &cobra.Command{
		Use:   "discard",
		Short: "Drop an ended session without saving it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				if err := app.SessionCLI.Discard(cmd.Context()); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session discarded (reflection draft kept)")
				return nil
			})
		},
	}

	var mood int
	var notes, achievements, challenges string
	var photos []string
	save := &cobra.Command{
		Use:   "save",
		Short: "Save the ended session with its reflection and photos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var moodPtr *int
			if cmd.Flags().Changed("mood") {
				moodPtr = &mood
			}
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Save(cmd.Context(), moodPtr, notes, achievements, challenges, photos)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session saved: %s photos=%d\n", out.SessionID, out.PhotosStored)
				if out.PhotosFailed {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: some photos were not stored")
				}
				if out.ReflectionFailed {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: reflection was not stored; the session itself is saved")
				}
				for _, w := range out.Warnings {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", w)
				}
				return nil
			})
		},
	}
	save.Flags().IntVar(&mood, "mood", 0, "mood from 1 to 5")
	save.Flags().StringVar(&notes, "notes", "", "notes")
	save.Flags().StringVar(&achievements, "achievements", "", "what went well")
	save.Flags().StringVar(&challenges, "challenges", "", "what got in the way")
	save.Flags().StringSliceVar(&photos, "photo", nil, "photo file to attach (repeatable)")

	draft := &cobra.Command{
		Use:   "draft [<field> <value>]",
		Short: "Show the reflection draft, or set one field (mood|notes|achievements|challenges)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <field> <value>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				if len(args) == 2 {
					if err := app.SessionCLI.SetDraftField(cmd.Context(), args[0], args[1]); err != nil {
						return err
					}
				}
				out, err := app.SessionCLI.GetDraft(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(w, "draft: %s\n", out.DraftKey)
				if !out.Found {
					_, _ = fmt.Fprintln(w, "  (empty)")
					return nil
				}
				_, _ = fmt.Fprintf(w, "  mood: %s\n  notes: %s\n  achievements: %s\n  challenges: %s\n", dash(out.Mood), dash(out.Notes), dash(out.Achievements), dash(out.Challenges))
				return nil
			})
		},
	}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(app *bootstrap.App) error {
				input := sessiondto.ListInput{}
				var err error
				if input.From, err = parseDayFlag(from, app.Config.Timezone); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
				if input.To, err = parseDayFlag(to, app.Config.Timezone); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
				if !input.To.IsZero() {
					input.To = timebucket.AddDays(input.To, 1)
				}
				sessions, err := app.SessionCLI.List(cmd.Context(), input)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range sessions {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", s.ID, s.StartTime.In(app.Config.Timezone).Format("2006-01-02 15:04"), s.ActivityName, durationfmt.Format(s.DurationSeconds))
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	list.Flags().StringVar(&to, "to", "", "last day, inclusive (YYYY-MM-DD)")

	session.AddCommand(start, pause, resume, end, status, discard, save, draft, list)
	return session
}

func printActive(w io.Writer, out sessiondto.ActiveSessionOutput) {
	target := "no target"
	if out.TargetMinutes != nil {
		target = fmt.Sprintf("target %s", durationfmt.Format(int64(*out.TargetMinutes)*60))
	}
	_, _ = fmt.Fprintf(w, "%s: %s  %s  (%s)\n", out.Status, out.ActivityName, durationfmt.FormatClock(out.ElapsedSeconds), target)
	if out.PausedSeconds > 0 {
		_, _ = fmt.Fprintf(w, "  paused %s so far\n", durationfmt.Format(out.PausedSeconds))
	}
}

func parseDayFlag(value string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return timebucket.ParseDateKey(strings.TrimSpace(value), loc)
}
