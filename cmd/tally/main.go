package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"tally/internal/bootstrap"
	"tally/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	home  string
	tz    string
	debug bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "tally",
		Short:         "Track focused time per activity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.home, "home", config.DefaultHome(), "data directory")
	root.PersistentFlags().StringVar(&opts.tz, "tz", "", "IANA timezone for day boundaries (default from config or Local)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write debug logs under <home>/logs")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newActivityCmd(opts))
	root.AddCommand(newGoalCmd(opts))
	root.AddCommand(newSessionCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	return root
}

// withApp wires the application for one command and tears it down after.
func withApp(ctx context.Context, opts *rootOptions, fn func(*bootstrap.App) error) error {
	cfg, err := config.Load(opts.home, config.Overrides{Timezone: opts.tz, Debug: opts.debug})
	if err != nil {
		return err
	}
	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the live session screen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, bootstrap.RunTUI)
		},
	}
}
