// Package cmd assembles the hikelog command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"hikelog/cmd/add"
	"hikelog/cmd/list"
	"hikelog/cmd/observations"
	"hikelog/cmd/reset"
	"hikelog/cmd/watch"
	"hikelog/internal/app"
	"hikelog/internal/buildinfo"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *app.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hikelog",
		Short:         "Personal log of hiking trips and field observations",
		Version:       buildinfo.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Set up the global flags for the root command.
	rootCmd.PersistentFlags().BoolVar(&ctx.Settings.Debug, "debug", ctx.Settings.Debug, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&ctx.Settings.Output.SQLite.Path, "db", ctx.Settings.Output.SQLite.Path, "Path to the SQLite database file")

	subcommands := []*cobra.Command{
		add.Command(ctx),
		list.Command(ctx),
		observations.Command(ctx),
		reset.Command(ctx),
		watch.Command(ctx),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.Initialize()
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return ctx.Shutdown()
	}

	return rootCmd
}
