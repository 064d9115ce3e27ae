// Package commands implements the CLI commands for the kiln build tool.
package commands

import (
	"context"
	"io"

	"github.com/kilnbuild/kiln/internal/adapters/config"
	"github.com/kilnbuild/kiln/internal/app"
	"github.com/kilnbuild/kiln/internal/build"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kiln",
		Short:         "An incremental build tool for command pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultFilename, "Plan file to load")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if name, err := cmd.Flags().GetString("config"); err == nil && name != config.DefaultFilename {
			a.UsePlanFile(name)
		}
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newMakeCmd())
	rootCmd.AddCommand(c.newOutdatedCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newReadCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOut redirects command output. Used for testing.
func (c *CLI) SetOut(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}
