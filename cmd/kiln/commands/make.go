package commands

import (
	"fmt"

	"github.com/kilnbuild/kiln/internal/app"
	"github.com/kilnbuild/kiln/internal/core/domain"
	"github.com/spf13/cobra"
)

func (c *CLI) newMakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "make",
		Short: "Build all outdated targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if dryRun {
				waves, err := c.app.Waves(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(waves) == 0 {
					fmt.Fprintln(out, "Nothing to build.")
					return nil
				}
				for i, wave := range waves {
					fmt.Fprintf(out, "wave %d:", i+1)
					for _, name := range wave {
						fmt.Fprintf(out, " %s", name)
					}
					fmt.Fprintln(out)
				}
				return nil
			}

			jobs, _ := cmd.Flags().GetInt("jobs")
			keepGoing, _ := cmd.Flags().GetBool("keep-going")

			report, err := c.app.Make(cmd.Context(), app.MakeOptions{
				Jobs:      jobs,
				KeepGoing: keepGoing,
			})
			if report != nil {
				renderReport(cmd, report)
			}
			if err != nil {
				return err
			}
			if !report.OK() {
				return domain.ErrBuildFailed
			}
			return nil
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Maximum number of commands to run in parallel")
	cmd.Flags().BoolP("keep-going", "k", false, "Continue past failures where dependencies allow")
	cmd.Flags().BoolP("dry-run", "n", false, "Print the build waves without running anything")
	return cmd
}

func renderReport(cmd *cobra.Command, report *domain.Report) {
	out := cmd.OutOrStdout()
	for _, name := range report.Built {
		fmt.Fprintf(out, "built   %s\n", name)
	}
	for _, fail := range report.Failed {
		fmt.Fprintf(cmd.ErrOrStderr(), "failed  %s: %v\n", fail.Name, fail.Err)
	}
	fmt.Fprintf(out, "%d built, %d up to date, %d failed\n",
		len(report.Built), len(report.Skipped), len(report.Failed))
}
