package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [names...]",
		Short: "Remove fingerprint records so targets rebuild next time",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			destroy, _ := cmd.Flags().GetBool("destroy")
			purge, _ := cmd.Flags().GetBool("purge")
			return c.app.Clean(cmd.Context(), args, destroy, purge)
		},
	}
	cmd.Flags().Bool("destroy", false, "Also delete the cached values of removed records")
	cmd.Flags().Bool("purge", false, "Delete cached values no surviving record references")
	return cmd
}
