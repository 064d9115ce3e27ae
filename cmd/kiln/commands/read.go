package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <name>",
		Short: "Print the stored value of a built node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := c.app.Read(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(value)
			return err
		},
	}
}
