package commands

import (
	"github.com/spf13/cobra"
)

// NewAspectsCommand creates the aspects command.
func NewAspectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "aspects",
		Short: "List the hotel aspects covered by the generator",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			catalog, err := cc.Gateway.FetchAspects(cmd.Context())
			if err != nil {
				return userError(err)
			}
			renderAspects(cmd.OutOrStdout(), catalog)
			return nil
		},
	}
}
