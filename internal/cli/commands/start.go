package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timmy/reviewdash/internal/domain"
)

// NewStartCommand creates the start command.
func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a generation job",
		Long: `Start a generation job on the generation service.

Settings default to the configured defaults (750,000 reviews in files of 50,000).
The command returns once the service acknowledges the request; use "genctl watch"
to follow the job.`,
		Example: `  # Start with the configured defaults
  genctl start

  # Small run
  genctl start --total-reviews 1000 --chunk-size 100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			settings := cc.Cfg.Defaults.Settings()
			if f := cmd.Flags().Lookup("total-reviews"); f.Changed {
				settings.TotalReviews, _ = cmd.Flags().GetInt("total-reviews")
			}
			if f := cmd.Flags().Lookup("chunk-size"); f.Changed {
				settings.ChunkSize, _ = cmd.Flags().GetInt("chunk-size")
			}
			if err := settings.Validate(); err != nil {
				return err
			}

			msg, err := cc.Gateway.StartJob(cmd.Context(), settings)
			if err != nil {
				return userError(err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().Int("total-reviews", domain.DefaultTotalReviews, "Number of reviews to generate")
	cmd.Flags().Int("chunk-size", domain.DefaultChunkSize, "Reviews per output file")
	return cmd
}
