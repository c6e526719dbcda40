package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timmy/reviewdash/internal/domain"
	"github.com/timmy/reviewdash/internal/gateway"
)

// NewTestBatchCommand creates the test-batch command.
func NewTestBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-batch",
		Short: "Generate a small batch of reviews and show its sample",
		Example: `  # Batch of the configured size (100 by default)
  genctl test-batch

  # Custom size
  genctl test-batch --size 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			gw := cc.Gateway
			if f := cmd.Flags().Lookup("size"); f.Changed {
				size, _ := cmd.Flags().GetInt("size")
				if size <= 0 {
					return fmt.Errorf("size must be positive, got %d", size)
				}
				gw = gateway.New(cc.Client, &gateway.Config{TestBatchSize: size})
			}

			result, err := gw.FetchTestBatch(cmd.Context())
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, result.Message)
			_, _ = fmt.Fprintf(out, "File: %s\n", result.File)
			if len(result.Sample) > 0 {
				renderReviews(out, result.Sample)
			}
			return nil
		},
	}

	cmd.Flags().Int("size", domain.DefaultTestBatchSize, "Number of reviews in the batch")
	return cmd
}
