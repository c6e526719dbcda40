package commands

import (
	"github.com/spf13/cobra"
	"github.com/timmy/reviewdash/internal/domain"
)

// NewSampleCommand creates the sample command.
func NewSampleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Generate and show one sample review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			review, err := cc.Gateway.FetchSample(cmd.Context())
			if err != nil {
				return userError(err)
			}
			renderReviews(cmd.OutOrStdout(), []domain.SampleReview{*review})
			return nil
		},
	}
}
