// Package cli provides the genctl command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timmy/reviewdash/internal/cli/commands"
	"github.com/timmy/reviewdash/internal/config"
	"github.com/timmy/reviewdash/internal/logger"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:   "genctl",
		Short: "genctl - control the hotel review dataset generator",
		Long: `genctl talks to the hotel review dataset generation service.

It starts generation jobs, follows their progress and fetches samples,
the aspect catalog and test batches from the terminal.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "version" {
				return nil
			}

			level := "error"
			if verbose {
				level = "debug"
			}
			logger.SetDefaultLogger(logger.New(&logger.Config{
				Level:       level,
				Format:      "text",
				Output:      cmd.ErrOrStderr(),
				ServiceName: "genctl",
			}))

			// cmd.Flags() carries the inherited persistent flags as well as the command's own
			cfg, err := config.LoadWithFlags(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SetContext(commands.WithConfig(cmd.Context(), cfg))

			if verbose {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using generation service: %s\n", cfg.Generator.BaseURL)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("base-url", "", "Generation service base URL")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout (0 for none)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))
	rootCmd.AddCommand(commands.NewStatusCommand())
	rootCmd.AddCommand(commands.NewStartCommand())
	rootCmd.AddCommand(commands.NewSampleCommand())
	rootCmd.AddCommand(commands.NewAspectsCommand())
	rootCmd.AddCommand(commands.NewTestBatchCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
