// Package commands holds the genctl subcommands.
package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/timmy/reviewdash/internal/config"
	"github.com/timmy/reviewdash/internal/gateway"
	"github.com/timmy/reviewdash/internal/generator"
)

// configKey is used to store config in context.
type configKey struct{}

// WithConfig returns a context carrying cfg for the subcommands.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey{}, cfg)
}

// CommandContext holds the shared resources a subcommand runs with.
type CommandContext struct {
	Cfg     *config.Config
	Client  *generator.Client
	Gateway *gateway.Gateway
}

// NewCommandContext builds the client and gateway from the config stored by the root
// command. A command run on its own loads the config from its flags.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		var err error
		if cfg, err = config.LoadWithFlags("", cmd.Flags()); err != nil {
			return nil, err
		}
	}

	client := generator.NewClient(&generator.ClientConfig{
		BaseURL: cfg.Generator.BaseURL,
		Timeout: cfg.Generator.Timeout,
	})

	return &CommandContext{
		Cfg:     cfg,
		Client:  client,
		Gateway: gateway.New(client, &gateway.Config{TestBatchSize: cfg.Actions.TestBatchSize}),
	}, nil
}

// userError reduces a failed action to the notice text an operator sees in the dashboard.
func userError(err error) error {
	var actionErr *gateway.ActionError
	if errors.As(err, &actionErr) {
		return errors.New(actionErr.Message)
	}
	return err
}
