package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/edgee-cloud/amazon-s3-component/config"
)

// withConfig returns a new context with the config stored.
func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return config.WithContext(ctx, cfg)
}

// configFromCommand retrieves the config loaded by the root command.
func configFromCommand(cmd *cobra.Command) (*config.Config, error) {
	return config.FromContext(cmd.Context())
}
