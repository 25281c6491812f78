package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edgee-cloud/amazon-s3-component/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "s3component",
	Short:   "Sign analytics events as Amazon S3 PUT requests",
	Long: `s3component serves an HTTP API that turns analytics events into
AWS Signature V4 signed S3 PUT request descriptors. It never uploads
anything itself: callers execute the returned requests.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		env, _ := cmd.Flags().GetString("env")
		setupLogging(cfg.Log, env)

		cmd.SetContext(withConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("env", "", "environment: dev or prod (prod logs JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: S3COMPONENT_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json (env: S3COMPONENT_LOG_FORMAT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
