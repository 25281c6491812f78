package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/edgee-cloud/amazon-s3-component/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile      string
	profileName  string
	awsProfile   string
	accessKey    string
	secretKey    string
	sessionToken string
	region       string
	bucket       string
	keyPrefix    string
	endpoint     string
	jsonOutput   bool
	quiet        bool
)

var rootCmd = &cobra.Command{
	Use:     "s3component-cli",
	Version: version,
	Short:   "Sign analytics events as Amazon S3 uploads",
	Long: `s3component-cli - sign analytics events as Amazon S3 PUT requests

Events are signed locally unless an endpoint is configured, in which case a
running s3component server signs them.

Destination settings are resolved in this order, later sources winning:
  1. profile from the config file (--profile, S3COMPONENT_PROFILE)
  2. AWS shared configuration (--aws-profile)
  3. environment (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_SESSION_TOKEN,
     AWS_REGION, S3COMPONENT_BUCKET, S3COMPONENT_KEY_PREFIX, S3COMPONENT_ENDPOINT)
  4. flags`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.s3component/config.yaml, env: S3COMPONENT_CONFIG)")
	flags.StringVarP(&profileName, "profile", "p", "", "profile name (env: S3COMPONENT_PROFILE)")
	flags.StringVar(&awsProfile, "aws-profile", "", "load credentials and region from an AWS shared-config profile")
	flags.StringVarP(&accessKey, "access-key", "a", "", "AWS access key")
	flags.StringVarP(&secretKey, "secret-key", "k", "", "AWS secret key")
	flags.StringVar(&sessionToken, "session-token", "", "AWS session token")
	flags.StringVarP(&region, "region", "r", "", "AWS region")
	flags.StringVarP(&bucket, "bucket", "b", "", "S3 bucket")
	flags.StringVar(&keyPrefix, "key-prefix", "", "object key prefix")
	flags.StringVarP(&endpoint, "endpoint", "e", "", "signing service URL; sign locally when empty")
	flags.BoolVar(&jsonOutput, "json", false, "output as JSON")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// errReported marks a failure whose details were already printed.
var errReported = errors.New("reported")

// getConfigPath returns the config file path from flag, env, or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if envPath := clientcli.ConfigPathFromEnv(); envPath != "" {
		return envPath
	}
	return clientcli.DefaultConfigPath()
}

// loadProfile returns the selected profile, or nil when no config file
// exists and no profile was explicitly requested.
func loadProfile() (*clientcli.Profile, error) {
	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}
	explicit := cfgFile != "" || name != ""

	configPath := getConfigPath()
	if configPath == "" {
		return nil, nil
	}

	fileCfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	p, err := fileCfg.GetProfile(name)
	if err != nil {
		if !explicit && errors.Is(err, clientcli.ErrNoProfiles) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

// buildConfig merges profile, AWS chain, env vars, and flags (flags take precedence).
func buildConfig(ctx context.Context) (*clientcli.Config, error) {
	var configs []*clientcli.Config

	p, err := loadProfile()
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	configs = append(configs, clientcli.ConfigFromProfile(p))

	sharedProfile := awsProfile
	if sharedProfile == "" && p != nil {
		sharedProfile = p.AWSProfile
	}
	if sharedProfile != "" {
		awsCfg, awsErr := clientcli.ConfigFromAWS(ctx, sharedProfile)
		if awsErr != nil {
			return nil, awsErr
		}
		configs = append(configs, awsCfg)
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{
			AccessKey:    accessKey,
			SecretKey:    secretKey,
			SessionToken: sessionToken,
			Region:       region,
			Bucket:       bucket,
			KeyPrefix:    keyPrefix,
			Endpoint:     endpoint,
		},
	)

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}
