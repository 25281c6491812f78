package clientcli

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
)

// ConfigFromAWS resolves destination credentials and region through the
// standard AWS chain: environment, shared config and credentials files, SSO
// and instance roles. A non-empty profile selects a named shared-config
// profile.
//
// Bucket and key prefix have no AWS equivalent and are left empty.
func ConfigFromAWS(ctx context.Context, profile string, optFns ...func(*config.LoadOptions) error) (*Config, error) {
	if profile != "" {
		optFns = append(optFns, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if awsCfg.Credentials == nil {
		return nil, ErrNoCredentials
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve aws credentials: %w: %w", ErrNoCredentials, err)
	}

	return &Config{
		AccessKey:    creds.AccessKeyID,
		SecretKey:    creds.SecretAccessKey,
		SessionToken: creds.SessionToken,
		Region:       awsCfg.Region,
	}, nil
}
