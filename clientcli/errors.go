package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrAccessKeyRequired = errors.New("api access key is required")
	ErrSecretKeyRequired = errors.New("api secret key is required")
	ErrConfigRequired    = errors.New("config is required")
	ErrEndpointRequired  = errors.New("endpoint is required")
)

// ErrNoCredentials is returned when the AWS credential chain yields nothing usable.
var ErrNoCredentials = errors.New("no aws credentials found")
