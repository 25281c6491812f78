package clientcli

import (
	"fmt"
	"os"
	"path/filepath"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	"gopkg.in/yaml.v3"
)

// DefaultAPIRegion is the region API requests are signed for when none is
// configured. It matches the server's auth.region default.
const DefaultAPIRegion = "us-east-1"

// Profile holds configuration for a single destination.
type Profile struct {
	Name         string `yaml:"name"`
	AccessKey    string `yaml:"access_key,omitempty"`
	SecretKey    string `yaml:"secret_key,omitempty"`
	SessionToken string `yaml:"session_token,omitempty"`
	Region       string `yaml:"region,omitempty"`
	Bucket       string `yaml:"bucket,omitempty"`
	KeyPrefix    string `yaml:"key_prefix,omitempty"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	AWSProfile   string `yaml:"aws_profile,omitempty"`
	Default      bool   `yaml:"default,omitempty"`
}

// ConfigFile holds the full config file structure with multiple profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// GetProfile returns the profile by name.
// If name is empty, returns the default profile.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		return c.GetDefaultProfile()
	}

	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetDefaultProfile returns the default profile.
// If no profile is marked as default, returns the first profile.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	for i := range c.Profiles {
		if c.Profiles[i].Default {
			return &c.Profiles[i], nil
		}
	}

	return &c.Profiles[0], nil
}

// AddProfile adds a new profile. Returns ErrProfileExists if a profile
// with the same name already exists.
func (c *ConfigFile) AddProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
		}
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces an existing profile.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
}

// RemoveProfile removes a profile by name.
func (c *ConfigFile) RemoveProfile(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// SetDefault marks name as the default profile and clears the flag on all
// others.
func (c *ConfigFile) SetDefault(name string) error {
	found := false
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles[i].Default = true
			found = true
		} else {
			c.Profiles[i].Default = false
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}

// ProfileNames returns a list of all profile names.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, len(c.Profiles))
	for i := range c.Profiles {
		names[i] = c.Profiles[i].Name
	}
	return names
}

// Save writes the config to path, creating the parent directory if needed.
// The file holds secret keys and is written with 0600 permissions.
func (c *ConfigFile) Save(path string) error {
	cleanPath := filepath.Clean(path)

	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// LoadConfigFile loads the config file from the specified path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigPath returns the default config file path (~/.s3component/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".s3component", "config.yaml")
}

// Config holds the resolved settings for one destination after profile,
// environment and flag merging.
//
// Endpoint is the base URL of a running signing service. When it is empty
// requests are signed locally. APIAccessKey and APISecretKey authenticate
// against that service and are unrelated to the destination credentials.
type Config struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	Bucket       string
	KeyPrefix    string

	Endpoint     string
	APIAccessKey string
	APISecretKey string
	APIRegion    string
}

// Settings renders the destination part of the config as component
// settings. Optional keys are omitted when empty.
func (c *Config) Settings() map[string]string {
	settings := map[string]string{
		s3component.SettingAccessKey: c.AccessKey,
		s3component.SettingSecretKey: c.SecretKey,
		s3component.SettingRegion:    c.Region,
		s3component.SettingBucket:    c.Bucket,
	}
	if c.SessionToken != "" {
		settings[s3component.SettingSessionToken] = c.SessionToken
	}
	if c.KeyPrefix != "" {
		settings[s3component.SettingKeyPrefix] = c.KeyPrefix
	}
	return settings
}

// Dict is Settings in the ordered form the component consumes. Keys follow
// a fixed order so the output is stable.
func (c *Config) Dict() s3component.Dict {
	settings := c.Settings()
	dict := make(s3component.Dict, 0, len(settings))
	for _, key := range []string{
		s3component.SettingAccessKey,
		s3component.SettingRegion,
		s3component.SettingSecretKey,
		s3component.SettingSessionToken,
		s3component.SettingBucket,
		s3component.SettingKeyPrefix,
	} {
		if v, ok := settings[key]; ok {
			dict = append(dict, [2]string{key, v})
		}
	}
	return dict
}

// Validate reports the first missing destination setting.
func (c *Config) Validate() error {
	_, err := s3component.ParseSettings(c.Settings())
	return err
}

// ValidateWithAuth additionally checks the API credentials needed to call a
// remote signing service.
func (c *Config) ValidateWithAuth() error {
	if c.APIAccessKey == "" {
		return ErrAccessKeyRequired
	}
	if c.APISecretKey == "" {
		return ErrSecretKeyRequired
	}
	return nil
}

// WithDefaults returns a copy of the config with default values applied.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.APIRegion == "" {
		cfg.APIRegion = DefaultAPIRegion
	}
	return &cfg
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		AccessKey:    p.AccessKey,
		SecretKey:    p.SecretKey,
		SessionToken: p.SessionToken,
		Region:       p.Region,
		Bucket:       p.Bucket,
		KeyPrefix:    p.KeyPrefix,
		Endpoint:     p.Endpoint,
	}
}

// ConfigFromEnv loads config from environment variables. Destination
// credentials use the standard AWS variable names.
func ConfigFromEnv() *Config {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	return &Config{
		AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken: os.Getenv("AWS_SESSION_TOKEN"),
		Region:       region,
		Bucket:       os.Getenv("S3COMPONENT_BUCKET"),
		KeyPrefix:    os.Getenv("S3COMPONENT_KEY_PREFIX"),
		Endpoint:     os.Getenv("S3COMPONENT_ENDPOINT"),
		APIAccessKey: os.Getenv("S3COMPONENT_API_ACCESS_KEY"),
		APISecretKey: os.Getenv("S3COMPONENT_API_SECRET_KEY"),
		APIRegion:    os.Getenv("S3COMPONENT_API_REGION"),
	}
}

// ProfileFromEnv returns the profile name from S3COMPONENT_PROFILE.
func ProfileFromEnv() string {
	return os.Getenv("S3COMPONENT_PROFILE")
}

// ConfigPathFromEnv returns the config file path from S3COMPONENT_CONFIG.
func ConfigPathFromEnv() string {
	return os.Getenv("S3COMPONENT_CONFIG")
}

// MergeConfig merges multiple configs, with later configs taking precedence.
// Empty strings in later configs do not override non-empty values in earlier configs.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		mergeString(&result.AccessKey, cfg.AccessKey)
		mergeString(&result.SecretKey, cfg.SecretKey)
		mergeString(&result.SessionToken, cfg.SessionToken)
		mergeString(&result.Region, cfg.Region)
		mergeString(&result.Bucket, cfg.Bucket)
		mergeString(&result.KeyPrefix, cfg.KeyPrefix)
		mergeString(&result.Endpoint, cfg.Endpoint)
		mergeString(&result.APIAccessKey, cfg.APIAccessKey)
		mergeString(&result.APISecretKey, cfg.APISecretKey)
		mergeString(&result.APIRegion, cfg.APIRegion)
	}
	return result
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
