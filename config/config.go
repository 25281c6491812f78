package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	s3http "github.com/edgee-cloud/amazon-s3-component/http"
	"github.com/edgee-cloud/amazon-s3-component/keybackend"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "S3COMPONENT"

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for the signing service.
type Config struct {
	Server        ServerConfig                 `mapstructure:"server"`
	Destinations  map[string]map[string]string `mapstructure:"destinations"`
	Auth          AuthConfig                   `mapstructure:"auth"`
	CORS          s3http.CORSConfig            `mapstructure:"cors"`
	Serialization SerializationConfig          `mapstructure:"serialization"`
	Log           LogConfig                    `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int   `mapstructure:"port" validate:"required,min=1,max=65535"`
	MaxBodySize     int64 `mapstructure:"max_body_size" validate:"min=0"`
	ShutdownTimeout int   `mapstructure:"shutdown_timeout" validate:"min=1"`
}

// AuthConfig holds signature verification configuration.
type AuthConfig struct {
	Region string `mapstructure:"region" validate:"required"`
	// Verify enables POST /v1/verify.
	Verify bool `mapstructure:"verify"`
	// Required makes the signing routes demand a signed request.
	Required bool                  `mapstructure:"required"`
	Keys     keybackend.KeysConfig `mapstructure:"keys"`
}

// SerializationConfig controls event encoding failures.
type SerializationConfig struct {
	Strict bool `mapstructure:"strict"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// Destination returns the settings of the named destination, sorted by key.
// Names are case-insensitive.
func (c *Config) Destination(name string) (s3component.Dict, bool) {
	settings, ok := c.Destinations[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return toDict(settings), true
}

// DestinationNames returns the configured destination names in order.
func (c *Config) DestinationNames() []string {
	names := make([]string, 0, len(c.Destinations))
	for name := range c.Destinations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DestinationSettings returns the raw settings of every destination, in
// DestinationNames order.
func (c *Config) DestinationSettings() []map[string]string {
	out := make([]map[string]string, 0, len(c.Destinations))
	for _, name := range c.DestinationNames() {
		out = append(out, c.Destinations[name])
	}
	return out
}

func toDict(settings map[string]string) s3component.Dict {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := make(s3component.Dict, 0, len(keys))
	for _, k := range keys {
		d = append(d, [2]string{k, settings[k]})
	}
	return d
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":          "server.port",
	"max-body-size": "server.max_body_size",
	"region":        "auth.region",
	"strict":        "serialization.strict",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5718)
	v.SetDefault("server.max_body_size", 1<<20)
	v.SetDefault("server.shutdown_timeout", 30) // seconds

	v.SetDefault("auth.region", "us-east-1")
	v.SetDefault("auth.verify", true)
	v.SetDefault("auth.required", false)

	v.SetDefault("serialization.strict", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
//
// Every destination must carry the settings required to sign a request.
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	for _, name := range cfg.DestinationNames() {
		if _, err := s3component.ParseSettings(cfg.Destinations[name]); err != nil {
			return nil, fmt.Errorf("validate config: destination %q: %w", name, err)
		}
	}

	return &cfg, nil
}
