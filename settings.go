package s3component

import (
	"log/slog"
)

// Setting keys accepted by ParseSettings.
const (
	SettingAccessKey    = "aws_access_key"
	SettingSecretKey    = "aws_secret_key"
	SettingSessionToken = "aws_session_token"
	SettingRegion       = "aws_region"
	SettingBucket       = "s3_bucket"
	SettingKeyPrefix    = "s3_key_prefix"
)

// requiredSettings is checked in order; the first missing entry is reported.
var requiredSettings = []struct {
	key     string
	message string
}{
	{SettingAccessKey, "Missing AWS Access Key"},
	{SettingSecretKey, "Missing AWS Secret Key"},
	{SettingRegion, "Missing AWS region"},
	{SettingBucket, "Missing S3 bucket"},
}

// OptionalString holds a setting that may be absent. Valid is false when the
// key was not supplied at all, which is distinct from a supplied empty value.
type OptionalString struct {
	Value string
	Valid bool
}

// SomeString returns a present OptionalString.
func SomeString(v string) OptionalString {
	return OptionalString{Value: v, Valid: true}
}

// NonEmpty reports whether the value is present and not blank.
func (o OptionalString) NonEmpty() bool {
	return o.Valid && o.Value != ""
}

// String returns the value, or "" when absent.
func (o OptionalString) String() string {
	return o.Value
}

// SigningConfig is the validated, immutable configuration for one signed
// request. AccessKey, SecretKey, Region and Bucket are always non-empty.
type SigningConfig struct {
	AccessKey    string
	SecretKey    string
	SessionToken OptionalString
	Region       string
	Bucket       string
	KeyPrefix    OptionalString
}

// ParseSettings resolves a flat settings map into a SigningConfig.
//
// Required keys are checked in the order aws_access_key, aws_secret_key,
// aws_region, s3_bucket; the first one that is absent or empty yields a
// *MissingFieldError. aws_session_token and s3_key_prefix are optional.
// Values are not otherwise validated: the storage service rejects malformed
// credentials itself.
func ParseSettings(settings map[string]string) (SigningConfig, error) {
	for _, req := range requiredSettings {
		if settings[req.key] == "" {
			return SigningConfig{}, &MissingFieldError{Field: req.key, Message: req.message}
		}
	}

	return SigningConfig{
		AccessKey:    settings[SettingAccessKey],
		SecretKey:    settings[SettingSecretKey],
		SessionToken: lookupOptional(settings, SettingSessionToken),
		Region:       settings[SettingRegion],
		Bucket:       settings[SettingBucket],
		KeyPrefix:    lookupOptional(settings, SettingKeyPrefix),
	}, nil
}

func lookupOptional(settings map[string]string, key string) OptionalString {
	v, ok := settings[key]
	return OptionalString{Value: v, Valid: ok}
}

// Host returns the virtual-hosted-style endpoint of the bucket.
func (c SigningConfig) Host() string {
	return c.Bucket + ".s3." + c.Region + ".amazonaws.com"
}

// ObjectURL returns the full URL for key. The key prefix is prepended
// verbatim; callers include a trailing "/" in the prefix if they want one.
func (c SigningConfig) ObjectURL(key string) string {
	return "https://" + c.Host() + "/" + c.KeyPrefix.Value + key
}

// LogValue implements slog.LogValuer. Secret material is never emitted.
func (c SigningConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("access_key", c.AccessKey),
		slog.String("region", c.Region),
		slog.String("bucket", c.Bucket),
		slog.String("key_prefix", c.KeyPrefix.Value),
		slog.Bool("session_token", c.SessionToken.NonEmpty()),
	)
}
