package clientcli_test

import (
	"os"
	"path/filepath"
	"testing"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	"github.com/edgee-cloud/amazon-s3-component/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Settings(t *testing.T) {
	t.Run("optional keys omitted when empty", func(t *testing.T) {
		cfg := &clientcli.Config{AccessKey: "ak", SecretKey: "sk", Region: "eu-west-1", Bucket: "b"}
		assert.Equal(t, map[string]string{
			"aws_access_key": "ak",
			"aws_secret_key": "sk",
			"aws_region":     "eu-west-1",
			"s3_bucket":      "b",
		}, cfg.Settings())
	})

	t.Run("optional keys included when set", func(t *testing.T) {
		cfg := &clientcli.Config{
			AccessKey: "ak", SecretKey: "sk", Region: "eu-west-1", Bucket: "b",
			SessionToken: "tok", KeyPrefix: "raw/",
		}
		settings := cfg.Settings()
		assert.Equal(t, "tok", settings["aws_session_token"])
		assert.Equal(t, "raw/", settings["s3_key_prefix"])
	})

	t.Run("dict is sorted by key", func(t *testing.T) {
		cfg := &clientcli.Config{AccessKey: "ak", SecretKey: "sk", Region: "r", Bucket: "b", KeyPrefix: "p/"}
		assert.Equal(t, s3component.Dict{
			{"aws_access_key", "ak"},
			{"aws_region", "r"},
			{"aws_secret_key", "sk"},
			{"s3_bucket", "b"},
			{"s3_key_prefix", "p/"},
		}, cfg.Dict())
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		cfg := &clientcli.Config{AccessKey: "ak", SecretKey: "sk", Region: "r", Bucket: "b"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("first missing setting reported", func(t *testing.T) {
		cfg := &clientcli.Config{AccessKey: "ak", Bucket: "b"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, s3component.ErrMissingField)
		assert.Equal(t, "Missing AWS Secret Key", err.Error())
	})
}

func TestConfig_ValidateWithAuth(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := &clientcli.Config{APIAccessKey: "k", APISecretKey: "s"}
		assert.NoError(t, cfg.ValidateWithAuth())
	})

	t.Run("missing access key", func(t *testing.T) {
		cfg := &clientcli.Config{APISecretKey: "s"}
		assert.ErrorIs(t, cfg.ValidateWithAuth(), clientcli.ErrAccessKeyRequired)
	})

	t.Run("missing secret key", func(t *testing.T) {
		cfg := &clientcli.Config{APIAccessKey: "k"}
		assert.ErrorIs(t, cfg.ValidateWithAuth(), clientcli.ErrSecretKeyRequired)
	})
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := &clientcli.Config{Bucket: "b"}
	withDefaults := cfg.WithDefaults()

	assert.Equal(t, clientcli.DefaultAPIRegion, withDefaults.APIRegion)
	assert.Empty(t, cfg.APIRegion, "original must not be mutated")
}

func TestConfigFile_Profiles(t *testing.T) {
	newFile := func() *clientcli.ConfigFile {
		return &clientcli.ConfigFile{Profiles: []clientcli.Profile{
			{Name: "dev", Bucket: "dev-bucket"},
			{Name: "prod", Bucket: "prod-bucket", Default: true},
		}}
	}

	t.Run("get default", func(t *testing.T) {
		p, err := newFile().GetProfile("")
		require.NoError(t, err)
		assert.Equal(t, "prod", p.Name)
	})

	t.Run("first profile when none marked default", func(t *testing.T) {
		cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{Name: "a"}, {Name: "b"}}}
		p, err := cf.GetDefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, "a", p.Name)
	})

	t.Run("get by name", func(t *testing.T) {
		p, err := newFile().GetProfile("dev")
		require.NoError(t, err)
		assert.Equal(t, "dev-bucket", p.Bucket)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := newFile().GetProfile("staging")
		assert.ErrorIs(t, err, clientcli.ErrProfileNotFound)
	})

	t.Run("no profiles", func(t *testing.T) {
		_, err := (&clientcli.ConfigFile{}).GetProfile("")
		assert.ErrorIs(t, err, clientcli.ErrNoProfiles)
	})

	t.Run("add duplicate", func(t *testing.T) {
		err := newFile().AddProfile(clientcli.Profile{Name: "dev"})
		assert.ErrorIs(t, err, clientcli.ErrProfileExists)
	})

	t.Run("update", func(t *testing.T) {
		cf := newFile()
		require.NoError(t, cf.UpdateProfile(clientcli.Profile{Name: "dev", Bucket: "other"}))
		p, err := cf.GetProfile("dev")
		require.NoError(t, err)
		assert.Equal(t, "other", p.Bucket)

		assert.ErrorIs(t, cf.UpdateProfile(clientcli.Profile{Name: "nope"}), clientcli.ErrProfileNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		cf := newFile()
		require.NoError(t, cf.RemoveProfile("dev"))
		assert.Equal(t, []string{"prod"}, cf.ProfileNames())
		assert.ErrorIs(t, cf.RemoveProfile("dev"), clientcli.ErrProfileNotFound)
	})

	t.Run("set default", func(t *testing.T) {
		cf := newFile()
		require.NoError(t, cf.SetDefault("dev"))
		p, err := cf.GetDefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, "dev", p.Name)
		assert.False(t, cf.Profiles[1].Default)

		assert.ErrorIs(t, cf.SetDefault("nope"), clientcli.ErrProfileNotFound)
	})
}

func TestConfigFile_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cf := &clientcli.ConfigFile{Profiles: []clientcli.Profile{{
		Name:         "prod",
		AccessKey:    "AKIDEXAMPLE",
		SecretKey:    "secret",
		SessionToken: "token",
		Region:       "eu-west-1",
		Bucket:       "events",
		KeyPrefix:    "raw/",
		Default:      true,
	}}}
	require.NoError(t, cf.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := clientcli.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, cf, loaded)
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("valid config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `profiles:
  - name: analytics
    access_key: test-access
    secret_key: test-secret
    region: us-west-2
    bucket: analytics-events
    key_prefix: edgee/
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cf, err := clientcli.LoadConfigFile(path)
		require.NoError(t, err)

		p, err := cf.GetProfile("analytics")
		require.NoError(t, err)
		cfg := clientcli.ConfigFromProfile(p)
		assert.Equal(t, "test-access", cfg.AccessKey)
		assert.Equal(t, "us-west-2", cfg.Region)
		assert.Equal(t, "analytics-events", cfg.Bucket)
		assert.Equal(t, "edgee/", cfg.KeyPrefix)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := clientcli.LoadConfigFile("/nonexistent/path/config.yaml")
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`invalid: [yaml: content`), 0o600))

		_, err := clientcli.LoadConfigFile(path)
		assert.Error(t, err)
	})
}

func TestConfigFromProfile_Nil(t *testing.T) {
	assert.Equal(t, &clientcli.Config{}, clientcli.ConfigFromProfile(nil))
}

func TestMergeConfig(t *testing.T) {
	tests := []struct {
		name     string
		configs  []*clientcli.Config
		expected *clientcli.Config
	}{
		{
			name:     "empty configs",
			configs:  []*clientcli.Config{},
			expected: &clientcli.Config{},
		},
		{
			name: "later config overrides",
			configs: []*clientcli.Config{
				{AccessKey: "key1", SecretKey: "secret1", Bucket: "a"},
				{AccessKey: "key2", Bucket: "b"},
			},
			expected: &clientcli.Config{AccessKey: "key2", SecretKey: "secret1", Bucket: "b"},
		},
		{
			name: "empty strings do not override",
			configs: []*clientcli.Config{
				{AccessKey: "key1", Region: "eu-west-1", KeyPrefix: "raw/"},
				{},
			},
			expected: &clientcli.Config{AccessKey: "key1", Region: "eu-west-1", KeyPrefix: "raw/"},
		},
		{
			name: "nil config is skipped",
			configs: []*clientcli.Config{
				{Endpoint: "http://a.com"},
				nil,
				{APIAccessKey: "api", SessionToken: "tok"},
			},
			expected: &clientcli.Config{Endpoint: "http://a.com", APIAccessKey: "api", SessionToken: "tok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := clientcli.MergeConfig(tt.configs...)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "env-access-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "env-secret-key")
	t.Setenv("AWS_SESSION_TOKEN", "env-token")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "ap-south-1")
	t.Setenv("S3COMPONENT_BUCKET", "env-bucket")
	t.Setenv("S3COMPONENT_KEY_PREFIX", "env/")
	t.Setenv("S3COMPONENT_ENDPOINT", "http://signer:5718")
	t.Setenv("S3COMPONENT_PROFILE", "prod")
	t.Setenv("S3COMPONENT_CONFIG", "/tmp/s3component.yaml")

	cfg := clientcli.ConfigFromEnv()

	assert.Equal(t, "env-access-key", cfg.AccessKey)
	assert.Equal(t, "env-secret-key", cfg.SecretKey)
	assert.Equal(t, "env-token", cfg.SessionToken)
	assert.Equal(t, "ap-south-1", cfg.Region)
	assert.Equal(t, "env-bucket", cfg.Bucket)
	assert.Equal(t, "env/", cfg.KeyPrefix)
	assert.Equal(t, "http://signer:5718", cfg.Endpoint)
	assert.Equal(t, "prod", clientcli.ProfileFromEnv())
	assert.Equal(t, "/tmp/s3component.yaml", clientcli.ConfigPathFromEnv())

	t.Setenv("AWS_REGION", "eu-central-1")
	assert.Equal(t, "eu-central-1", clientcli.ConfigFromEnv().Region)
}
