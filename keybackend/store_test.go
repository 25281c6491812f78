package keybackend_test

import (
	"testing"

	"github.com/edgee-cloud/amazon-s3-component/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecretStore_Sources(t *testing.T) {
	t.Parallel()

	path := writeTestFile(t, "keys.json", `[
		{"access_key": "FILE_KEY", "secret_key": "file_secret"},
		{"access_key": "SHARED", "secret_key": "file_wins"}
	]`)

	cfg := keybackend.KeysConfig{
		Inline: []keybackend.KeyPair{
			{AccessKey: "INLINE_KEY", SecretKey: "inline_secret"},
			{AccessKey: "SHARED", SecretKey: "inline_loses"},
			{AccessKey: "DEST_KEY", SecretKey: "inline_over_destination"},
			{AccessKey: "", SecretKey: "skipped"},
		},
		File: path,
	}
	destinations := []map[string]string{
		{"aws_access_key": "DEST_KEY", "aws_secret_key": "dest_secret"},
		{"aws_access_key": "OTHER_DEST", "aws_secret_key": "other_secret"},
		{"aws_access_key": "INCOMPLETE"},
	}

	store, err := keybackend.NewSecretStore(cfg, destinations...)
	require.NoError(t, err)

	want := map[string]string{
		"FILE_KEY":   "file_secret",
		"SHARED":     "file_wins",
		"INLINE_KEY": "inline_secret",
		"DEST_KEY":   "inline_over_destination",
		"OTHER_DEST": "other_secret",
	}
	assert.Equal(t, len(want), store.Len())
	for ak, sk := range want {
		got, err := store.Lookup(ak)
		require.NoError(t, err, ak)
		assert.Equal(t, sk, got, ak)
	}

	_, err = store.Lookup("INCOMPLETE")
	require.ErrorIs(t, err, keybackend.ErrKeyNotFound)
}

func TestNewSecretStore_EmptyConfig(t *testing.T) {
	t.Parallel()

	store, err := keybackend.NewSecretStore(keybackend.KeysConfig{})
	require.NoError(t, err)

	assert.Zero(t, store.Len())
	_, err = store.Lookup("ANY_KEY")
	assert.Error(t, err)
}

func TestNewSecretStore_FileErrors(t *testing.T) {
	t.Parallel()

	_, err := keybackend.NewSecretStore(keybackend.KeysConfig{File: "/nonexistent/keys.json"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read keys file")

	_, err = keybackend.NewSecretStore(keybackend.KeysConfig{File: writeTestFile(t, "keys.json", "not json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse keys file")
}
