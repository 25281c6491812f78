package clientcli_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	"github.com/edgee-cloud/amazon-s3-component/clientcli"
	s3http "github.com/edgee-cloud/amazon-s3-component/http"
	"github.com/edgee-cloud/amazon-s3-component/keybackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func destinationConfig(endpoint string) *clientcli.Config {
	return &clientcli.Config{
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "destination-secret",
		Region:    "eu-west-1",
		Bucket:    "events",
		KeyPrefix: "raw/",
		Endpoint:  endpoint,
	}
}

func trackEvent() s3component.Event {
	return s3component.Event{
		UUID:      "6f1c2a7e-0000-4000-8000-000000000001",
		Timestamp: 1715953512,
		EventType: s3component.KindTrack,
		Data: s3component.EventData{
			Track: &s3component.TrackData{
				Name:       "purchase",
				Properties: s3component.Dict{{"currency", "USD"}},
			},
		},
	}
}

type destinationMap map[string]s3component.Dict

func (d destinationMap) Destination(name string) (s3component.Dict, bool) {
	settings, ok := d[name]
	return settings, ok
}

// newSigningServer runs the real API handler. API calls are authenticated
// with AKIAAPI/api-secret in us-east-1.
func newSigningServer(t *testing.T) *httptest.Server {
	t.Helper()

	destSecrets := keybackend.NewMapSecretStore(map[string]string{"AKIDEXAMPLE": "destination-secret"})
	apiSecrets := keybackend.NewMapSecretStore(map[string]string{"AKIAAPI": "api-secret"})

	handler := s3http.NewHandler(&s3http.HandlerConfig{
		Destinations: destinationMap{
			"warehouse": destinationConfig("").Dict(),
		},
		Verifier:    s3component.NewSignatureVerifier("eu-west-1", destSecrets),
		APIVerifier: s3component.NewSignatureVerifier(clientcli.DefaultAPIRegion, apiSecrets),
		MaxBodySize: 1 << 20,
	}, s3component.NewComponent())

	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server
}

func withAPIKeys(cfg *clientcli.Config) *clientcli.Config {
	cfg.APIAccessKey = "AKIAAPI"
	cfg.APISecretKey = "api-secret"
	return cfg
}

func TestNew(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := clientcli.New(destinationConfig("http://localhost:5718"))
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("trailing slash removed", func(t *testing.T) {
		client, err := clientcli.New(destinationConfig("http://localhost:5718/"))
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := clientcli.New(nil)
		assert.ErrorIs(t, err, clientcli.ErrConfigRequired)
	})

	t.Run("missing endpoint", func(t *testing.T) {
		_, err := clientcli.New(destinationConfig(""))
		assert.ErrorIs(t, err, clientcli.ErrEndpointRequired)
	})

	t.Run("endpoint without host", func(t *testing.T) {
		_, err := clientcli.New(destinationConfig("localhost"))
		assert.Error(t, err)
	})
}

func TestClient_Sign(t *testing.T) {
	server := newSigningServer(t)

	client, err := clientcli.New(withAPIKeys(destinationConfig(server.URL)))
	require.NoError(t, err)

	req, err := client.Sign(context.Background(), s3component.KindTrack, trackEvent())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, req.Method)
	assert.True(t, strings.HasPrefix(req.URL, "https://events.s3.eu-west-1.amazonaws.com/raw/"), req.URL)
	assert.True(t, req.Headers.Has(s3component.HeaderAuthorization))
	assert.False(t, req.ForwardClientHeaders)

	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "track", body["event_type"])

	require.NoError(t, client.Verify(context.Background(), req))
}

func TestClient_SignDestination(t *testing.T) {
	server := newSigningServer(t)

	cfg := withAPIKeys(&clientcli.Config{Endpoint: server.URL})
	client, err := clientcli.New(cfg)
	require.NoError(t, err)

	t.Run("known destination", func(t *testing.T) {
		req, err := client.SignDestination(context.Background(), "warehouse", s3component.KindTrack, trackEvent())
		require.NoError(t, err)
		assert.Contains(t, req.URL, "events.s3.eu-west-1.amazonaws.com")
	})

	t.Run("unknown destination", func(t *testing.T) {
		_, err := client.SignDestination(context.Background(), "missing", s3component.KindTrack, trackEvent())
		require.Error(t, err)
		assert.True(t, errors.Is(err, clientcli.ErrNotFound))
	})
}

func TestClient_APIAuth(t *testing.T) {
	server := newSigningServer(t)

	t.Run("unsigned call rejected", func(t *testing.T) {
		client, err := clientcli.New(destinationConfig(server.URL))
		require.NoError(t, err)

		_, err = client.Sign(context.Background(), s3component.KindTrack, trackEvent())
		require.Error(t, err)
		assert.True(t, errors.Is(err, clientcli.ErrForbidden))
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		cfg := withAPIKeys(destinationConfig(server.URL))
		cfg.APISecretKey = "wrong"
		client, err := clientcli.New(cfg)
		require.NoError(t, err)

		_, err = client.Sign(context.Background(), s3component.KindTrack, trackEvent())
		assert.True(t, errors.Is(err, clientcli.ErrForbidden))
	})

	t.Run("half configured credentials", func(t *testing.T) {
		cfg := destinationConfig(server.URL)
		cfg.APIAccessKey = "AKIAAPI"
		client, err := clientcli.New(cfg)
		require.NoError(t, err)

		_, err = client.Sign(context.Background(), s3component.KindTrack, trackEvent())
		assert.ErrorIs(t, err, clientcli.ErrSecretKeyRequired)
	})
}

func TestClient_SignMissingSettings(t *testing.T) {
	server := newSigningServer(t)

	cfg := withAPIKeys(destinationConfig(server.URL))
	cfg.Bucket = ""
	client, err := clientcli.New(cfg)
	require.NoError(t, err)

	_, err = client.Sign(context.Background(), s3component.KindTrack, trackEvent())
	require.Error(t, err)

	var apiErr *clientcli.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.True(t, apiErr.IsMissingField())
	assert.Equal(t, "Missing S3 bucket", apiErr.Message)
}

func TestClient_VerifyTampered(t *testing.T) {
	server := newSigningServer(t)

	client, err := clientcli.New(withAPIKeys(destinationConfig(server.URL)))
	require.NoError(t, err)

	req, err := client.Sign(context.Background(), s3component.KindTrack, trackEvent())
	require.NoError(t, err)

	req.Body = append(req.Body, ' ')
	err = client.Verify(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, clientcli.ErrForbidden))
}

func TestAPIError(t *testing.T) {
	t.Run("structured body", func(t *testing.T) {
		err := &clientcli.APIError{StatusCode: 404, Code: "not_found", Message: "destination not found: x"}
		assert.Equal(t, "server error: 404 not_found: destination not found: x", err.Error())
		assert.True(t, errors.Is(err, clientcli.ErrNotFound))
		assert.False(t, errors.Is(err, clientcli.ErrForbidden))
	})

	t.Run("raw body", func(t *testing.T) {
		err := &clientcli.APIError{StatusCode: 502, Body: "bad gateway"}
		assert.Equal(t, "server error: 502 - bad gateway", err.Error())
	})
}
