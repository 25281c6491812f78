package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	s3http "github.com/edgee-cloud/amazon-s3-component/http"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client calls a running signing service. It never talks to S3 itself: the
// descriptors it returns are executed by the caller.
type Client struct {
	config     *Config
	endpoint   *url.URL
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithClock overrides the clock used to sign API requests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if cfg.Endpoint == "" {
		return nil, ErrEndpointRequired
	}

	cfg = cfg.WithDefaults()

	endpoint, err := url.Parse(strings.TrimSuffix(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("parse endpoint %q: missing host", cfg.Endpoint)
	}

	c := &Client{
		config:     cfg,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Sign asks the service to sign event with the destination settings held in
// the client config.
func (c *Client) Sign(ctx context.Context, kind s3component.EventKind, event s3component.Event) (s3component.Request, error) {
	payload := s3http.EventRequest{
		Event:    event,
		Settings: c.config.Settings(),
	}

	var req s3component.Request
	if err := c.post(ctx, "/v1/events/"+kind.String(), payload, &req); err != nil {
		return s3component.Request{}, fmt.Errorf("sign %s event: %w", kind, err)
	}
	return req, nil
}

// SignDestination asks the service to sign event for one of its configured
// destinations. Local destination settings are not sent.
func (c *Client) SignDestination(ctx context.Context, name string, kind s3component.EventKind, event s3component.Event) (s3component.Request, error) {
	path := "/v1/destinations/" + url.PathEscape(name) + "/events/" + kind.String()

	var req s3component.Request
	if err := c.post(ctx, path, event, &req); err != nil {
		return s3component.Request{}, fmt.Errorf("sign %s event for %s: %w", kind, name, err)
	}
	return req, nil
}

// Verify asks the service to check the signature of desc. A nil error means
// the signature is valid.
func (c *Client) Verify(ctx context.Context, desc s3component.Request) error {
	var resp s3http.VerifyResponse
	if err := c.post(ctx, "/v1/verify", desc, &resp); err != nil {
		return fmt.Errorf("verify request: %w", err)
	}
	if !resp.Valid {
		return fmt.Errorf("verify request: %w", s3component.ErrUnauthorized)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	target := *c.endpoint
	target.Path += path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.signAPIRequest(req, body); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// signAPIRequest adds SigV4 headers when API credentials are configured. The
// service verifies against https://<host><path> whatever the transport
// scheme, so that is the URL signed here.
func (c *Client) signAPIRequest(req *http.Request, body []byte) error {
	if c.config.APIAccessKey == "" && c.config.APISecretKey == "" {
		return nil
	}
	if err := c.config.ValidateWithAuth(); err != nil {
		return err
	}

	signingCfg := s3component.SigningConfig{
		AccessKey: c.config.APIAccessKey,
		SecretKey: c.config.APISecretKey,
		Region:    c.config.APIRegion,
	}

	sig, err := s3component.Sign(signingCfg, req.Method, "https://"+req.URL.Host+req.URL.EscapedPath(), body, c.now())
	if err != nil {
		return fmt.Errorf("sign api request: %w", err)
	}

	for _, h := range sig.Headers {
		if h.Name == s3component.HeaderHost {
			req.Host = h.Value
			continue
		}
		req.Header.Set(h.Name, h.Value)
	}
	return nil
}

// parseServerError extracts the error payload from a service response.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{
		StatusCode: statusCode,
		Body:       string(body),
	}

	var payload s3http.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Error
		apiErr.Message = payload.Message
	}
	return apiErr
}

// APIError represents an error response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " " + e.Code + ": " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsMissingField reports whether the service rejected the destination
// settings.
func (e *APIError) IsMissingField() bool {
	return e.Code == "missing_field"
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrBadRequest is returned for missing settings or malformed input (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrNotFound is returned for unknown destinations (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrForbidden is returned when the service rejects the signature (403).
	ErrForbidden = &APIError{StatusCode: http.StatusForbidden}
)
