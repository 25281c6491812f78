package s3component

import (
	"crypto/hmac"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// DefaultMaxSkew is the accepted distance between x-amz-date and the
// verifier's clock.
const DefaultMaxSkew = 15 * time.Minute

// SecretStore resolves an access key to its secret key.
type SecretStore interface {
	Lookup(accessKey string) (secretKey string, err error)
}

// SignatureVerifier checks header-based signatures produced by Sign.
type SignatureVerifier struct {
	Region  string
	Service string
	Secrets SecretStore
	// MaxSkew bounds the age of x-amz-date in either direction. Zero
	// disables the check.
	MaxSkew time.Duration
	Now     func() time.Time
}

// NewSignatureVerifier returns a verifier for region using the s3 service
// scope and the default clock skew.
func NewSignatureVerifier(region string, secrets SecretStore) *SignatureVerifier {
	return &SignatureVerifier{
		Region:  region,
		Service: ServiceName,
		Secrets: secrets,
		MaxSkew: DefaultMaxSkew,
		Now:     time.Now,
	}
}

// Verify recomputes the signature of req and compares it with the one in
// its authorization header.
//
// The following are checked in order:
//  1. authorization header is present and well formed
//  2. algorithm is AWS4-HMAC-SHA256
//  3. credential scope date matches x-amz-date, region and service match
//  4. host, x-amz-content-sha256 and x-amz-date are all signed
//  5. x-amz-content-sha256 matches the body
//  6. x-amz-date is within MaxSkew of the verifier clock
//  7. access key is known to the secret store
//  8. signature matches
//
// Every failure wraps ErrUnauthorized.
func (v *SignatureVerifier) Verify(req Request) error {
	authValue, ok := req.Headers.Get(HeaderAuthorization)
	if !ok {
		return fmt.Errorf("missing authorization header: %w", ErrUnauthorized)
	}

	auth, err := parseAuthorization(authValue)
	if err != nil {
		return err
	}

	amzDate, ok := req.Headers.Get(HeaderAmzDate)
	if !ok {
		return fmt.Errorf("missing %s header: %w", HeaderAmzDate, ErrUnauthorized)
	}
	requestTime, err := time.Parse(DateTimeFormat, amzDate)
	if err != nil {
		return fmt.Errorf("invalid %s format: %w", HeaderAmzDate, ErrUnauthorized)
	}

	if err := v.validateScope(auth, requestTime); err != nil {
		return err
	}

	signed := strings.Split(auth.signedHeaders, ";")
	for _, required := range []string{HeaderHost, HeaderContentSHA256, HeaderAmzDate} {
		if !slices.Contains(signed, required) {
			return fmt.Errorf("header %s is not signed: %w", required, ErrUnauthorized)
		}
	}

	payloadHash, _ := req.Headers.Get(HeaderContentSHA256)
	if !hmac.Equal([]byte(payloadHash), []byte(HashPayload(req.Body))) {
		return fmt.Errorf("payload hash mismatch: %w", ErrUnauthorized)
	}

	if v.MaxSkew > 0 {
		now := v.now()
		if requestTime.Before(now.Add(-v.MaxSkew)) || requestTime.After(now.Add(v.MaxSkew)) {
			return fmt.Errorf("request time outside allowed skew: %w", ErrUnauthorized)
		}
	}

	if v.Secrets == nil {
		return fmt.Errorf("no secret store configured: %w", ErrUnauthorized)
	}
	secretKey, err := v.Secrets.Lookup(auth.accessKey)
	if err != nil {
		return fmt.Errorf("invalid access key: %w", errors.Join(ErrUnauthorized, err))
	}

	u, err := url.Parse(req.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", ErrUnauthorized)
	}

	var headers Headers
	for _, name := range signed {
		value, ok := req.Headers.Get(name)
		if !ok {
			return fmt.Errorf("signed header %s is missing: %w", name, ErrUnauthorized)
		}
		headers = append(headers, Header{Name: name, Value: value})
	}

	canonical := BuildCanonicalRequest(req.Method, u, headers, payloadHash)
	if canonical.SignedHeaders != auth.signedHeaders {
		return fmt.Errorf("signed headers are not canonical: %w", ErrUnauthorized)
	}

	scope := CredentialScope(auth.dateStamp, auth.region, auth.service)
	stringToSign := BuildStringToSign(requestTime, scope, canonical)

	key := DeriveSigningKey(secretKey, auth.dateStamp, auth.region, auth.service)
	defer key.Zero()
	expected := hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))

	if !hmac.Equal([]byte(expected), []byte(auth.signature)) {
		return fmt.Errorf("signature mismatch: %w", ErrUnauthorized)
	}

	return nil
}

func (v *SignatureVerifier) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

func (v *SignatureVerifier) validateScope(auth *authorization, requestTime time.Time) error {
	if auth.algorithm != SignatureAlgorithm {
		return fmt.Errorf("invalid algorithm: expected %s, got %s: %w", SignatureAlgorithm, auth.algorithm, ErrUnauthorized)
	}
	if auth.dateStamp != requestTime.Format(DateFormat) {
		return fmt.Errorf("credential date mismatch: %w", ErrUnauthorized)
	}
	if auth.region != v.Region {
		return fmt.Errorf("region mismatch: expected %s, got %s: %w", v.Region, auth.region, ErrUnauthorized)
	}
	service := v.Service
	if service == "" {
		service = ServiceName
	}
	if auth.service != service {
		return fmt.Errorf("service mismatch: expected %s, got %s: %w", service, auth.service, ErrUnauthorized)
	}
	return nil
}

type authorization struct {
	algorithm     string
	accessKey     string
	dateStamp     string
	region        string
	service       string
	signedHeaders string
	signature     string
}

// parseAuthorization splits
//
//	AWS4-HMAC-SHA256 Credential=<ak>/<date>/<region>/<service>/aws4_request, SignedHeaders=<list>, Signature=<hex>
func parseAuthorization(value string) (*authorization, error) {
	algorithm, rest, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok {
		return nil, fmt.Errorf("malformed authorization header: %w", ErrUnauthorized)
	}

	fields := make(map[string]string, 3)
	for _, part := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("malformed authorization header: %w", ErrUnauthorized)
		}
		fields[k] = v
	}

	credential, signedHeaders, signature := fields["Credential"], fields["SignedHeaders"], fields["Signature"]
	if credential == "" || signedHeaders == "" || signature == "" {
		return nil, fmt.Errorf("missing required authorization fields: %w", ErrUnauthorized)
	}

	credParts := strings.Split(credential, "/")
	if len(credParts) != 5 {
		return nil, fmt.Errorf("invalid credential format: %w", ErrUnauthorized)
	}
	if credParts[4] != ScopeTerminator {
		return nil, fmt.Errorf("invalid credential terminator: expected %s: %w", ScopeTerminator, ErrUnauthorized)
	}

	return &authorization{
		algorithm:     algorithm,
		accessKey:     credParts[0],
		dateStamp:     credParts[1],
		region:        credParts[2],
		service:       credParts[3],
		signedHeaders: signedHeaders,
		signature:     signature,
	}, nil
}
