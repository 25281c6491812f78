package s3component

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// SignatureAlgorithm is the only algorithm emitted and accepted.
	SignatureAlgorithm = "AWS4-HMAC-SHA256"
	// DateTimeFormat is the UTC request timestamp layout.
	DateTimeFormat = "20060102T150405Z"
	// DateFormat is the UTC date stamp layout used in credential scopes.
	DateFormat = "20060102"
)

// Signature is the result of signing one request. Headers holds the complete
// header list to transmit, in emission order.
type Signature struct {
	Canonical    CanonicalRequest
	StringToSign string
	Scope        string
	Value        string
	Headers      Headers
}

// BuildStringToSign assembles the string-to-sign from the request timestamp,
// credential scope and canonical request.
func BuildStringToSign(requestTime time.Time, scope string, canonical CanonicalRequest) string {
	return strings.Join([]string{
		SignatureAlgorithm,
		requestTime.UTC().Format(DateTimeFormat),
		scope,
		canonical.Hash(),
	}, "\n")
}

// BuildAuthorizationHeader renders the authorization header value.
func BuildAuthorizationHeader(accessKey, scope, signedHeaders, signature string) string {
	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		SignatureAlgorithm, accessKey, scope, signedHeaders, signature)
}

// Sign produces a header-based signature for a request to rawURL with body.
//
// The signed headers are host, x-amz-content-sha256, x-amz-date and, when the
// configuration carries a non-empty session token, x-amz-security-token. The
// emitted header order is:
//
//	x-amz-date
//	x-amz-content-sha256
//	x-amz-security-token (only with a session token)
//	authorization
//	host
//
// now is read once by the caller so the timestamp and the date stamp in the
// scope always agree.
func Sign(cfg SigningConfig, method, rawURL string, body []byte, now time.Time) (Signature, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Signature{}, &SigningError{Step: "parse url", Err: err}
	}
	if u.Scheme != "https" {
		return Signature{}, &SigningError{Step: "parse url", Err: fmt.Errorf("url %q is not https: %w", rawURL, ErrInvalidInput)}
	}
	if u.Host == "" {
		return Signature{}, &SigningError{Step: "parse url", Err: fmt.Errorf("url %q has no host: %w", rawURL, ErrInvalidInput)}
	}

	now = now.UTC()
	amzDate := now.Format(DateTimeFormat)
	dateStamp := now.Format(DateFormat)
	payloadHash := HashPayload(body)

	signed := Headers{
		{Name: HeaderHost, Value: u.Host},
		{Name: HeaderContentSHA256, Value: payloadHash},
		{Name: HeaderAmzDate, Value: amzDate},
	}
	if cfg.SessionToken.NonEmpty() {
		signed = append(signed, Header{Name: HeaderSecurityToken, Value: cfg.SessionToken.Value})
	}

	canonical := BuildCanonicalRequest(method, u, signed, payloadHash)
	scope := CredentialScope(dateStamp, cfg.Region, ServiceName)
	stringToSign := BuildStringToSign(now, scope, canonical)

	key := DeriveSigningKey(cfg.SecretKey, dateStamp, cfg.Region, ServiceName)
	defer key.Zero()
	signature := hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))

	headers := Headers{
		{Name: HeaderAmzDate, Value: amzDate},
		{Name: HeaderContentSHA256, Value: payloadHash},
	}
	if cfg.SessionToken.NonEmpty() {
		headers = append(headers, Header{Name: HeaderSecurityToken, Value: cfg.SessionToken.Value})
	}
	headers = append(headers,
		Header{Name: HeaderAuthorization, Value: BuildAuthorizationHeader(cfg.AccessKey, scope, canonical.SignedHeaders, signature)},
		Header{Name: HeaderHost, Value: u.Host},
	)

	return Signature{
		Canonical:    canonical,
		StringToSign: stringToSign,
		Scope:        scope,
		Value:        signature,
		Headers:      headers,
	}, nil
}
