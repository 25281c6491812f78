package s3component

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// CanonicalRequest is the normalized form of a request used as signing input.
type CanonicalRequest struct {
	Method        string
	URI           string
	Query         string
	Headers       string
	SignedHeaders string
	PayloadHash   string
}

// String renders the canonical request:
//
//	METHOD
//	URI
//	QUERY
//	HEADERS (each "name:value\n")
//	SIGNED_HEADERS
//	PAYLOAD_HASH
func (c CanonicalRequest) String() string {
	return strings.Join([]string{
		c.Method,
		c.URI,
		c.Query,
		c.Headers,
		c.SignedHeaders,
		c.PayloadHash,
	}, "\n")
}

// Hash returns the hex SHA-256 digest of the rendered canonical request.
func (c CanonicalRequest) Hash() string {
	return sha256Hex([]byte(c.String()))
}

// BuildCanonicalRequest canonicalizes method, the path of u and the headers
// that participate in signing. No query parameters are signed, so the
// canonical query string is always empty.
func BuildCanonicalRequest(method string, u *url.URL, headers Headers, payloadHash string) CanonicalRequest {
	signedHeaders, canonicalHeaders := buildCanonicalHeaders(headers)
	return CanonicalRequest{
		Method:        strings.ToUpper(method),
		URI:           canonicalURI(u),
		Query:         "",
		Headers:       canonicalHeaders,
		SignedHeaders: signedHeaders,
		PayloadHash:   payloadHash,
	}
}

// HashPayload returns the hex SHA-256 digest of body. The digest must be
// computed over the exact bytes that are transmitted.
func HashPayload(body []byte) string {
	return sha256Hex(body)
}

// canonicalURI returns the escaped path of u. S3 expects the path encoded
// once, so it is not escaped a second time.
func canonicalURI(u *url.URL) string {
	if u == nil {
		return "/"
	}
	p := u.EscapedPath()
	if p == "" {
		return "/"
	}
	return p
}

// buildCanonicalHeaders lower-cases and sorts header names, merges duplicate
// names with "," and normalizes whitespace in values.
func buildCanonicalHeaders(headers Headers) (signedHeaders, canonicalHeaders string) {
	values := make(map[string][]string, len(headers))
	names := make([]string, 0, len(headers))
	for _, h := range headers {
		name := strings.ToLower(strings.TrimSpace(h.Name))
		if _, seen := values[name]; !seen {
			names = append(names, name)
		}
		values[name] = append(values[name], stripExcessSpaces(h.Value))
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.Join(values[name], ","))
		b.WriteByte('\n')
	}

	return strings.Join(names, ";"), b.String()
}

// stripExcessSpaces trims leading and trailing spaces and collapses inner
// runs of spaces to one.
func stripExcessSpaces(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "  ") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteByte(c)
	}
	return b.String()
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
