package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	s3component "github.com/edgee-cloud/amazon-s3-component"
)

// RequestVerifier checks a signed request descriptor.
type RequestVerifier interface {
	Verify(req s3component.Request) error
}

// AuthMiddleware enforces AWS Signature V4 header authentication on the
// incoming request. A nil verifier disables authentication.
//
// The incoming request is converted with RequestFromHTTP, so callers sign
// it exactly as they would sign an S3 PUT: host, x-amz-content-sha256 and
// x-amz-date must be among the signed headers.
func AuthMiddleware(verifier RequestVerifier, maxBodySize int64) func(http.Handler) http.Handler {
	if verifier == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			desc, err := RequestFromHTTP(r, maxBodySize)
			if err != nil {
				HandleError(w, err)
				return
			}

			if err := verifier.Verify(desc); err != nil {
				HandleError(w, err)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(desc.Body))
			next.ServeHTTP(w, r)
		})
	}
}

// RequestFromHTTP reads r into a request descriptor. The body is consumed.
// The URL is rebuilt as https://<host><escaped path> since signatures are
// computed against the public endpoint.
func RequestFromHTTP(r *http.Request, maxBodySize int64) (s3component.Request, error) {
	var reader io.Reader = r.Body
	if r.Body == nil {
		reader = http.NoBody
	}
	if maxBodySize > 0 {
		reader = io.LimitReader(reader, maxBodySize+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return s3component.Request{}, fmt.Errorf("read request body: %w", err)
	}
	if maxBodySize > 0 && int64(len(body)) > maxBodySize {
		return s3component.Request{}, &http.MaxBytesError{Limit: maxBodySize}
	}

	headers := s3component.Headers{{Name: s3component.HeaderHost, Value: r.Host}}
	for name, values := range r.Header {
		for _, v := range values {
			headers = append(headers, s3component.Header{Name: strings.ToLower(name), Value: v})
		}
	}

	return s3component.Request{
		Method:  r.Method,
		URL:     "https://" + r.Host + r.URL.EscapedPath(),
		Headers: headers,
		Body:    body,
	}, nil
}
