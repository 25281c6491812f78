package s3component

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Request is an outbound HTTP request descriptor. It is built by this package
// and executed by the caller; nothing here performs network I/O.
type Request struct {
	Method               string
	URL                  string
	Headers              Headers
	Body                 []byte
	ForwardClientHeaders bool
}

// NewRequest composes a PUT descriptor. Client headers are never forwarded.
func NewRequest(url string, headers Headers, body []byte) Request {
	return Request{
		Method:               http.MethodPut,
		URL:                  url,
		Headers:              headers,
		Body:                 body,
		ForwardClientHeaders: false,
	}
}

type requestJSON struct {
	Method               string  `json:"method"`
	URL                  string  `json:"url"`
	Headers              Headers `json:"headers"`
	Body                 string  `json:"body"`
	ForwardClientHeaders bool    `json:"forward_client_headers"`
}

// MarshalJSON encodes the body as a string rather than base64 so the
// descriptor stays readable and byte-exact for a JSON payload.
func (r Request) MarshalJSON() ([]byte, error) {
	headers := r.Headers
	if headers == nil {
		headers = Headers{}
	}
	return json.Marshal(requestJSON{
		Method:               r.Method,
		URL:                  r.URL,
		Headers:              headers,
		Body:                 string(r.Body),
		ForwardClientHeaders: r.ForwardClientHeaders,
	})
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var raw requestJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Request{
		Method:               raw.Method,
		URL:                  raw.URL,
		Headers:              raw.Headers,
		Body:                 []byte(raw.Body),
		ForwardClientHeaders: raw.ForwardClientHeaders,
	}
	return nil
}

// HTTPRequest converts the descriptor into an unsent *http.Request. Headers
// are applied verbatim; the host header becomes req.Host.
func (r Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return nil, fmt.Errorf("build http request: %w", err)
	}
	for _, h := range r.Headers {
		if h.Name == HeaderHost {
			req.Host = h.Value
			continue
		}
		req.Header[http.CanonicalHeaderKey(h.Name)] = append(req.Header[http.CanonicalHeaderKey(h.Name)], h.Value)
	}
	return req, nil
}
