package s3component

import "strings"

// Header names emitted on a signed request. They are lower-case so the
// descriptor can be applied verbatim by the executor.
const (
	HeaderAuthorization = "authorization"
	HeaderAmzDate       = "x-amz-date"
	HeaderContentSHA256 = "x-amz-content-sha256"
	HeaderSecurityToken = "x-amz-security-token"
	HeaderHost          = "host"
)

// Header is a single name/value pair.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Headers is an ordered header list. Order is preserved exactly as built.
type Headers []Header

// Get returns the first value for name, compared case-insensitively.
func (h Headers) Get(name string) (string, bool) {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Name, name) {
			return hdr.Value, true
		}
	}
	return "", false
}

// Has reports whether a header with name is present.
func (h Headers) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Names returns the header names in order.
func (h Headers) Names() []string {
	names := make([]string, len(h))
	for i, hdr := range h {
		names[i] = hdr.Name
	}
	return names
}
