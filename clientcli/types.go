package clientcli

import (
	s3component "github.com/edgee-cloud/amazon-s3-component"
)

// SignResult is the outcome of signing one event.
type SignResult struct {
	Kind    s3component.EventKind `json:"kind"`
	Request s3component.Request   `json:"request"`
	// Remote is true when a signing service produced the request.
	Remote bool `json:"remote"`
	// SpoolPath is set when the request was also written to a spool directory.
	SpoolPath string `json:"spool_path,omitempty"`
}

// VerifyResult is the outcome of checking one request descriptor.
type VerifyResult struct {
	URL   string `json:"url"`
	Valid bool   `json:"valid"`
	Err   error  `json:"-"`
}
