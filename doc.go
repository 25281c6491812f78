// Package s3component turns analytics events into signed Amazon S3 PUT
// requests.
//
// The package builds request descriptors only. It never opens a connection:
// the caller (an edge runtime, the HTTP service in the http package, or the
// s3component-cli tool) executes the request it is handed.
//
// # Key Components
//
//   - Component: DataCollector implementation with Page, Track and User entry points
//   - ParseSettings: resolves a flat settings map into a SigningConfig
//   - RequestBuilder: generates the object key and URL and signs the request
//   - Sign: AWS Signature V4 header signing with a SHA-256 payload hash
//   - SignatureVerifier: recomputes and checks a signature produced by Sign
//
// # Settings
//
// Required: aws_access_key, aws_secret_key, aws_region, s3_bucket.
// Optional: aws_session_token, s3_key_prefix.
//
// Objects are written to
//
//	https://<bucket>.s3.<region>.amazonaws.com/<s3_key_prefix><YYYY-MM-DD-HH-MM-SS>-<uuid>.json
//
// # Example Usage
//
//	c := s3component.NewComponent()
//	req, err := c.Page(event, s3component.Dict{
//	    {"aws_access_key", "AKIA..."},
//	    {"aws_secret_key", "..."},
//	    {"aws_region", "eu-west-1"},
//	    {"s3_bucket", "analytics"},
//	})
//	if err != nil {
//	    return err
//	}
//
//	httpReq, err := req.HTTPRequest(ctx)
//	// hand httpReq to an HTTP client
package s3component
