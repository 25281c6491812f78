package s3component

import "errors"

var (
	// ErrMissingField is returned when a required setting is absent
	ErrMissingField = errors.New("missing field")
	// ErrSerialization is returned when an event cannot be encoded in strict mode
	ErrSerialization = errors.New("serialization failure")
	// ErrSigning is returned when a signing step fails on validated input
	ErrSigning = errors.New("signing failure")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when a signature does not verify
	ErrUnauthorized = errors.New("unauthorized")
)

// MissingFieldError names the required setting that was not supplied.
type MissingFieldError struct {
	Field   string
	Message string
}

func (e *MissingFieldError) Error() string {
	return e.Message
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// SigningError reports a failure inside the signing pipeline. Given a
// validated SigningConfig it indicates a defect and must not be retried.
type SigningError struct {
	Step string
	Err  error
}

func (e *SigningError) Error() string {
	return "sign request: " + e.Step + ": " + e.Err.Error()
}

func (e *SigningError) Unwrap() []error {
	return []error{ErrSigning, e.Err}
}
