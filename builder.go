package s3component

import (
	"time"
)

// KeyFunc generates an object key for the given instant.
type KeyFunc func(now time.Time) (string, error)

// RequestBuilder turns a configuration and a body into a signed request.
// A zero-value builder is not usable; use NewRequestBuilder. A builder holds
// no mutable state and may be shared between goroutines.
type RequestBuilder struct {
	now    func() time.Time
	keyFor KeyFunc
}

// BuilderOption configures a RequestBuilder.
type BuilderOption func(*RequestBuilder)

// WithClock overrides the time source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *RequestBuilder) {
		b.now = now
	}
}

// WithKeyFunc overrides object key generation.
func WithKeyFunc(fn KeyFunc) BuilderOption {
	return func(b *RequestBuilder) {
		b.keyFor = fn
	}
}

func NewRequestBuilder(opts ...BuilderOption) *RequestBuilder {
	b := &RequestBuilder{
		now:    time.Now,
		keyFor: NewObjectKey,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build signs a PUT of body to a freshly generated object key. The clock is
// read once; the object key, x-amz-date and credential scope all derive from
// that single instant.
func (b *RequestBuilder) Build(cfg SigningConfig, body []byte) (Request, error) {
	now := b.now().UTC()

	key, err := b.keyFor(now)
	if err != nil {
		return Request{}, &SigningError{Step: "generate object key", Err: err}
	}

	objectURL := cfg.ObjectURL(key)
	sig, err := Sign(cfg, "PUT", objectURL, body, now)
	if err != nil {
		return Request{}, err
	}

	return NewRequest(objectURL, sig.Headers, body), nil
}
