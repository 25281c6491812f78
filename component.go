package s3component

import (
	"errors"
	"fmt"
	"log/slog"
)

// DataCollector is the host-facing surface. The three entry points behave
// identically apart from the event kind they record.
type DataCollector interface {
	Page(event Event, settings Dict) (Request, error)
	Track(event Event, settings Dict) (Request, error)
	User(event Event, settings Dict) (Request, error)
}

// Observer receives the outcome of every send. Implementations must be safe
// for concurrent use.
type Observer interface {
	RequestSigned(kind EventKind, bodyBytes int)
	SignFailed(kind EventKind, reason string)
}

// Failure reasons passed to Observer.SignFailed.
const (
	ReasonMissingField  = "missing_field"
	ReasonSerialization = "serialization"
	ReasonSigning       = "signing"
	ReasonInvalidInput  = "invalid_input"
)

// Component turns events into signed S3 PUT requests.
type Component struct {
	builder  *RequestBuilder
	encode   EventEncoder
	strict   bool
	logger   *slog.Logger
	observer Observer
}

var _ DataCollector = (*Component)(nil)

// Option configures a Component.
type Option func(*Component)

// WithStrictSerialization makes an encoding failure an error instead of
// falling back to an empty body.
func WithStrictSerialization() Option {
	return func(c *Component) {
		c.strict = true
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Component) {
		c.logger = logger
	}
}

func WithEncoder(encode EventEncoder) Option {
	return func(c *Component) {
		c.encode = encode
	}
}

func WithObserver(o Observer) Option {
	return func(c *Component) {
		c.observer = o
	}
}

// WithBuilder replaces the request builder, typically to pin the clock.
func WithBuilder(b *RequestBuilder) Option {
	return func(c *Component) {
		c.builder = b
	}
}

func NewComponent(opts ...Option) *Component {
	c := &Component{
		builder: NewRequestBuilder(),
		encode:  JSONEncoder,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Component) Page(event Event, settings Dict) (Request, error) {
	return c.send(KindPage, event, settings)
}

func (c *Component) Track(event Event, settings Dict) (Request, error) {
	return c.send(KindTrack, event, settings)
}

func (c *Component) User(event Event, settings Dict) (Request, error) {
	return c.send(KindUser, event, settings)
}

// Collect dispatches on kind. It is the entry point for callers that carry
// the kind as data, such as the HTTP service.
func (c *Component) Collect(kind EventKind, event Event, settings Dict) (Request, error) {
	if !kind.IsValid() {
		err := fmt.Errorf("invalid event kind %q: %w", kind, ErrInvalidInput)
		c.failed(kind, err)
		return Request{}, err
	}
	return c.send(kind, event, settings)
}

func (c *Component) send(kind EventKind, event Event, settings Dict) (Request, error) {
	cfg, err := ParseSettings(settings.Map())
	if err != nil {
		c.failed(kind, err)
		return Request{}, err
	}

	body, err := c.encode(event)
	if err != nil {
		if c.strict {
			err = fmt.Errorf("encode %s event: %w: %w", kind, ErrSerialization, err)
			c.failed(kind, err)
			return Request{}, err
		}
		c.logger.Warn("event serialization failed, sending empty body",
			slog.String("kind", kind.String()),
			slog.String("event_uuid", event.UUID),
			slog.Any("error", err),
		)
		body = []byte{}
	}

	req, err := c.builder.Build(cfg, body)
	if err != nil {
		c.failed(kind, err)
		return Request{}, err
	}

	c.logger.Debug("signed request",
		slog.String("kind", kind.String()),
		slog.Any("config", cfg),
		slog.String("url", req.URL),
		slog.Int("body_bytes", len(body)),
		slog.Any("headers", req.Headers.Names()),
	)

	if c.observer != nil {
		c.observer.RequestSigned(kind, len(body))
	}

	return req, nil
}

func (c *Component) failed(kind EventKind, err error) {
	if c.observer != nil {
		c.observer.SignFailed(kind, FailureReason(err))
	}
}

// FailureReason classifies err into one of the Reason constants.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return ReasonMissingField
	case errors.Is(err, ErrSerialization):
		return ReasonSerialization
	case errors.Is(err, ErrInvalidInput) && !errors.Is(err, ErrSigning):
		return ReasonInvalidInput
	default:
		return ReasonSigning
	}
}
