package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	s3component "github.com/edgee-cloud/amazon-s3-component"
)

// Service turns an event into a signed request descriptor.
// *s3component.Component satisfies it.
type Service interface {
	Collect(kind s3component.EventKind, event s3component.Event, settings s3component.Dict) (s3component.Request, error)
}

// DestinationStore resolves a configured destination to its settings.
type DestinationStore interface {
	Destination(name string) (s3component.Dict, bool)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// Destinations backs the named-destination route. Nil disables it.
	Destinations DestinationStore
	// Verifier checks descriptors posted to /v1/verify. Nil disables it.
	Verifier RequestVerifier
	// APIVerifier authenticates calls to the signing routes. Nil means public.
	APIVerifier RequestVerifier
	// Metrics is mounted at /metrics when set.
	Metrics     http.Handler
	MaxBodySize int64
	CORS        CORSConfig
}

// Handler serves the signing API.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// EventRequest is the body of POST /v1/events/{kind}.
type EventRequest struct {
	Event    s3component.Event `json:"event"`
	Settings map[string]string `json:"settings"`
}

// VerifyResponse is the body of a successful POST /v1/verify.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// Router returns an http.Handler with all routes configured.
//
//	POST /v1/events/{kind}
//	POST /v1/destinations/{name}/events/{kind}
//	POST /v1/verify
//	GET  /metrics
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.config.APIVerifier, h.config.MaxBodySize))
		r.Post("/v1/events/{kind}", h.handleEvent)
		if h.config.Destinations != nil {
			r.Post("/v1/destinations/{name}/events/{kind}", h.handleDestinationEvent)
		}
	})

	if h.config.Verifier != nil {
		r.Post("/v1/verify", h.handleVerify)
	}

	if h.config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.config.Metrics)
	}

	return r
}

func (h *Handler) handleEvent(w http.ResponseWriter, r *http.Request) {
	kind, err := s3component.ParseEventKind(chi.URLParam(r, "kind"))
	if err != nil {
		HandleError(w, err)
		return
	}

	var body EventRequest
	if err := h.decode(w, r, &body); err != nil {
		HandleError(w, err)
		return
	}

	settings := make(s3component.Dict, 0, len(body.Settings))
	for k, v := range body.Settings {
		settings = append(settings, [2]string{k, v})
	}

	h.collect(w, kind, body.Event, settings)
}

func (h *Handler) handleDestinationEvent(w http.ResponseWriter, r *http.Request) {
	kind, err := s3component.ParseEventKind(chi.URLParam(r, "kind"))
	if err != nil {
		HandleError(w, err)
		return
	}

	name := chi.URLParam(r, "name")
	settings, ok := h.config.Destinations.Destination(name)
	if !ok {
		HandleError(w, fmt.Errorf("%w: %s", ErrDestinationNotFound, name))
		return
	}

	var event s3component.Event
	if err := h.decode(w, r, &event); err != nil {
		HandleError(w, err)
		return
	}

	h.collect(w, kind, event, settings)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var desc s3component.Request
	if err := h.decode(w, r, &desc); err != nil {
		HandleError(w, err)
		return
	}

	if err := h.config.Verifier.Verify(desc); err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, VerifyResponse{Valid: true})
}

func (h *Handler) collect(w http.ResponseWriter, kind s3component.EventKind, event s3component.Event, settings s3component.Dict) {
	req, err := h.service.Collect(kind, event, settings)
	if err != nil {
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if h.config.MaxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodySize)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w: %w", s3component.ErrInvalidInput, err)
	}
	return nil
}
