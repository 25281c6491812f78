// Package metrics exposes signing counters over a private Prometheus
// registry.
package metrics

import (
	"net/http"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Path is the HTTP route where metrics are exposed.
const Path = "/metrics"

const namespace = "s3component"

// Recorder counts signed requests and failures. It implements
// s3component.Observer.
type Recorder struct {
	registry  *prometheus.Registry
	signed    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	bodyBytes *prometheus.HistogramVec
}

var _ s3component.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder backed by its own registry. Go runtime and
// process collectors are registered alongside the signing metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		signed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_signed_total",
			Help:      "Number of S3 PUT requests signed, by event kind.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_failures_total",
			Help:      "Number of events that could not be turned into a signed request.",
		}, []string{"kind", "reason"}),
		bodyBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "body_bytes",
			Help:      "Size of signed object bodies in bytes.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"kind"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.signed,
		r.failures,
		r.bodyBytes,
	)

	return r
}

func (r *Recorder) RequestSigned(kind s3component.EventKind, bodyBytes int) {
	r.signed.WithLabelValues(kind.String()).Inc()
	r.bodyBytes.WithLabelValues(kind.String()).Observe(float64(bodyBytes))
}

func (r *Recorder) SignFailed(kind s3component.EventKind, reason string) {
	r.failures.WithLabelValues(kind.String(), reason).Inc()
}

// Register adds a custom collector to the registry.
func (r *Recorder) Register(c prometheus.Collector) error {
	return r.registry.Register(c)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
