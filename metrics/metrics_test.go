package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	"github.com/edgee-cloud/amazon-s3-component/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *metrics.Recorder) string {
	t.Helper()

	ts := httptest.NewServer(r.Handler())
	defer ts.Close()

	res, err := http.Get(ts.URL + metrics.Path)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/plain")

	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(data)
}

func TestRecorder_Exposition(t *testing.T) {
	r := metrics.NewRecorder()

	r.RequestSigned(s3component.KindPage, 512)
	r.RequestSigned(s3component.KindPage, 1024)
	r.RequestSigned(s3component.KindUser, 10)
	r.SignFailed(s3component.KindTrack, s3component.ReasonMissingField)

	body := scrape(t, r)

	assert.Contains(t, body, `s3component_requests_signed_total{kind="page"} 2`)
	assert.Contains(t, body, `s3component_requests_signed_total{kind="user"} 1`)
	assert.Contains(t, body, `s3component_sign_failures_total{kind="track",reason="missing_field"} 1`)
	assert.Contains(t, body, `s3component_body_bytes_count{kind="page"} 2`)
	assert.Contains(t, body, `s3component_body_bytes_sum{kind="page"} 1536`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRecorder_ObservesComponent(t *testing.T) {
	r := metrics.NewRecorder()
	c := s3component.NewComponent(s3component.WithObserver(r))

	_, err := c.Track(s3component.Event{UUID: "1"}, s3component.Dict{
		{"aws_access_key", "TEST"},
		{"aws_secret_key", "TEST"},
		{"aws_region", "eu-west-1"},
		{"s3_bucket", "test-bucket"},
	})
	require.NoError(t, err)

	_, err = c.Track(s3component.Event{UUID: "2"}, nil)
	require.Error(t, err)

	body := scrape(t, r)
	assert.Contains(t, body, `s3component_requests_signed_total{kind="track"} 1`)
	assert.Contains(t, body, `s3component_sign_failures_total{kind="track",reason="missing_field"} 1`)
}

func TestRecorder_Register(t *testing.T) {
	r := metrics.NewRecorder()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "destinations_configured"})
	require.NoError(t, r.Register(gauge))
	gauge.Set(3)

	assert.Contains(t, scrape(t, r), "destinations_configured 3")
	assert.Error(t, r.Register(gauge))
}
