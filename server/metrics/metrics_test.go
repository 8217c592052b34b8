package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()

	m.RequestsTotal.WithLabelValues("/v1/translate", "200").Inc()
	m.TranslationsTotal.WithLabelValues("toLeet").Inc()
	m.UpstreamDuration.WithLabelValues("success").Observe(0.25)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `leetgate_http_requests_total{endpoint="/v1/translate",status="200"} 1`)
	assert.Contains(t, body, `leetgate_translations_total{direction="toLeet"} 1`)
	assert.Contains(t, body, "leetgate_upstream_request_duration_seconds")

	// Runtime collectors registered on the custom registry
	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsIsolatedRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.TranslationsTotal.WithLabelValues("fromLeet").Inc()

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Contains(t, rec.Body.String(), `leetgate_translations_total{direction="fromLeet"} 0`)
}
