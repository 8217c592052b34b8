package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/l33tlabs/leetgate/config"
	"github.com/l33tlabs/leetgate/server/metrics"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
}

func newTestRouter(t *testing.T, routes []config.RouteConfig, handlers map[string]http.Handler) *Router {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Routes = routes
	return NewRouter(cfg, handlers, zaptest.NewLogger(t), nil)
}

func TestRouterVersionPrefix(t *testing.T) {
	r := newTestRouter(t, []config.RouteConfig{
		{
			Path:    "/translate",
			Handler: "translate",
			Version: "v1",
			Methods: []string{"POST"},
		},
	}, map[string]http.Handler{"translate": okHandler("translated")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/translate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "translated", rec.Body.String())

	// The unversioned path does not exist
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/translate", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterMethodRestriction(t *testing.T) {
	r := newTestRouter(t, []config.RouteConfig{
		{
			Path:    "/translate",
			Handler: "translate",
			Version: "v1",
			Methods: []string{"POST"},
		},
	}, map[string]http.Handler{"translate": okHandler("ok")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/translate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouterHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, nil, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestRouterSkipsUnknownHandler(t *testing.T) {
	r := newTestRouter(t, []config.RouteConfig{
		{
			Path:    "/missing",
			Handler: "nonexistent",
			Methods: []string{"GET"},
		},
		{
			Path:    "/present",
			Handler: "present",
			Methods: []string{"GET"},
		},
	}, map[string]http.Handler{"present": okHandler("here")})

	// The misconfigured route is skipped, the valid one still works
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/present", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterHeaderValidation(t *testing.T) {
	r := newTestRouter(t, []config.RouteConfig{
		{
			Path:    "/translate",
			Handler: "translate",
			Methods: []string{"POST"},
			Headers: map[string]string{"X-API-Version": "2024-01"},
		},
	}, map[string]http.Handler{"translate": okHandler("ok")})

	req := httptest.NewRequest(http.MethodPost, "/translate", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing or invalid header")

	req = httptest.NewRequest(http.MethodPost, "/translate", nil)
	req.Header.Set("X-API-Version", "2024-01")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterGlobalMiddleware(t *testing.T) {
	r := newTestRouter(t, []config.RouteConfig{
		{
			Path:    "/translate",
			Handler: "translate",
			Methods: []string{"POST"},
		},
	}, map[string]http.Handler{"translate": okHandler("ok")})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/translate", nil))

	// Request ID and CORS headers come from the global stack
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterRecordsMetrics(t *testing.T) {
	m := metrics.NewMetrics()
	cfg := config.DefaultConfig()
	cfg.Routes = []config.RouteConfig{
		{
			Path:    "/translate",
			Handler: "translate",
			Methods: []string{"POST"},
		},
	}
	r := NewRouter(cfg, map[string]http.Handler{"translate": okHandler("ok")}, zaptest.NewLogger(t), m)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/translate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, scrape.Body.String(),
		`leetgate_http_requests_total{endpoint="/translate",status="200"} 1`)
}

func TestRouterDefaultMethod(t *testing.T) {
	r := newTestRouter(t, []config.RouteConfig{
		{
			Path:    "/status",
			Handler: "status",
		},
	}, map[string]http.Handler{"status": okHandler("up")})

	// Routes without explicit methods accept GET only
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
