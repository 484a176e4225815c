package serverhttp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machinery-service/internal/config"
	"machinery-service/internal/machinery/handler"
	"machinery-service/internal/machinery/service"
	"machinery-service/internal/metrics"
	"machinery-service/internal/subsystem"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	tables, err := service.DefaultTables()
	require.NoError(t, err)
	defs, err := subsystem.DefaultCatalog()
	require.NoError(t, err)
	m, err := metrics.New()
	require.NoError(t, err)

	cfg := config.Config{AllowOrigins: []string{"*"}, MaxUploadMB: 1, HeaderRow: 1, SuggestThreshold: 0.8}
	return NewRouter(handler.NewService(cfg, tables, defs, m), zerolog.Nop())
}

func TestRouter(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"status":"ok"`},
		{"canonicalize", http.MethodPost, "/machinery/canonicalize", `{"names":["Main Engine#1"]}`, http.StatusOK, `"canonical": "Main Engine"`},
		{"aliases", http.MethodGet, "/machinery/aliases", "", http.StatusOK, `"issues"`},
		{"subsystems", http.MethodGet, "/machinery/subsystems", "", http.StatusOK, `"Main_Engine"`},
		{"wrong method", http.MethodGet, "/machinery/reconcile", "", http.StatusMethodNotAllowed, ""},
		{"unknown", http.MethodGet, "/nope", "", http.StatusNotFound, ""},
		{"preflight", http.MethodOptions, "/dashboard/overview", "", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestRouter_BodyLimit(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/machinery/reconcile", strings.NewReader(strings.Repeat("x", 2<<20)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	r := newTestRouter(t)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `machinery_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
