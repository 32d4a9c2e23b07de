package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/file"
	"github.com/abduss/filevault/internal/logger"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func testConfig() config.Config {
	return config.Config{
		HTTP:    config.HTTPConfig{AllowedOrigins: []string{"*"}},
		Metrics: config.MetricsConfig{PrometheusPath: "/metrics"},
	}
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthLive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(Dependencies{Config: testConfig()})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthReady(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		catalog   Pinger
		blobs     Pinger
		wantCode  int
		component string
	}{
		{name: "all up", catalog: stubPinger{}, blobs: stubPinger{}, wantCode: http.StatusOK},
		{name: "catalog down", catalog: stubPinger{err: errors.New("database is locked")}, blobs: stubPinger{}, wantCode: http.StatusServiceUnavailable, component: "catalog"},
		{name: "blobs down", catalog: stubPinger{}, blobs: stubPinger{err: errors.New("bucket missing")}, wantCode: http.StatusServiceUnavailable, component: "blob_store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(Dependencies{Config: testConfig(), Catalog: tt.catalog, Blobs: tt.blobs})

			rec := serve(router, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
			require.Equal(t, tt.wantCode, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.component == "" {
				assert.Equal(t, "ok", body["status"])
				return
			}
			assert.Equal(t, "degraded", body["status"])
			assert.Equal(t, tt.component, body["component"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRouterEchoesCorrelationIDAndAllowsCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(Dependencies{Config: testConfig()})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set(logger.CorrelationIDHeader, "req-42")
	req.Header.Set("Origin", "http://localhost:3000")

	rec := serve(router, req)
	assert.Equal(t, "req-42", rec.Header().Get(logger.CorrelationIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterRestrictsCORSToConfiguredOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.HTTP.AllowedOrigins = []string{"https://app.example.com"}
	router := NewRouter(Dependencies{Config: cfg})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := serve(router, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(router, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouterServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(Dependencies{Config: testConfig()})

	serve(router, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "filevault_http_requests_total")
}

func TestRouterMountsFileRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	blobs, err := file.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	service := file.NewService(emptyCatalog{}, blobs, 0, nil)

	router := NewRouter(Dependencies{Config: testConfig(), FileService: service})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/files", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"files":[]}`, rec.Body.String())

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/files/missing.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type emptyCatalog struct{}

func (emptyCatalog) Insert(context.Context, string, string) (file.Record, error) {
	return file.Record{}, errors.New("read-only")
}

func (emptyCatalog) ListNames(context.Context) ([]string, error) {
	return []string{}, nil
}

func (emptyCatalog) FindByName(context.Context, string) (file.Record, error) {
	return file.Record{}, file.ErrFileNotFound
}

func (emptyCatalog) DeleteByID(context.Context, int64) (int64, error) {
	return 0, nil
}

func (emptyCatalog) Ping(context.Context) error {
	return nil
}
