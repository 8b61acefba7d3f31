package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/decision-maker/internal/api"
	"github.com/eugenenazirov/decision-maker/internal/config"
)

func newRouter(t *testing.T, provider *config.Provider) http.Handler {
	t.Helper()

	settings, err := provider.Get()
	if err != nil {
		t.Fatalf("provider.Get returned error: %v", err)
	}
	handler := api.NewHandler(settings)
	logger := zaptest.NewLogger(t)
	return api.NewRouter(handler, logger, api.WithRateLimit(0, 0))
}

func health(t *testing.T, handler http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://192.168.0.3")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://192.168.0.3" {
		t.Fatalf("expected CORS header for allowed origin")
	}

	var resp struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Mode
}

func TestIntegrationFlow(t *testing.T) {
	t.Setenv("mode", "development")
	t.Setenv("gcp_project_id", "integration")

	provider := config.NewProvider()
	if mode := health(t, newRouter(t, provider)); mode != "development" {
		t.Fatalf("expected development mode, got %q", mode)
	}

	t.Setenv("mode", "production")
	t.Setenv("host", "127.0.0.1")
	t.Setenv("port", "8081")
	t.Setenv("gcp_resource_type", "cloud_run_revision")

	if mode := health(t, newRouter(t, provider)); mode != "development" {
		t.Fatalf("expected cached development mode before reload, got %q", mode)
	}

	provider.Reload()
	if mode := health(t, newRouter(t, provider)); mode != "production" {
		t.Fatalf("expected production mode after reload, got %q", mode)
	}

	info := provider.CacheInfo()
	if info.CurrentSize != 1 || info.Misses != 1 || info.Hits != 0 {
		t.Fatalf("unexpected cache info after reload: %+v", info)
	}
}
