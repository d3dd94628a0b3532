package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/http/handlers"
	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/orchestrator"
)

type stubRunner struct{}

func (stubRunner) Run(ctx context.Context, req orchestrator.RunRequest, events orchestrator.EventSink) (*orchestrator.Report, error) {
	return &orchestrator.Report{RunID: "run-1"}, nil
}

func newTestRouter(t *testing.T, limit int) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	app := handlers.NewApp(stubRunner{}, nil)
	return NewRouter(app, Options{Logger: zerolog.Nop(), StoragePath: dir, RateLimitPerMin: limit}), dir
}

func TestRouterRoutes(t *testing.T) {
	h, dir := newTestRouter(t, 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/runs", strings.NewReader(`{"prompt_field":"prompt"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "run-1")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "generated", "rec-1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "generated", "rec-1", "v01.png"), []byte("png"), 0o644))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/generated/rec-1/v01.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
}

func TestRouterRateLimitsRuns(t *testing.T) {
	h, _ := newTestRouter(t, 1)

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/runs", strings.NewReader(`{"prompt_field":"prompt"}`))
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	// health is not limited
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
