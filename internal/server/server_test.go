package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jamolkhon5/lifesense/internal/config"
	"github.com/Jamolkhon5/lifesense/internal/ratelimit"
)

type pingRoutes struct{ path string }

func (p pingRoutes) RegisterRoutes(r chi.Router) {
	r.Get(p.path, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{Limit: 1}, nil
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Addr:            "127.0.0.1:0",
		AllowedOrigins:  []string{"http://localhost:3000"},
		RequestTimeout:  5 * time.Second,
		ShutdownTimeout: time.Second,
	}
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s := New(testConfig(), pingRoutes{"/api/chat"}, nil, nil, zerolog.Nop())

	rec := get(s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLimiterOnlyGuardsChat(t *testing.T) {
	s := New(testConfig(), pingRoutes{"/api/chat"}, pingRoutes{"/api/vitals/summary"}, denyAll{}, zerolog.Nop())

	assert.Equal(t, http.StatusTooManyRequests, get(s.Handler(), "/api/chat").Code)
	assert.Equal(t, http.StatusOK, get(s.Handler(), "/api/vitals/summary").Code)
	assert.Equal(t, http.StatusOK, get(s.Handler(), "/healthz").Code)
}

func TestCORSPreflight(t *testing.T) {
	s := New(testConfig(), pingRoutes{"/api/chat"}, nil, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("// LifeSense dashboard"), 0o644))

	cfg := testConfig()
	cfg.StaticDir = dir
	s := New(cfg, pingRoutes{"/api/chat"}, nil, nil, zerolog.Nop())

	rec := get(s.Handler(), "/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "LifeSense")
	assert.Equal(t, "pong", get(s.Handler(), "/api/chat").Body.String())
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.GRPCAddr = "127.0.0.1:0"
	s := New(cfg, pingRoutes{"/api/chat"}, nil, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunReportsListenError(t *testing.T) {
	cfg := testConfig()
	cfg.Addr = "256.0.0.1:http"
	err := New(cfg, pingRoutes{"/api/chat"}, nil, nil, zerolog.Nop()).Run(context.Background())
	assert.Error(t, err)
}
