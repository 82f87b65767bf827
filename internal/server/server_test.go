package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/lastmosaic/internal/config"
	"github.com/fleveque/lastmosaic/internal/i18n"
	"github.com/fleveque/lastmosaic/internal/model"
	"github.com/fleveque/lastmosaic/internal/provider"
	"github.com/fleveque/lastmosaic/internal/service"
)

type emptyProvider struct{}

func (emptyProvider) Name() string { return "empty" }

func (emptyProvider) GetCollage(_ context.Context, req provider.Request) (*model.CollageData, error) {
	return &model.CollageData{Username: req.Username, Period: req.Period, Type: req.Type, GridSize: req.GridSize}, nil
}

func (emptyProvider) ValidateUser(context.Context, string) error { return nil }

func newTestServer(t *testing.T, burst int) *Server {
	t.Helper()
	catalog, err := i18n.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Server:    config.ServerConfig{Host: "127.0.0.1", Port: 0},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: burst},
		Log:       config.LogConfig{Level: "info"},
	}
	deps := Deps{
		Collage: service.NewCollageService(emptyProvider{}, nil, nil, 0, zap.NewNop()),
		Catalog: catalog,
	}
	return New(cfg, deps, zap.NewNop())
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, 100)

	tests := []struct {
		target string
		want   int
	}{
		{"/healthz", http.StatusOK},
		{"/api/v1/collage?username=rj", http.StatusOK},
		{"/api/v1/fetch-data?username=rj", http.StatusOK},
		{"/api/v1/validate-user?username=rj", http.StatusOK},
		{"/api/v1/stats", http.StatusOK},
		{"/api/v1/collage", http.StatusBadRequest},
		{"/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
		})
	}
}

func TestRoutes_RateLimitLocalized(t *testing.T) {
	srv := newTestServer(t, 1)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Accept-Language", "pt-BR")
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		return w
	}

	if w := send(); w.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", w.Code)
	}
	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Body.String() != `{"error":"Limite de requisições excedido"}` {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestShutdown_NotStarted(t *testing.T) {
	srv := newTestServer(t, 1)
	srv.cfg.Server.ShutdownTimeout = time.Second

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}
