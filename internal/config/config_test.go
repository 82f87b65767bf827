package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config.yaml in sight

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("address = %s", cfg.Server.Address())
	}
	if cfg.Server.WriteTimeout != time.Minute || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("unexpected server timeouts: %+v", cfg.Server)
	}
	if cfg.Cache.Backend != CacheSQLite || cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.LastFM.RequestsPerSecond != 5 || cfg.LastFM.MaxRetries != 3 {
		t.Errorf("unexpected lastfm config: %+v", cfg.LastFM)
	}
	if !cfg.Export.ShowStyles || cfg.Export.Compression != "normal" || cfg.Export.Locale != "en" {
		t.Errorf("unexpected export config: %+v", cfg.Export)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
cache:
  backend: redis
  ttl: 1h
  redis:
    addr: redis:6379
export:
  compression: ultraLow
  dark_mode: false
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LASTMOSAIC_SERVER_PORT", "9090")
	t.Setenv("LASTFM_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("env should override file: port = %d", cfg.Server.Port)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL != time.Hour || cfg.Cache.Redis.Addr != "redis:6379" {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Export.Compression != "ultraLow" || cfg.Export.DarkMode {
		t.Errorf("unexpected export config: %+v", cfg.Export)
	}
	if cfg.LastFM.APIKey != "from-env" {
		t.Errorf("api key = %q, want from-env", cfg.LastFM.APIKey)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"cache backend", "cache:\n  backend: memcached\n"},
		{"compression", "export:\n  compression: extreme\n"},
		{"rate limit", "rate_limit:\n  burst: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}
