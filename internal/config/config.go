// Package config handles application configuration using Viper.
// Viper supports YAML files, environment variables, and defaults, merged in priority order.
// Go convention: configuration is loaded into structs, not accessed as raw key-value pairs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fleveque/lastmosaic/internal/i18n"
	"github.com/fleveque/lastmosaic/internal/model"
)

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the root configuration struct. Nested structs organize related settings.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	LastFM    LastFMConfig    `mapstructure:"lastfm"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Export    ExportConfig    `mapstructure:"export"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	OutputDir    string `mapstructure:"output_dir"`
}

type CacheConfig struct {
	// Backend is sqlite, redis or none.
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type LastFMConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	BaseURL           string  `mapstructure:"base_url"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	MaxRetries        int     `mapstructure:"max_retries"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ExportConfig holds CLI export defaults; flags override them.
type ExportConfig struct {
	APIURL        string `mapstructure:"api_url"`
	Compression   string `mapstructure:"compression"`
	Locale        string `mapstructure:"locale"`
	ShowTitles    bool   `mapstructure:"show_titles"`
	ShowPlayCount bool   `mapstructure:"show_play_count"`
	ShowStyles    bool   `mapstructure:"show_styles"`
	DarkMode      bool   `mapstructure:"dark_mode"`
	Concurrency   int    `mapstructure:"concurrency"`
	KeepSVG       bool   `mapstructure:"keep_svg"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
// In Go, functions return errors as the last return value, and callers must check them.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults. These apply when neither file nor env provides a value.
	// Every key needs a default for AutomaticEnv to pick up its variable.
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	// Long enough for a Last.fm call that goes through every retry.
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("storage.database_path", "./storage/lastmosaic.db")
	v.SetDefault("storage.output_dir", ".")
	v.SetDefault("cache.backend", CacheSQLite)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "lastmosaic:")
	v.SetDefault("lastfm.api_key", "")
	v.SetDefault("lastfm.base_url", "https://ws.audioscrobbler.com/2.0/")
	v.SetDefault("lastfm.requests_per_second", 5)
	v.SetDefault("lastfm.max_retries", 3)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("export.api_url", "")
	v.SetDefault("export.compression", string(model.PresetNormal))
	v.SetDefault("export.locale", i18n.DefaultLocale)
	v.SetDefault("export.show_titles", true)
	v.SetDefault("export.show_play_count", true)
	v.SetDefault("export.show_styles", true)
	v.SetDefault("export.dark_mode", true)
	v.SetDefault("export.concurrency", 8)
	v.SetDefault("export.keep_svg", false)
	v.SetDefault("log.level", "info")

	// Read from YAML config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found": defaults + env are enough)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// LASTMOSAIC_ prefix + nested keys: LASTMOSAIC_SERVER_PORT=9090 → server.port=9090
	v.SetEnvPrefix("LASTMOSAIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The plain LASTFM_API_KEY is accepted too.
	if err := v.BindEnv("lastfm.api_key", "LASTMOSAIC_LASTFM_API_KEY", "LASTFM_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheSQLite, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("invalid cache backend %q: must be sqlite, redis or none", c.Cache.Backend)
	}
	if _, err := model.ParseCompressionLevel(c.Export.Compression); err != nil {
		return fmt.Errorf("invalid export compression: %w", err)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
