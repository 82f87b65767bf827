// Package main is the entry point for the lastmosaic data API server.
// It proxies Last.fm top lists as collage data, cached in SQLite or Redis.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fleveque/lastmosaic/internal/config"
	"github.com/fleveque/lastmosaic/internal/i18n"
	"github.com/fleveque/lastmosaic/internal/lastfm"
	"github.com/fleveque/lastmosaic/internal/provider"
	"github.com/fleveque/lastmosaic/internal/server"
	"github.com/fleveque/lastmosaic/internal/service"
	"github.com/fleveque/lastmosaic/internal/storage"
)

func main() {
	// We call run() separately so deferred cleanup functions execute properly
	// (deferred functions don't run when os.Exit is called directly).
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("LASTMOSAIC_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// zap outputs JSON in production and human-readable lines in development.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr; the error is not actionable.
	defer func() { _ = logger.Sync() }()

	if cfg.LastFM.APIKey == "" {
		return fmt.Errorf("lastfm.api_key is required (set LASTFM_API_KEY)")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	cache, closeCache, err := openCache(cfg.Cache, db, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	client, err := lastfm.NewClient(lastfm.Config{
		APIKey:            cfg.LastFM.APIKey,
		BaseURL:           cfg.LastFM.BaseURL,
		Logger:            logger,
		RequestsPerSecond: cfg.LastFM.RequestsPerSecond,
		MaxRetries:        cfg.LastFM.MaxRetries,
	})
	if err != nil {
		return fmt.Errorf("creating lastfm client: %w", err)
	}

	calls := storage.NewCallRepository(db)
	collages := service.NewCollageService(
		provider.NewLastFMProvider(client, calls, logger),
		cache, calls, cfg.Cache.TTL, logger,
	)

	catalog, err := i18n.Load()
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	srv := server.New(cfg, server.Deps{Collage: collages, Catalog: catalog}, logger)

	// Graceful shutdown: listen for SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Block until we receive a signal or the server errors out.
	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// In-flight requests get server.shutdown_timeout to complete.
	return srv.Shutdown(context.Background())
}

// openCache builds the configured cache backend. The returned func releases
// any connection it opened.
func openCache(cfg config.CacheConfig, db *sqlx.DB, logger *zap.Logger) (storage.CollageCache, func(), error) {
	switch cfg.Backend {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis cache", zap.String("addr", cfg.Redis.Addr))
		return storage.NewRedisCache(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil
	case config.CacheNone:
		logger.Info("collage cache disabled")
		return nil, func() {}, nil
	default:
		return storage.NewSQLiteCache(db), func() {}, nil
	}
}
