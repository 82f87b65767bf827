package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/fleveque/lastmosaic/internal/model"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// CollageCache stores serialized CollageData keyed by request.
type CollageCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Count(ctx context.Context) (int64, error)
}

// CacheKey builds a key of the form prefix:sha256(parts...).
func CacheKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

type sqliteCache struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteCache creates a CollageCache backed by the collage_cache table.
func NewSQLiteCache(db *sqlx.DB) CollageCache {
	return &sqliteCache{db: db, now: time.Now}
}

func (c *sqliteCache) Get(ctx context.Context, key string) ([]byte, error) {
	var entry model.CacheEntry
	err := c.db.GetContext(ctx, &entry,
		"SELECT cache_key, payload, expires_at, created_at FROM collage_cache WHERE cache_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("getting cache entry: %w", err)
	}

	if entry.Expired(c.now()) {
		// Stale rows are removed lazily on read.
		_, _ = c.db.ExecContext(ctx, "DELETE FROM collage_cache WHERE cache_key = ?", key)
		return nil, ErrCacheMiss
	}
	return entry.Payload, nil
}

func (c *sqliteCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	entry := model.CacheEntry{
		Key:       key,
		Payload:   payload,
		ExpiresAt: c.now().Add(ttl).UnixMilli(),
	}
	// INSERT OR REPLACE is SQLite's upsert; created_at is reset on overwrite.
	_, err := c.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO collage_cache (cache_key, payload, expires_at)
		VALUES (:cache_key, :payload, :expires_at)
	`, entry)
	if err != nil {
		return fmt.Errorf("setting cache entry: %w", err)
	}
	return nil
}

func (c *sqliteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM collage_cache WHERE cache_key = ?", key); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Count returns the number of live entries.
func (c *sqliteCache) Count(ctx context.Context) (int64, error) {
	var count int64
	err := c.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM collage_cache WHERE expires_at > ?", c.now().UnixMilli())
	return count, err
}

// redisCache keeps entries in Redis, shared between server replicas.
// Expiry is delegated to Redis TTLs.
type redisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a CollageCache on an existing Redis client. Keys are
// namespaced with prefix so Count only sees this cache's entries.
func NewRedisCache(client *redis.Client, prefix string) CollageCache {
	return &redisCache{client: client, prefix: prefix}
}

func (c *redisCache) key(k string) string {
	return c.prefix + k
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("getting cache entry: %w", err)
	}
	return data, nil
}

func (c *redisCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("setting cache entry: %w", err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

// Count scans the prefix; it is meant for the stats endpoint, not hot paths.
func (c *redisCache) Count(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		count  int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 500).Result()
		if err != nil {
			return 0, fmt.Errorf("scanning cache keys: %w", err)
		}
		count += int64(len(keys))
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}
