// Go testing basics:
// - Test files must end with _test.go (they're excluded from production builds)
// - Run with: go test ./internal/storage/ -v
// - t.Fatal stops the test immediately; t.Error continues to find more failures
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/fleveque/lastmosaic/internal/model"
)

// setupTestDB creates a temporary SQLite database that is removed when the
// test finishes.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func TestCallRepository_CreateAndCount(t *testing.T) {
	repo := NewCallRepository(setupTestDB(t))
	ctx := context.Background()

	duration := int64(120)
	calls := []*model.UpstreamCall{
		{Method: "user.gettopalbums", Username: "rj", Success: true, DurationMs: &duration},
		{Method: "user.getinfo", Username: "rj", Success: false},
		{Method: "user.gettopartists", Username: "other", Success: true},
	}
	for _, c := range calls {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("creating call: %v", err)
		}
		if c.ID == 0 {
			t.Error("expected ID to be set after create")
		}
	}

	tests := []struct {
		name  string
		count func() (int64, error)
		want  int64
	}{
		{"total", func() (int64, error) { return repo.Count(ctx) }, 3},
		{"failed", func() (int64, error) { return repo.CountFailed(ctx) }, 1},
		{"by username", func() (int64, error) { return repo.CountByUsername(ctx, "rj") }, 2},
		{"unknown username", func() (int64, error) { return repo.CountByUsername(ctx, "nobody") }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.count()
			if err != nil {
				t.Fatalf("counting: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSQLiteCache_SetGet(t *testing.T) {
	cache := NewSQLiteCache(setupTestDB(t))
	ctx := context.Background()

	if _, err := cache.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	payload := []byte(`{"username":"rj"}`)
	if err := cache.Set(ctx, "k", payload, time.Hour); err != nil {
		t.Fatalf("setting: %v", err)
	}
	got, err := cache.Get(ctx, "k")
	if err != nil {
		t.Fatalf("getting: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("got %s, want %s", got, payload)
	}

	// Overwrite keeps a single row
	if err := cache.Set(ctx, "k", []byte(`{}`), time.Hour); err != nil {
		t.Fatalf("overwriting: %v", err)
	}
	if n, _ := cache.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}

	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("deleting: %v", err)
	}
	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected miss after delete, got %v", err)
	}
}

func TestSQLiteCache_Expiry(t *testing.T) {
	c := NewSQLiteCache(setupTestDB(t)).(*sqliteCache)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte("a"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "long", []byte("b"), time.Hour); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
	if _, err := c.Get(ctx, "long"); err != nil {
		t.Errorf("expected live entry, got %v", err)
	}
	if n, _ := c.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("collage", "rj", "albums", "overall", "3x3")
	b := CacheKey("collage", "rj", "albums", "overall", "3x3")
	c := CacheKey("collage", "rj", "albums", "7day", "3x3")

	if a != b {
		t.Error("same parts should produce the same key")
	}
	if a == c {
		t.Error("different parts should produce different keys")
	}
	if !strings.HasPrefix(a, "collage:") || len(a) != len("collage:")+64 {
		t.Errorf("unexpected key format: %s", a)
	}
}

// TestRedisCache runs against a real server when LASTMOSAIC_TEST_REDIS_ADDR
// is set, e.g. localhost:6379.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("LASTMOSAIC_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LASTMOSAIC_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	prefix := "lastmosaic-test:" + t.Name() + ":"
	cache := NewRedisCache(client, prefix)
	t.Cleanup(func() { _ = cache.Delete(ctx, "k") })

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := cache.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("setting: %v", err)
	}
	got, err := cache.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if n, err := cache.Count(ctx); err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}
}
