package model

import "time"

// UpstreamCall tracks each request made to the Last.fm API.
// Both tags are set: `db` for sqlx scans, `json` for the stats endpoint.
type UpstreamCall struct {
	ID         int64     `db:"id" json:"id"`
	Method     string    `db:"method" json:"method"`
	Username   string    `db:"username" json:"username"`
	Success    bool      `db:"success" json:"success"`
	DurationMs *int64    `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// CacheEntry is a cached CollageData payload keyed by request.
// ExpiresAt is stored as Unix milliseconds so SQLite can compare it directly.
type CacheEntry struct {
	Key       string    `db:"cache_key" json:"key"`
	Payload   []byte    `db:"payload" json:"-"`
	ExpiresAt int64     `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Expired reports whether the entry is stale at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return now.UnixMilli() >= e.ExpiresAt
}
