package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/lastmosaic/internal/model"
)

// CallRepository records requests made to the Last.fm API.
type CallRepository interface {
	Create(ctx context.Context, call *model.UpstreamCall) error
	Count(ctx context.Context) (int64, error)
	CountFailed(ctx context.Context) (int64, error)
	CountByUsername(ctx context.Context, username string) (int64, error)
}

// sqliteCallRepository is the SQLite implementation of CallRepository.
// The struct is unexported; only the interface is public.
type sqliteCallRepository struct {
	db *sqlx.DB
}

// NewCallRepository creates a new SQLite-backed CallRepository.
func NewCallRepository(db *sqlx.DB) CallRepository {
	return &sqliteCallRepository{db: db}
}

func (r *sqliteCallRepository) Create(ctx context.Context, call *model.UpstreamCall) error {
	// NamedExecContext uses the struct's `db:` tags to map fields to :named placeholders.
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO upstream_calls (method, username, success, duration_ms)
		VALUES (:method, :username, :success, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating upstream call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteCallRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM upstream_calls")
	return count, err
}

func (r *sqliteCallRepository) CountFailed(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM upstream_calls WHERE success = 0")
	return count, err
}

func (r *sqliteCallRepository) CountByUsername(ctx context.Context, username string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM upstream_calls WHERE username = ?", username)
	return count, err
}
