package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/utils"
)

// SnapshotRepository is a JSON key/value table in Postgres. It satisfies cache.Cache so
// it can replace Redis as the durable tier of the item cache.
type SnapshotRepository struct {
	DB *sql.DB
	// now is swapped in tests
	now func() time.Time
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{DB: db, now: time.Now}
}

func (r *SnapshotRepository) Get(ctx context.Context, key string, value any) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT value
		FROM shared_cart_snapshots
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)
	`

	var data []byte

	err := r.DB.QueryRowContext(dbCtx, query, key, r.now()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("failed to get key %s from postgres: %w", key, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal snapshot for key %s: %w", key, err)
	}

	return true, nil
}

// Set upserts the value. A non-positive ttl stores the row without expiry.
func (r *SnapshotRepository) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	now := r.now()

	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: now.Add(ttl), Valid: true}
	}

	query := `
		INSERT INTO shared_cart_snapshots (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.DB.ExecContext(dbCtx, query, key, data, expiresAt, now); err != nil {
		return fmt.Errorf("failed to upsert key %s in postgres: %w", key, err)
	}

	return nil
}

func (r *SnapshotRepository) Delete(ctx context.Context, key string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := r.DB.ExecContext(dbCtx, `DELETE FROM shared_cart_snapshots WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete key %s from postgres: %w", key, err)
	}

	return nil
}

// Close is a no-op; the pool belongs to Repository.
func (r *SnapshotRepository) Close() error {
	return nil
}
