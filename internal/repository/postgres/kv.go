package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KVStore implements domain.KVStore on the kv_entries table
type KVStore struct {
	pool *pgxpool.Pool
}

// NewKVStore creates a new postgres-backed KV store
func NewKVStore(pool *pgxpool.Pool) *KVStore {
	return &KVStore{pool: pool}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT entry_value FROM kv_entries WHERE entry_key = $1`

	var value []byte
	if err := s.pool.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_entries (entry_key, entry_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (entry_key) DO UPDATE
		SET entry_value = EXCLUDED.entry_value, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	query := `
		INSERT INTO kv_entries (entry_key, entry_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (entry_key) DO NOTHING
	`
	tag, err := s.pool.Exec(ctx, query, key, value)
	if err != nil {
		return false, fmt.Errorf("failed to setnx %s: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE entry_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *KVStore) Close() error {
	s.pool.Close()
	return nil
}
