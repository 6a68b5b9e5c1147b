package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/redis/go-redis/v9"
)

const kvPrefix = "vibe:"

// KVStore persists client state in Redis without expiry
type KVStore struct {
	client *Client
}

// NewKVStore creates a new Redis-backed KV store
func NewKVStore(client *Client) *KVStore {
	return &KVStore{client: client}
}

func (s *KVStore) key(key string) string {
	return kvPrefix + key
}

// Get retrieves a value, returning domain.ErrNotFound on a miss
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Set stores a value
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// SetNX stores a value only if the key does not exist yet
func (s *KVStore) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	ok, err := s.client.rdb.SetNX(ctx, s.key(key), value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to setnx %s: %w", key, err)
	}
	return ok, nil
}

// Delete removes a value
func (s *KVStore) Delete(ctx context.Context, key string) error {
	return s.client.rdb.Del(ctx, s.key(key)).Err()
}

// Ping verifies connectivity
func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.rdb.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *KVStore) Close() error {
	return s.client.Close()
}
