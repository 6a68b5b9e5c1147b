package domain

import "context"

const (
	listingKey    = "vibe-apps"
	demoURLPrefix = "v0-app-"
)

// ListingKey is the fixed key of the cached listing
func ListingKey() string { return listingKey }

// DemoURLKey is the key of the cached demo URL of a concept
func DemoURLKey(conceptID string) string { return demoURLPrefix + conceptID }

// KVStore is the persisted client state. Get returns ErrNotFound on a miss.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// SetNX writes only when the key is absent and reports whether it wrote
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
