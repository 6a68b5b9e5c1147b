package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Rrens/vibe-app-store/internal/config"
	"github.com/Rrens/vibe-app-store/internal/domain"
	"github.com/Rrens/vibe-app-store/internal/repository/memory"
	"github.com/Rrens/vibe-app-store/internal/repository/mongo"
	"github.com/Rrens/vibe-app-store/internal/repository/postgres"
	"github.com/Rrens/vibe-app-store/internal/repository/redis"
	"github.com/Rrens/vibe-app-store/internal/repository/sqlstore"
	"github.com/rs/zerolog/log"
)

// Opener connects one KV backend
type Opener func(ctx context.Context, cfg *config.Config) (domain.KVStore, error)

// Registry maps backend names to openers
type Registry struct {
	openers map[string]Opener
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]Opener)}
}

// DefaultRegistry knows every backend shipped with the server
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("memory", openMemory)
	r.Register("redis", openRedis)
	r.Register("postgres", openPostgres)
	r.Register("sqlite", openSQLite)
	r.Register("mysql", openMySQL)
	r.Register("mongodb", openMongo)
	return r
}

// Register adds or replaces an opener
func (r *Registry) Register(name string, opener Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[name] = opener
}

// Backends returns the registered backend names
func (r *Registry) Backends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.openers))
	for name := range r.openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open connects the named backend
func (r *Registry) Open(ctx context.Context, name string, cfg *config.Config) (domain.KVStore, error) {
	r.mu.RLock()
	opener, ok := r.openers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported cache backend: %s", name)
	}

	store, err := opener(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", name, err)
	}

	log.Info().Str("backend", name).Msg("KV store ready")
	return store, nil
}

func openMemory(ctx context.Context, cfg *config.Config) (domain.KVStore, error) {
	return memory.NewStore(), nil
}

func openRedis(ctx context.Context, cfg *config.Config) (domain.KVStore, error) {
	client, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	return redis.NewKVStore(client), nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (domain.KVStore, error) {
	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(cfg.Database.DSN(), cfg.Database.MigrationsPath); err != nil {
			return nil, err
		}
	}

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return postgres.NewKVStore(db.Pool), nil
}

func openSQLite(ctx context.Context, cfg *config.Config) (domain.KVStore, error) {
	return sqlstore.Open(ctx, sqlstore.SQLite, sqlstore.SQLiteDSN(cfg.SQLite.Path))
}

func openMySQL(ctx context.Context, cfg *config.Config) (domain.KVStore, error) {
	return sqlstore.Open(ctx, sqlstore.MySQL, cfg.MySQL.DSN())
}

func openMongo(ctx context.Context, cfg *config.Config) (domain.KVStore, error) {
	return mongo.Open(ctx, cfg.Mongo)
}
