// Package repomanager vends the credential and profile stores for the
// configured backend and runs work that must create both as one unit.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/profiles"
	"github.com/redis/go-redis/v9"
)

// Supported storage backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// DefaultRedisPrefix namespaces Redis keys when no prefix is configured.
const DefaultRedisPrefix = "gophauth"

// TxFunc receives stores bound to the current unit of work.
type TxFunc func(ctx context.Context, creds credentials.Repository, profs profiles.Repository) error

type RepositoryManager interface {
	Credentials() credentials.Repository
	Profiles() profiles.Repository

	// WithinTx runs fn so that either every record it created persists or
	// none does. On failure the error from fn is returned.
	WithinTx(ctx context.Context, fn TxFunc) error

	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and addresses a backend.
type Options struct {
	Backend     string
	DatabaseDSN string
	RedisAddr   string
	RedisPrefix string
}

// Open connects to the backend named in opts and checks it is reachable.
func Open(ctx context.Context, opts Options) (RepositoryManager, error) {
	switch opts.Backend {
	case BackendPostgres:
		db, err := sql.Open("pgx", opts.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return NewPostgresRepositoryManager(db)

	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		prefix := opts.RedisPrefix
		if prefix == "" {
			prefix = DefaultRedisPrefix
		}
		return NewRedisRepositoryManager(rdb, prefix), nil

	case BackendMemory:
		return NewMemoryRepositoryManager(), nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
}
