package repomanager

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/profiles"
	"github.com/redis/go-redis/v9"
)

// NewRedisRepositoryManager stores every key under prefix. The manager owns
// rdb and closes it on Close.
func NewRedisRepositoryManager(rdb *redis.Client, prefix string) RepositoryManager {
	return &compensatingManager{
		creds: credentials.NewRedisRepository(rdb, prefix),
		profs: profiles.NewRedisRepository(rdb, prefix),
		ping:  func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		close: rdb.Close,
	}
}
