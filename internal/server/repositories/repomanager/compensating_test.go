package repomanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/profiles"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func managers(t *testing.T) map[string]RepositoryManager {
	t.Helper()
	mr := miniredis.RunT(t)
	rm := NewRedisRepositoryManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() { _ = rm.Close() })

	return map[string]RepositoryManager{
		BackendMemory: NewMemoryRepositoryManager(),
		BackendRedis:  rm,
	}
}

func TestCompensating_CommitKeepsRecords(t *testing.T) {
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, m.WithinTx(ctx, registerInTx))

			c, err := m.Credentials().FindByEmail(ctx, "alice@example.com")
			require.NoError(t, err)
			p, err := m.Profiles().FindByOwner(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice", p.DisplayName)
			assert.NoError(t, m.Ping(ctx))
			assert.NoError(t, m.RunMigrations(ctx))
		})
	}
}

func TestCompensating_FailureRemovesCreatedRecords(t *testing.T) {
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			boom := errors.New("profile write failed")
			var ownerID string

			err := m.WithinTx(ctx, func(ctx context.Context, creds credentials.Repository, profs profiles.Repository) error {
				c, err := creds.Create(ctx, models.NewPasswordCredential("bob@example.com", "hash"))
				if err != nil {
					return err
				}
				ownerID = c.ID
				if _, err := profs.Create(ctx, models.NewProfile(c, "bob", time.Now())); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)

			_, err = m.Credentials().FindByEmail(ctx, "bob@example.com")
			assert.ErrorIs(t, err, common.ErrorNotFound)
			_, err = m.Profiles().FindByOwner(ctx, ownerID)
			assert.ErrorIs(t, err, common.ErrorNotFound)

			// the email is free again
			assert.NoError(t, m.WithinTx(ctx, func(ctx context.Context, creds credentials.Repository, _ profiles.Repository) error {
				_, err := creds.Create(ctx, models.NewPasswordCredential("bob@example.com", "hash"))
				return err
			}))
		})
	}
}

func TestCompensating_CanceledContextStillCompensates(t *testing.T) {
	m := NewMemoryRepositoryManager()
	ctx, cancel := context.WithCancel(context.Background())

	err := m.WithinTx(ctx, func(ctx context.Context, creds credentials.Repository, _ profiles.Repository) error {
		if _, err := creds.Create(ctx, models.NewPasswordCredential("carol@example.com", "hash")); err != nil {
			return err
		}
		cancel()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = m.Credentials().FindByEmail(context.Background(), "carol@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCompensating_PanicCompensatesAndRepanics(t *testing.T) {
	m := NewMemoryRepositoryManager()

	assert.Panics(t, func() {
		_ = m.WithinTx(context.Background(), func(ctx context.Context, creds credentials.Repository, _ profiles.Repository) error {
			_, _ = creds.Create(ctx, models.NewPasswordCredential("dave@example.com", "hash"))
			panic("boom")
		})
	})

	_, err := m.Credentials().FindByEmail(context.Background(), "dave@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "floppy"})
	assert.Error(t, err)
}

func TestOpen_Memory(t *testing.T) {
	m, err := Open(context.Background(), Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.NoError(t, m.Close())
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	m, err := Open(context.Background(), Options{Backend: BackendRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.WithinTx(context.Background(), registerInTx))
	assert.True(t, mr.Exists("gophauth:credential-email:alice@example.com"))
}
