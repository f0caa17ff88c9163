package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisRepository keeps each credential as a JSON value under
// <prefix>:credential:<id> and an email index under
// <prefix>:credential-email:<email>. The index is claimed with SETNX, which
// is the hard uniqueness guard for concurrent registrations. The record is
// always written before its index, so an index never points forward to a
// record that is still to come.
type RedisRepository struct {
	rdb    redis.Cmdable
	prefix string
}

type credentialRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"`
	LinkageType  string `json:"linkage_type"`
	IsAdmin      bool   `json:"is_admin"`
}

// releaseStaleEmail drops an email index entry only while it still names the
// same credential id and that credential's record is gone.
var releaseStaleEmail = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] and redis.call("EXISTS", KEYS[2]) == 0 then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisRepository(rdb redis.Cmdable, prefix string) *RedisRepository {
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisRepository) recordKey(id string) string {
	return r.prefix + ":credential:" + id
}

func (r *RedisRepository) emailKey(email string) string {
	return r.prefix + ":credential-email:" + email
}

func (r *RedisRepository) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	id, err := r.rdb.Get(ctx, r.emailKey(models.NormalizeEmail(email))).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	return r.get(ctx, id)
}

func (r *RedisRepository) get(ctx context.Context, id string) (*models.Credential, error) {
	raw, err := r.rdb.Get(ctx, r.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var rec credentialRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode credential %s: %w", id, err)
	}

	linkage, err := models.ParseLinkageType(rec.LinkageType)
	if err != nil {
		return nil, fmt.Errorf("credential %s: %w", id, err)
	}

	return &models.Credential{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		LinkageType:  linkage,
		IsAdmin:      rec.IsAdmin,
	}, nil
}

func (r *RedisRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	rec := *c
	rec.ID = uuid.NewString()
	rec.Email = models.NormalizeEmail(rec.Email)

	raw, err := json.Marshal(credentialRecord{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		LinkageType:  string(rec.LinkageType),
		IsAdmin:      rec.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	if err := r.rdb.Set(ctx, r.recordKey(rec.ID), raw, 0).Err(); err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	claimed, err := r.claimEmail(ctx, rec.Email, rec.ID)
	if err != nil || !claimed {
		// an unindexed record is unreachable, but do not leave it behind
		_ = r.rdb.Del(context.WithoutCancel(ctx), r.recordKey(rec.ID)).Err()
		if err != nil {
			return nil, err
		}
		return nil, common.ErrorAlreadyExists
	}

	return &rec, nil
}

// claimEmail points the email index at id. An existing entry whose record no
// longer exists is released once and the claim retried.
func (r *RedisRepository) claimEmail(ctx context.Context, email, id string) (bool, error) {
	key := r.emailKey(email)

	for attempt := 0; attempt < 2; attempt++ {
		claimed, err := r.rdb.SetNX(ctx, key, id, 0).Result()
		if err != nil {
			return false, fmt.Errorf("redis error: %w", err)
		}
		if claimed {
			return true, nil
		}

		owner, err := r.rdb.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("redis error: %w", err)
		}

		released, err := releaseStaleEmail.Run(ctx, r.rdb, []string{key, r.recordKey(owner)}, owner).Int()
		if err != nil {
			return false, fmt.Errorf("redis error: %w", err)
		}
		if released == 0 {
			return false, nil
		}
	}

	return false, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	c, err := r.get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.recordKey(id))
		p.Del(ctx, r.emailKey(c.Email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
