package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisRepository stores profiles as JSON under <prefix>:profile:<id> and
// keeps a sorted set per owner, scored by creation time, so FindByOwner
// resolves to the earliest profile.
type RedisRepository struct {
	rdb    redis.Cmdable
	prefix string
}

type profileRecord struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatar_url"`
	LinkageType string    `json:"linkage_type"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewRedisRepository(rdb redis.Cmdable, prefix string) *RedisRepository {
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisRepository) recordKey(id string) string {
	return r.prefix + ":profile:" + id
}

func (r *RedisRepository) ownerKey(ownerID string) string {
	return r.prefix + ":profile-owner:" + ownerID
}

func (r *RedisRepository) FindByOwner(ctx context.Context, ownerID string) (*models.Profile, error) {
	ids, err := r.rdb.ZRange(ctx, r.ownerKey(ownerID), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(ids) == 0 {
		return nil, common.ErrorNotFound
	}

	return r.get(ctx, ids[0])
}

func (r *RedisRepository) get(ctx context.Context, id string) (*models.Profile, error) {
	raw, err := r.rdb.Get(ctx, r.recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var rec profileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}

	linkage, err := models.ParseLinkageType(rec.LinkageType)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}

	return &models.Profile{
		ID:          rec.ID,
		OwnerID:     rec.OwnerID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Bio:         rec.Bio,
		AvatarURL:   rec.AvatarURL,
		LinkageType: linkage,
		IsAdmin:     rec.IsAdmin,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

func (r *RedisRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	rec := *p
	rec.ID = uuid.NewString()

	raw, err := json.Marshal(profileRecord{
		ID:          rec.ID,
		OwnerID:     rec.OwnerID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
		Bio:         rec.Bio,
		AvatarURL:   rec.AvatarURL,
		LinkageType: string(rec.LinkageType),
		IsAdmin:     rec.IsAdmin,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	_, err = r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.recordKey(rec.ID), raw, 0)
		p.ZAdd(ctx, r.ownerKey(rec.OwnerID), redis.Z{
			Score:  float64(rec.CreatedAt.UnixNano()),
			Member: rec.ID,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	return &rec, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	p, err := r.get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.recordKey(id))
		pipe.ZRem(ctx, r.ownerKey(p.OwnerID), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
