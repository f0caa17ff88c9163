package profiles

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]models.Profile
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]models.Profile)}
}

func (r *MemoryRepository) FindByOwner(ctx context.Context, ownerID string) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *models.Profile
	for _, p := range r.byID {
		if p.OwnerID != ownerID {
			continue
		}
		if found == nil || p.CreatedAt.Before(found.CreatedAt) {
			cp := p
			found = &cp
		}
	}
	if found == nil {
		return nil, common.ErrorNotFound
	}
	return found, nil
}

func (r *MemoryRepository) Create(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := *p
	rec.ID = uuid.NewString()

	r.mu.Lock()
	r.byID[rec.ID] = rec
	r.mu.Unlock()

	out := rec
	return &out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
	return nil
}
