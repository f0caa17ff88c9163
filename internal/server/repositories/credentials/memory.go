package credentials

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is a map-backed store for development and tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.Credential
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]models.Credential),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := r.byID[id]
	return &c, nil
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rec := *c
	rec.ID = uuid.NewString()
	rec.Email = models.NormalizeEmail(rec.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[rec.Email]; exists {
		return nil, common.ErrorAlreadyExists
	}
	r.byID[rec.ID] = rec
	r.byEmail[rec.Email] = rec.ID

	out := rec
	return &out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.byID[id]; ok {
		delete(r.byEmail, c.Email)
		delete(r.byID, id)
	}
	return nil
}
