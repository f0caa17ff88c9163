// Package profiles stores the user-facing profile that accompanies every
// credential.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// FindByOwner returns the earliest profile whose OwnerID is the given
	// credential ID, or common.ErrorNotFound.
	FindByOwner(ctx context.Context, ownerID string) (*models.Profile, error)

	// Create assigns a fresh ID and stores the profile.
	Create(ctx context.Context, p *models.Profile) (*models.Profile, error)

	// Delete is used only to undo a failed registration.
	Delete(ctx context.Context, id string) error
}
