// Package credentials declares the credential store contract and its
// PostgreSQL, Redis and in-memory implementations.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository stores authentication records keyed by lowercase email.
type Repository interface {
	// FindByEmail returns the credential for email (normalized by the
	// implementation) or common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.Credential, error)

	// Create assigns a fresh ID and stores the credential. A second record
	// with the same email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)

	// Delete removes a credential by ID. It exists only to compensate a
	// registration whose profile could not be created.
	Delete(ctx context.Context, id string) error
}
