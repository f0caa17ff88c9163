package credentials

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, models.NewPasswordCredential("Carol@Example.com", "h"))
	require.NoError(t, err)

	got, err := repo.FindByEmail(ctx, "carol@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// returned copies must not alias stored state
	got.IsAdmin = true
	again, err := repo.FindByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.False(t, again.IsAdmin)

	_, err = repo.Create(ctx, models.NewPasswordCredential("CAROL@example.com", "h"))
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.FindByEmail(ctx, "carol@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_CanceledContext(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, models.NewPasswordCredential("a@example.com", "h"))
	assert.ErrorIs(t, err, context.Canceled)
}
