package repomanager

import (
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/profiles"
)

// NewMemoryRepositoryManager keeps everything in process memory. Data is
// lost on restart.
func NewMemoryRepositoryManager() RepositoryManager {
	return &compensatingManager{
		creds: credentials.NewMemoryRepository(),
		profs: profiles.NewMemoryRepository(),
	}
}
