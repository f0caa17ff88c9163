package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifyAndMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category Category
		message  string
		outcome  string
	}{
		{"validation", validationError("register", "a.", "b."), CategoryValidation, "a. b.", "validation"},
		{"already registered", conflictError("register", credential("password")), CategoryUnauthenticated, MsgAlreadyRegistered, "account_conflict"},
		{"linked", conflictError("login", credential("external-no-password")), CategoryUnauthenticated, MsgLinkedExternally, "account_conflict"},
		{"invalid credentials", invalidCredentials(), CategoryUnauthenticated, MsgInvalidCredentials, "invalid_credentials"},
		{"expired token", fmt.Errorf("me: %w", common.ErrTokenExpired), CategoryUnauthenticated, MsgInvalidToken, "invalid_credentials"},
		{"persistence", persistenceError("login", "find", errors.New("pq: secret table name")), CategoryInternal, "fallback", "persistence"},
		{"consistency", common.ErrInternalConsistency, CategoryInternal, "fallback", "internal_consistency"},
		{"unknown", errors.New("boom"), CategoryInternal, "fallback", "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.category, Classify(tt.err))
			assert.Equal(t, tt.message, PublicMessage(tt.err, "fallback"))
			assert.Equal(t, tt.outcome, Outcome(tt.err))
		})
	}

	assert.Equal(t, "ok", Outcome(nil))
}

func credential(linkage string) *models.Credential {
	lt, _ := models.ParseLinkageType(linkage)
	return &models.Credential{ID: "c-1", Email: "x@example.com", LinkageType: lt}
}
