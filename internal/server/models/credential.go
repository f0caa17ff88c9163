// Package models holds the server-side records: the Credential used to sign
// in and the user-facing Profile that belongs to it.
package models

import "strings"

// Credential is the authentication record: identity, secret and linkage.
// Email is the case-insensitive unique key and is always stored lowercase.
type Credential struct {
	ID           string
	Email        string
	PasswordHash string
	LinkageType  LinkageType
	IsAdmin      bool
}

// NewPasswordCredential builds the record created by password registration.
// Fresh accounts are never admin.
func NewPasswordCredential(email, passwordHash string) *Credential {
	return &Credential{
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		LinkageType:  LinkagePassword,
		IsAdmin:      false,
	}
}

// NormalizeEmail is applied before every credential lookup or write.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
