package models

import "fmt"

// LinkageType describes how an account authenticates. Credential and
// Profile records share this single enumeration.
type LinkageType string

const (
	// LinkagePassword is a local email/password account.
	LinkagePassword LinkageType = "password"
	// LinkageExternalNoPassword is linked to an external identity provider
	// and has no local password to fall back on.
	LinkageExternalNoPassword LinkageType = "external-no-password"
	// LinkageExternalWithPassword is linked to an external identity provider
	// and also carries a local password.
	LinkageExternalWithPassword LinkageType = "external-with-password"
)

// Valid reports whether l is one of the known linkage types.
func (l LinkageType) Valid() bool {
	switch l {
	case LinkagePassword, LinkageExternalNoPassword, LinkageExternalWithPassword:
		return true
	}
	return false
}

// ParseLinkageType converts a stored value back into a LinkageType.
func ParseLinkageType(s string) (LinkageType, error) {
	l := LinkageType(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown linkage type %q", s)
	}
	return l, nil
}

// HasPassword reports whether accounts of this linkage may sign in with a
// local password.
func (l LinkageType) HasPassword() bool {
	return l == LinkagePassword || l == LinkageExternalWithPassword
}
