// Package password enforces the password policy and hashes passwords for
// storage.
package password

import (
	"strings"
	"unicode/utf8"
)

// MinLength is the minimal accepted password length in characters.
const MinLength = 8

// SpecialCharacters lists the characters that satisfy the special-character rule.
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

// Policy violation messages, in the order Validate reports them.
const (
	MsgTooShort     = "Password must be at least 8 characters long."
	MsgNeedsLetter  = "Password must include at least one letter."
	MsgNeedsDigit   = "Password must include at least one number."
	MsgNeedsSpecial = "Password must include at least one special character."
)

// Validate checks pw against every rule and returns the violated ones in a
// fixed order. An empty result means the password is acceptable.
func Validate(pw string) []string {
	var violations []string

	if utf8.RuneCountInString(pw) < MinLength {
		violations = append(violations, MsgTooShort)
	}

	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(SpecialCharacters, r):
			hasSpecial = true
		}
	}

	if !hasLetter {
		violations = append(violations, MsgNeedsLetter)
	}
	if !hasDigit {
		violations = append(violations, MsgNeedsDigit)
	}
	if !hasSpecial {
		violations = append(violations, MsgNeedsSpecial)
	}

	return violations
}

// JoinViolations renders violations for display.
func JoinViolations(violations []string) string {
	return strings.Join(violations, " ")
}
