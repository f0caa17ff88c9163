// Package auth issues and validates the signed bearer tokens handed out after
// a successful registration or login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is the lifetime of every issued token.
const TokenValidity = 10 * 24 * time.Hour

// ErrMissingSigningKey is returned by NewIssuer when no secret is configured.
var ErrMissingSigningKey = errors.New("jwt signing key is not configured")

// Claims carries the credential and profile identities and the admin flag
// on top of the registered claims (sub, iat, exp).
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"userId"`
	ProfileID string `json:"profileId"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Issuer signs and parses HS256 tokens with a process-wide secret. It is
// immutable after construction and safe for concurrent use.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer builds an Issuer that signs with a copy of secret.
func NewIssuer(secret []byte) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSigningKey
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Issuer{secret: key, now: time.Now}, nil
}

// Issue signs a token for the given identity pair. The token stays valid
// for at least TokenValidity from the moment of the call.
func (i *Issuer) Issue(credentialID, profileID string, isAdmin bool) (string, error) {
	// NumericDate has whole-second precision; rounding up keeps exp from
	// landing before now+TokenValidity.
	issuedAt := ceilSecond(i.now())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   credentialID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenValidity)),
		},
		UserID:    credentialID,
		ProfileID: profileID,
		IsAdmin:   isAdmin,
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func ceilSecond(t time.Time) time.Time {
	floor := t.Truncate(time.Second)
	if floor.Equal(t) {
		return t
	}
	return floor.Add(time.Second)
}

// Parse validates signature, algorithm and expiry and returns the claims.
// Expired tokens yield common.ErrTokenExpired; every other failure yields
// common.ErrInvalidToken.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.ProfileID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
