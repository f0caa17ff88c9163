// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on requests that require an authenticated caller.
const AccessTokenHeaderName = "access_token"
