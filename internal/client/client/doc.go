// Package client contains the CLI's connection to the gophauth server and
// the bootstrap of its local sqlite database.
//
// GRPCClient speaks gophauth.v1.AccountService. It remembers the token from
// the last Register or Login (or one set with SetAccessToken) and sends it
// as access_token metadata on every call. gRPC status codes are mapped to
// ErrInvalidInput, ErrUnauthorized and ErrUnavailable so callers can use
// errors.Is.
//
// InitDatabase opens the local database and applies the embedded goose
// migrations.
package client
