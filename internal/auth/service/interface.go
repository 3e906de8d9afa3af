// Package service provides the credential primitives used by authentication:
// password hashing and access token signing.
package service

import (
	"time"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
)

// PasswordService hashes and verifies account passwords.
type PasswordService interface {
	// HashPassword returns an encoded Argon2id hash of plain.
	HashPassword(plain string) (string, error)

	// ComparePassword reports whether plain matches hashed. Malformed hashes
	// never match.
	ComparePassword(plain, hashed string) bool
}

// TokenService signs and verifies stateless access tokens.
type TokenService interface {
	// Sign returns a token for principal valid until the returned time.
	Sign(principal authDomain.Principal, now time.Time) (token string, expiresAt time.Time, err error)

	// Parse verifies token and returns the principal it was issued to.
	Parse(token string) (*authDomain.Principal, error)
}
