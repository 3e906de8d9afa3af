// Package domain defines the authentication model: the principal a bearer
// token identifies and the errors raised while issuing or checking tokens.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/filedrop/internal/errors"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

// IssueTokenInput holds login credentials.
type IssueTokenInput struct {
	Email    string
	Password string
}

// IssueTokenOutput holds a signed access token and its expiry.
type IssueTokenOutput struct {
	Token     string
	ExpiresAt time.Time
}

// Authentication errors.
var (
	// ErrInvalidToken covers malformed, forged and expired tokens alike.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrMissingToken indicates the request carried no bearer token.
	ErrMissingToken = errors.Wrap(errors.ErrUnauthorized, "missing token")
)
