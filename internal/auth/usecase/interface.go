// Package usecase implements login and bearer token authentication.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
	userDomain "github.com/allisson/filedrop/internal/user/domain"
)

// UserAuthenticator checks account credentials and confirms that a token
// subject still has an account.
type UserAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) (*userDomain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

// TokenUseCase issues access tokens and resolves them back to principals.
type TokenUseCase interface {
	// Issue verifies credentials and returns a signed token. Unknown email and
	// wrong password both yield ErrInvalidCredentials.
	Issue(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)

	// Authenticate resolves a plain bearer token to its principal. Tokens of
	// deleted accounts are rejected as invalid.
	Authenticate(ctx context.Context, token string) (*authDomain.Principal, error)
}
