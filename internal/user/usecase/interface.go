// Package usecase implements user registration, credential checks and
// identity lookups.
package usecase

import (
	"context"

	"github.com/google/uuid"

	userDomain "github.com/allisson/filedrop/internal/user/domain"
)

// RegisterUserInput contains the input data for user registration.
type RegisterUserInput struct {
	Email    string
	Password string
}

// UserRepository persists users. Implementations join the ambient
// transaction through database.GetTx.
type UserRepository interface {
	Create(ctx context.Context, user *userDomain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userDomain.User, error)
}

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	HashPassword(plain string) (string, error)
	ComparePassword(plain, hashed string) bool
}

// UseCase defines user operations.
type UseCase interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*userDomain.User, error)

	// Authenticate verifies email and password. Unknown emails and wrong
	// passwords both return ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*userDomain.User, error)

	GetUserByEmail(ctx context.Context, email string) (*userDomain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}
