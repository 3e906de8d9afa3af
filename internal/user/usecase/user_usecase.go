package usecase

import (
	"context"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	apperrors "github.com/allisson/filedrop/internal/errors"
	userDomain "github.com/allisson/filedrop/internal/user/domain"
	appValidation "github.com/allisson/filedrop/internal/validation"
)

// UserUseCase handles user-related business logic.
type UserUseCase struct {
	userRepo UserRepository
	hasher   PasswordHasher
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(userRepo UserRepository, hasher PasswordHasher) UseCase {
	return &UserUseCase{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

func validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// RegisterUser validates input, hashes the password and stores the user.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*userDomain.User, error) {
	input.Email = userDomain.NormalizeEmail(input.Email)
	if err := validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	now := time.Now().UTC()
	user := &userDomain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Email:     input.Email,
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate checks the password of the account registered under email.
func (uc *UserUseCase) Authenticate(ctx context.Context, email, password string) (*userDomain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, userDomain.NormalizeEmail(email))
	if err != nil {
		if apperrors.Is(err, userDomain.ErrUserNotFound) {
			return nil, userDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !uc.hasher.ComparePassword(password, user.Password) {
		return nil, userDomain.ErrInvalidCredentials
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (uc *UserUseCase) GetUserByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	return uc.userRepo.GetByEmail(ctx, userDomain.NormalizeEmail(email))
}

// GetUserByID retrieves a user by ID.
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
