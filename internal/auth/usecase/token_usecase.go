package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
	authService "github.com/allisson/filedrop/internal/auth/service"
	apperrors "github.com/allisson/filedrop/internal/errors"
	userDomain "github.com/allisson/filedrop/internal/user/domain"
)

type tokenUseCase struct {
	users        UserAuthenticator
	tokenService authService.TokenService
	now          func() time.Time
}

// NewTokenUseCase creates a TokenUseCase.
func NewTokenUseCase(users UserAuthenticator, tokenService authService.TokenService) TokenUseCase {
	return &tokenUseCase{
		users:        users,
		tokenService: tokenService,
		now:          time.Now,
	}
}

func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	user, err := t.users.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := t.tokenService.Sign(
		authDomain.Principal{UserID: user.ID, Email: user.Email},
		t.now(),
	)
	if err != nil {
		return nil, err
	}

	return &authDomain.IssueTokenOutput{Token: token, ExpiresAt: expiresAt}, nil
}

func (t *tokenUseCase) Authenticate(ctx context.Context, token string) (*authDomain.Principal, error) {
	if token == "" {
		return nil, authDomain.ErrMissingToken
	}

	principal, err := t.tokenService.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := t.users.GetUserByID(ctx, principal.UserID)
	if err != nil {
		if apperrors.Is(err, userDomain.ErrUserNotFound) {
			return nil, authDomain.ErrInvalidToken
		}
		return nil, err
	}

	return &authDomain.Principal{UserID: user.ID, Email: user.Email}, nil
}
