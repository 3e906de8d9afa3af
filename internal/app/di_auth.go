package app

import (
	"fmt"

	authHTTP "github.com/allisson/filedrop/internal/auth/http"
	authService "github.com/allisson/filedrop/internal/auth/service"
	authUseCase "github.com/allisson/filedrop/internal/auth/usecase"
)

// PasswordService returns the Argon2id password hasher.
func (c *Container) PasswordService() authService.PasswordService {
	c.passwordServiceInit.Do(func() {
		c.passwordService = authService.NewPasswordService()
	})
	return c.passwordService
}

// TokenService returns the access token signer. It fails when
// AUTH_TOKEN_SECRET is missing or too short.
func (c *Container) TokenService() (authService.TokenService, error) {
	return lazy(c, &c.tokenServiceInit, "tokenService", &c.tokenService, func() (authService.TokenService, error) {
		svc, err := authService.NewTokenService([]byte(c.config.AuthTokenSecret), c.config.AuthTokenExpiration)
		if err != nil {
			return nil, fmt.Errorf("failed to create token service: %w", err)
		}
		return svc, nil
	})
}

// TokenUseCase returns the login and authentication use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	return lazy(c, &c.tokenUseCaseInit, "tokenUseCase", &c.tokenUseCase, c.initTokenUseCase)
}

// TokenHandler returns the login handler.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	return lazy(c, &c.tokenHandlerInit, "tokenHandler", &c.tokenHandler, func() (*authHTTP.TokenHandler, error) {
		useCase, err := c.TokenUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
		}
		return authHTTP.NewTokenHandler(useCase, c.Logger()), nil
	})
}

func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	users, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for token use case: %w", err)
	}
	tokenService, err := c.TokenService()
	if err != nil {
		return nil, err
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
	}

	useCase := authUseCase.NewTokenUseCase(users, tokenService)
	return authUseCase.NewTokenUseCaseWithMetrics(useCase, businessMetrics), nil
}
