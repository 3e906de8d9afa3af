package app

import (
	"fmt"

	userHTTP "github.com/allisson/filedrop/internal/user/http"
	userRepository "github.com/allisson/filedrop/internal/user/repository"
	userUseCase "github.com/allisson/filedrop/internal/user/usecase"
)

// UserRepository returns the user repository for the configured driver.
func (c *Container) UserRepository() (userUseCase.UserRepository, error) {
	return lazy(c, &c.userRepositoryInit, "userRepository", &c.userRepository, c.initUserRepository)
}

// UserUseCase returns the user use case, wrapped with metrics.
func (c *Container) UserUseCase() (userUseCase.UseCase, error) {
	return lazy(c, &c.userUseCaseInit, "userUseCase", &c.userUseCase, c.initUserUseCase)
}

// UserHandler returns the signup handler.
func (c *Container) UserHandler() (*userHTTP.UserHandler, error) {
	return lazy(c, &c.userHandlerInit, "userHandler", &c.userHandler, c.initUserHandler)
}

func (c *Container) initUserRepository() (userUseCase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return userRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return userRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initUserUseCase() (userUseCase.UseCase, error) {
	repo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
	}

	useCase := userUseCase.NewUserUseCase(repo, c.PasswordService())
	return userUseCase.NewUserUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initUserHandler() (*userHTTP.UserHandler, error) {
	useCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
	}
	return userHTTP.NewUserHandler(useCase, c.Logger()), nil
}
