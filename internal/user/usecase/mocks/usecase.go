// Package mocks provides mock implementations of the user use case for handler tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	userDomain "github.com/allisson/filedrop/internal/user/domain"
	"github.com/allisson/filedrop/internal/user/usecase"
)

// MockUseCase is a mock implementation of usecase.UseCase.
type MockUseCase struct {
	mock.Mock
}

var _ usecase.UseCase = (*MockUseCase)(nil)

// RegisterUser mocks the RegisterUser method.
func (m *MockUseCase) RegisterUser(
	ctx context.Context,
	input usecase.RegisterUserInput,
) (*userDomain.User, error) {
	args := m.Called(ctx, input)
	return userOrNil(args.Get(0)), args.Error(1)
}

// Authenticate mocks the Authenticate method.
func (m *MockUseCase) Authenticate(ctx context.Context, email, password string) (*userDomain.User, error) {
	args := m.Called(ctx, email, password)
	return userOrNil(args.Get(0)), args.Error(1)
}

// GetUserByEmail mocks the GetUserByEmail method.
func (m *MockUseCase) GetUserByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

// GetUserByID mocks the GetUserByID method.
func (m *MockUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func userOrNil(v any) *userDomain.User {
	if v == nil {
		return nil
	}
	return v.(*userDomain.User)
}
