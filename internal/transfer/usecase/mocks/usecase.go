// Package mocks provides mock implementations of the transfer use case for handler tests.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
	"github.com/allisson/filedrop/internal/transfer/usecase"
)

// MockTransferUseCase is a mock implementation of usecase.TransferUseCase.
type MockTransferUseCase struct {
	mock.Mock
}

var _ usecase.TransferUseCase = (*MockTransferUseCase)(nil)

// Upload mocks the Upload method.
func (m *MockTransferUseCase) Upload(
	ctx context.Context,
	input transferDomain.UploadInput,
) (*transferDomain.Transfer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transferDomain.Transfer), args.Error(1)
}

// Download mocks the Download method.
func (m *MockTransferUseCase) Download(
	ctx context.Context,
	transferID uuid.UUID,
	passphrase string,
	requesterID uuid.UUID,
) (*transferDomain.DownloadedFile, error) {
	args := m.Called(ctx, transferID, passphrase, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transferDomain.DownloadedFile), args.Error(1)
}

// List mocks the List method.
func (m *MockTransferUseCase) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) (*transferDomain.Listing, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transferDomain.Listing), args.Error(1)
}
