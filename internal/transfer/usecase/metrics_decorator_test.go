package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func TestTransferUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m := &mockBusinessMetrics{}
	uc := NewTransferUseCaseWithMetrics(f.uc, m)

	m.On("RecordOperation", ctx, "transfer", "upload", "success").Once()
	m.On("RecordDuration", ctx, "transfer", "upload", mock.AnythingOfType("time.Duration"), "success").Once()
	m.On("RecordOperation", ctx, "transfer", "download", "error").Once()
	m.On("RecordDuration", ctx, "transfer", "download", mock.AnythingOfType("time.Duration"), "error").Once()
	m.On("RecordOperation", ctx, "transfer", "list", "success").Once()
	m.On("RecordDuration", ctx, "transfer", "list", mock.AnythingOfType("time.Duration"), "success").Once()

	transfer, err := uc.Upload(ctx, transferDomain.UploadInput{
		SenderID:       f.sender.ID,
		RecipientEmail: f.receiver.Email,
		Passphrase:     "pw",
		Content:        []byte("x"),
	})
	assert.NoError(t, err)

	_, err = uc.Download(ctx, transfer.ID, "pw", uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, transferDomain.ErrAccessDenied)

	_, err = uc.List(ctx, f.sender.ID, 0, 10)
	assert.NoError(t, err)

	m.AssertExpectations(t)
}
