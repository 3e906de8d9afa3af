// Package usecase orchestrates uploads and downloads around the envelope
// cipher, the repositories, the blob store and presence notifications.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
	userDomain "github.com/allisson/filedrop/internal/user/domain"
)

// UserFinder resolves recipient emails to accounts.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*userDomain.User, error)
}

// FileRepository persists file metadata and envelope parameters.
type FileRepository interface {
	Create(ctx context.Context, file *transferDomain.File) error
}

// TransferRepository persists transfers.
type TransferRepository interface {
	Create(ctx context.Context, transfer *transferDomain.Transfer) error

	// GetWithFile returns ErrTransferNotFound when id is unknown.
	GetWithFile(ctx context.Context, id uuid.UUID) (*transferDomain.TransferWithFile, error)

	// MarkDownloaded moves a pending transfer to downloaded. It reports
	// whether a row changed; an already downloaded transfer is left untouched.
	MarkDownloaded(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	ListSent(ctx context.Context, senderID uuid.UUID, offset, limit int) ([]*transferDomain.TransferSummary, error)
	ListReceived(
		ctx context.Context,
		receiverID uuid.UUID,
		offset, limit int,
	) ([]*transferDomain.TransferSummary, error)
}

// EnvelopeStore holds envelope ciphertexts by key.
type EnvelopeStore interface {
	Put(ctx context.Context, key string, ciphertext []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Notifier pushes a best-effort event to a user's live connection. It never
// blocks and reports false when nothing was delivered.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, payload any) bool
}

// TransferUseCase is the transfer orchestrator.
type TransferUseCase interface {
	// Upload encrypts input.Content for the recipient and stores it as a
	// pending transfer.
	Upload(ctx context.Context, input transferDomain.UploadInput) (*transferDomain.Transfer, error)

	// Download decrypts a transfer for its receiver and marks it downloaded.
	Download(
		ctx context.Context,
		transferID uuid.UUID,
		passphrase string,
		requesterID uuid.UUID,
	) (*transferDomain.DownloadedFile, error)

	// List returns the transfers userID sent and received.
	List(ctx context.Context, userID uuid.UUID, offset, limit int) (*transferDomain.Listing, error)
}
