package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/allisson/filedrop/internal/crypto/service"
	"github.com/allisson/filedrop/internal/database"
	apperrors "github.com/allisson/filedrop/internal/errors"
	presenceDomain "github.com/allisson/filedrop/internal/presence/domain"
	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
	userDomain "github.com/allisson/filedrop/internal/user/domain"
)

const defaultMimeType = "application/octet-stream"

// transferUseCase implements TransferUseCase.
type transferUseCase struct {
	txManager    database.TxManager
	users        UserFinder
	fileRepo     FileRepository
	transferRepo TransferRepository
	store        EnvelopeStore
	cipher       cryptoService.EnvelopeCipher
	notifier     Notifier
	logger       *slog.Logger
	now          func() time.Time
}

// NewTransferUseCase creates a TransferUseCase.
func NewTransferUseCase(
	txManager database.TxManager,
	users UserFinder,
	fileRepo FileRepository,
	transferRepo TransferRepository,
	store EnvelopeStore,
	cipher cryptoService.EnvelopeCipher,
	notifier Notifier,
	logger *slog.Logger,
) TransferUseCase {
	return &transferUseCase{
		txManager:    txManager,
		users:        users,
		fileRepo:     fileRepo,
		transferRepo: transferRepo,
		store:        store,
		cipher:       cipher,
		notifier:     notifier,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func storageKey(fileID uuid.UUID) string {
	return "files/" + fileID.String()
}

func (t *transferUseCase) Upload(
	ctx context.Context,
	input transferDomain.UploadInput,
) (*transferDomain.Transfer, error) {
	// Resolve the recipient before paying for key derivation.
	recipient, err := t.users.GetUserByEmail(ctx, userDomain.NormalizeEmail(input.RecipientEmail))
	if err != nil {
		if apperrors.Is(err, userDomain.ErrUserNotFound) {
			return nil, transferDomain.ErrRecipientNotFound
		}
		return nil, transferDomain.StorageFailure(err, "failed to resolve recipient")
	}

	env, err := t.cipher.Encrypt(input.Content, input.Passphrase)
	if err != nil {
		return nil, err
	}

	now := t.now()
	mimeType := input.MimeType
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	file := &transferDomain.File{
		ID:        uuid.Must(uuid.NewV7()),
		SenderID:  input.SenderID,
		Name:      input.FileName,
		Size:      int64(len(input.Content)),
		MimeType:  mimeType,
		Envelope:  *env,
		CreatedAt: now,
	}
	file.StorageKey = storageKey(file.ID)

	transfer := &transferDomain.Transfer{
		ID:         uuid.Must(uuid.NewV7()),
		FileID:     file.ID,
		SenderID:   input.SenderID,
		ReceiverID: recipient.ID,
		Status:     transferDomain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := t.store.Put(ctx, file.StorageKey, env.Ciphertext); err != nil {
		return nil, transferDomain.StorageFailure(err, "failed to store envelope")
	}

	err = t.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := t.fileRepo.Create(txCtx, file); err != nil {
			return err
		}
		return t.transferRepo.Create(txCtx, transfer)
	})
	if err != nil {
		// The rows were rolled back; the blob must not outlive them.
		if delErr := t.store.Delete(context.WithoutCancel(ctx), file.StorageKey); delErr != nil {
			t.logger.Error("failed to delete orphaned envelope",
				slog.String("storage_key", file.StorageKey),
				slog.Any("error", delErr),
			)
		}
		return nil, transferDomain.StorageFailure(err, "failed to persist transfer")
	}

	t.notifier.Notify(ctx, input.SenderID, presenceDomain.EventFileUploadSuccess,
		transferDomain.FileUploadSuccessPayload{
			TransferID:     transfer.ID,
			FileName:       file.Name,
			RecipientEmail: recipient.Email,
		})

	return transfer, nil
}

func (t *transferUseCase) Download(
	ctx context.Context,
	transferID uuid.UUID,
	passphrase string,
	requesterID uuid.UUID,
) (*transferDomain.DownloadedFile, error) {
	twf, err := t.transferRepo.GetWithFile(ctx, transferID)
	if err != nil {
		if apperrors.Is(err, transferDomain.ErrTransferNotFound) {
			return nil, err
		}
		return nil, transferDomain.StorageFailure(err, "failed to load transfer")
	}

	if twf.ReceiverID != requesterID {
		return nil, transferDomain.ErrAccessDenied
	}

	t.notifier.Notify(ctx, twf.SenderID, presenceDomain.EventDownloadInitiation,
		transferDomain.DownloadInitiationPayload{
			TransferID:   twf.ID,
			FileName:     twf.File.Name,
			DownloaderID: requesterID,
		})

	ciphertext, err := t.store.Get(ctx, twf.File.StorageKey)
	if err != nil {
		return nil, transferDomain.StorageFailure(err, "failed to read envelope")
	}

	env := twf.File.Envelope
	env.Ciphertext = ciphertext
	plaintext, err := t.cipher.Decrypt(&env, passphrase)
	if err != nil {
		return nil, err
	}

	if twf.Status.CanTransitionTo(transferDomain.StatusDownloaded) {
		changed, err := t.transferRepo.MarkDownloaded(ctx, twf.ID, t.now())
		if err != nil {
			return nil, transferDomain.StorageFailure(err, "failed to update transfer status")
		}
		if changed {
			payload := transferDomain.TransferUpdatePayload{
				TransferID: twf.ID,
				Status:     transferDomain.StatusDownloaded,
				FileName:   twf.File.Name,
			}
			t.notifier.Notify(ctx, twf.SenderID, presenceDomain.EventTransferUpdate, payload)
			t.notifier.Notify(ctx, twf.ReceiverID, presenceDomain.EventTransferUpdate, payload)
		}
	}

	return &transferDomain.DownloadedFile{
		TransferID: twf.ID,
		Content:    plaintext,
		Name:       twf.File.Name,
		MimeType:   twf.File.MimeType,
		Size:       int64(len(plaintext)),
	}, nil
}

func (t *transferUseCase) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) (*transferDomain.Listing, error) {
	sent, err := t.transferRepo.ListSent(ctx, userID, offset, limit)
	if err != nil {
		return nil, transferDomain.StorageFailure(err, "failed to list sent transfers")
	}

	received, err := t.transferRepo.ListReceived(ctx, userID, offset, limit)
	if err != nil {
		return nil, transferDomain.StorageFailure(err, "failed to list received transfers")
	}

	return &transferDomain.Listing{Sent: sent, Received: received}, nil
}
