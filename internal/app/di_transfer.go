package app

import (
	"context"
	"fmt"

	transferHTTP "github.com/allisson/filedrop/internal/transfer/http"
	transferRepository "github.com/allisson/filedrop/internal/transfer/repository"
	"github.com/allisson/filedrop/internal/transfer/storage"
	transferUseCase "github.com/allisson/filedrop/internal/transfer/usecase"
)

// BlobStore returns the ciphertext store opened from BLOB_STORAGE_URL.
func (c *Container) BlobStore() (*storage.BlobStore, error) {
	return lazy(c, &c.blobStoreInit, "blobStore", &c.blobStore, func() (*storage.BlobStore, error) {
		store, err := storage.OpenBlobStore(context.Background(), c.config.BlobStorageURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open blob store: %w", err)
		}
		return store, nil
	})
}

// FileRepository returns the file repository for the configured driver.
func (c *Container) FileRepository() (transferUseCase.FileRepository, error) {
	return lazy(c, &c.fileRepositoryInit, "fileRepository", &c.fileRepository, c.initFileRepository)
}

// TransferRepository returns the transfer repository for the configured driver.
func (c *Container) TransferRepository() (transferUseCase.TransferRepository, error) {
	return lazy(c, &c.transferRepositoryInit, "transferRepository", &c.transferRepository, c.initTransferRepository)
}

// TransferUseCase returns the transfer orchestrator, wrapped with metrics.
func (c *Container) TransferUseCase() (transferUseCase.TransferUseCase, error) {
	return lazy(c, &c.transferUseCaseInit, "transferUseCase", &c.transferUseCase, c.initTransferUseCase)
}

// TransferHandler returns the upload, download and listing handler.
func (c *Container) TransferHandler() (*transferHTTP.TransferHandler, error) {
	return lazy(c, &c.transferHandlerInit, "transferHandler", &c.transferHandler, func() (*transferHTTP.TransferHandler, error) {
		useCase, err := c.TransferUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get transfer use case for transfer handler: %w", err)
		}
		opts := transferHTTP.Options{
			MaxUploadSize:         c.config.MaxUploadSizeBytes,
			HideTransferExistence: c.config.HideTransferExistence,
		}
		return transferHTTP.NewTransferHandler(useCase, opts, c.Logger()), nil
	})
}

func (c *Container) initFileRepository() (transferUseCase.FileRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for file repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return transferRepository.NewMySQLFileRepository(db), nil
	case "postgres":
		return transferRepository.NewPostgreSQLFileRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initTransferRepository() (transferUseCase.TransferRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for transfer repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return transferRepository.NewMySQLTransferRepository(db), nil
	case "postgres":
		return transferRepository.NewPostgreSQLTransferRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initTransferUseCase() (transferUseCase.TransferUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for transfer use case: %w", err)
	}
	users, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for transfer use case: %w", err)
	}
	fileRepo, err := c.FileRepository()
	if err != nil {
		return nil, err
	}
	transferRepo, err := c.TransferRepository()
	if err != nil {
		return nil, err
	}
	blobStore, err := c.BlobStore()
	if err != nil {
		return nil, err
	}
	cipher, err := c.EnvelopeCipher()
	if err != nil {
		return nil, err
	}
	registry, err := c.PresenceRegistry()
	if err != nil {
		return nil, err
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	useCase := transferUseCase.NewTransferUseCase(
		txManager, users, fileRepo, transferRepo, blobStore, cipher, registry, c.Logger(),
	)
	return transferUseCase.NewTransferUseCaseWithMetrics(useCase, businessMetrics), nil
}
