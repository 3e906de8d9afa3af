package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/filedrop/internal/metrics"
	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
)

const metricsDomain = "transfer"

type transferUseCaseWithMetrics struct {
	next    TransferUseCase
	metrics metrics.BusinessMetrics
}

// NewTransferUseCaseWithMetrics wraps a TransferUseCase with metrics recording.
func NewTransferUseCaseWithMetrics(useCase TransferUseCase, m metrics.BusinessMetrics) TransferUseCase {
	return &transferUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *transferUseCaseWithMetrics) Upload(
	ctx context.Context,
	input transferDomain.UploadInput,
) (*transferDomain.Transfer, error) {
	start := time.Now()
	transfer, err := t.next.Upload(ctx, input)
	metrics.Observe(ctx, t.metrics, metricsDomain, "upload", start, err)
	return transfer, err
}

func (t *transferUseCaseWithMetrics) Download(
	ctx context.Context,
	transferID uuid.UUID,
	passphrase string,
	requesterID uuid.UUID,
) (*transferDomain.DownloadedFile, error) {
	start := time.Now()
	file, err := t.next.Download(ctx, transferID, passphrase, requesterID)
	metrics.Observe(ctx, t.metrics, metricsDomain, "download", start, err)
	return file, err
}

func (t *transferUseCaseWithMetrics) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) (*transferDomain.Listing, error) {
	start := time.Now()
	listing, err := t.next.List(ctx, userID, offset, limit)
	metrics.Observe(ctx, t.metrics, metricsDomain, "list", start, err)
	return listing, err
}
