package dto

import (
	"time"

	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
)

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	TransferID string `json:"transfer_id"`
	Status     string `json:"status"`
}

// MapTransferToUploadResponse converts a stored transfer to an UploadResponse.
func MapTransferToUploadResponse(transfer *transferDomain.Transfer) UploadResponse {
	return UploadResponse{
		TransferID: transfer.ID.String(),
		Status:     string(transfer.Status),
	}
}

// TransferSummaryResponse is one listed transfer.
type TransferSummaryResponse struct {
	TransferID        string    `json:"transfer_id"`
	FileName          string    `json:"file_name"`
	Size              int64     `json:"size"`
	MimeType          string    `json:"mime_type"`
	Status            string    `json:"status"`
	CounterpartyEmail string    `json:"counterparty_email"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ListTransfersResponse groups the caller's transfers by direction.
type ListTransfersResponse struct {
	Sent     []TransferSummaryResponse `json:"sent"`
	Received []TransferSummaryResponse `json:"received"`
}

func mapSummaries(summaries []*transferDomain.TransferSummary) []TransferSummaryResponse {
	out := make([]TransferSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, TransferSummaryResponse{
			TransferID:        s.ID.String(),
			FileName:          s.FileName,
			Size:              s.Size,
			MimeType:          s.MimeType,
			Status:            string(s.Status),
			CounterpartyEmail: s.CounterpartyEmail,
			CreatedAt:         s.CreatedAt,
			UpdatedAt:         s.UpdatedAt,
		})
	}
	return out
}

// MapListingToResponse converts a listing to its response DTO. Empty
// directions are rendered as empty arrays, never null.
func MapListingToResponse(listing *transferDomain.Listing) ListTransfersResponse {
	return ListTransfersResponse{
		Sent:     mapSummaries(listing.Sent),
		Received: mapSummaries(listing.Received),
	}
}
