package domain

import "github.com/google/uuid"

// FileUploadSuccessPayload is pushed to the sender once an upload is stored.
type FileUploadSuccessPayload struct {
	TransferID     uuid.UUID `json:"transferId"`
	FileName       string    `json:"filename"`
	RecipientEmail string    `json:"recipientEmail"`
}

// DownloadInitiationPayload is pushed to the sender before decryption starts.
type DownloadInitiationPayload struct {
	TransferID   uuid.UUID `json:"transferId"`
	FileName     string    `json:"filename"`
	DownloaderID uuid.UUID `json:"downloaderId"`
}

// TransferUpdatePayload is pushed to both parties after a status change.
type TransferUpdatePayload struct {
	TransferID uuid.UUID `json:"transferId"`
	Status     Status    `json:"status"`
	FileName   string    `json:"filename"`
}
