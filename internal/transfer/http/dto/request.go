// Package dto provides data transfer objects for the transfer HTTP layer.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	transferDomain "github.com/allisson/filedrop/internal/transfer/domain"
	appValidation "github.com/allisson/filedrop/internal/validation"
)

// UploadRequest holds the text fields of the multipart upload form. The file
// part is read separately by the handler.
type UploadRequest struct {
	RecipientEmail string `form:"recipient_email"`
	EncryptionKey  string `form:"encryption_key"`
	FileName       string `form:"-"`
}

// Validate checks if the upload request is valid.
func (r *UploadRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RecipientEmail,
			validation.Required.Error("recipient_email is required"),
			appValidation.NotBlank,
			appValidation.Email,
		),
		validation.Field(&r.EncryptionKey,
			validation.Required.Error("encryption_key is required"),
		),
		validation.Field(&r.FileName,
			validation.Required.Error("file name is required"),
			validation.Length(1, 255),
			appValidation.FileName,
		),
	)
}

// ToUploadInput converts the request to use case input.
func (r *UploadRequest) ToUploadInput(
	senderID uuid.UUID,
	mimeType string,
	content []byte,
) transferDomain.UploadInput {
	return transferDomain.UploadInput{
		SenderID:       senderID,
		RecipientEmail: r.RecipientEmail,
		Passphrase:     r.EncryptionKey,
		FileName:       r.FileName,
		MimeType:       mimeType,
		Content:        content,
	}
}

// DownloadRequest is the body of POST /v1/files/download/:transfer_id.
// The passphrase travels in the body so it stays out of URLs and access logs.
type DownloadRequest struct {
	DecryptionKey string `json:"decryption_key"`
}

// Validate checks if the download request is valid.
func (r *DownloadRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.DecryptionKey,
			validation.Required.Error("decryption_key is required"),
		),
	)
}
