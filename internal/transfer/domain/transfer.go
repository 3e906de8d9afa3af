// Package domain defines transfers: the record linking a sender, a receiver
// and one encrypted file, with a one-way status lifecycle.
package domain

import (
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/filedrop/internal/crypto/domain"
)

// Status is the lifecycle state of a transfer.
type Status string

const (
	// StatusPending is the state of a transfer the receiver has not yet decrypted.
	StatusPending Status = "pending"
	// StatusDownloaded is reached after the first successful decrypt and never left.
	StatusDownloaded Status = "downloaded"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDownloaded
}

// CanTransitionTo reports whether s may move to next. The only edge is
// pending to downloaded.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next == StatusDownloaded
}

// File is one uploaded file. Salt, IV and tag live with the row; the
// ciphertext lives in the blob store under StorageKey.
type File struct {
	ID         uuid.UUID
	SenderID   uuid.UUID
	Name       string
	Size       int64
	MimeType   string
	StorageKey string
	Envelope   cryptoDomain.Envelope
	CreatedAt  time.Time
}

// Transfer links a file to its sender and receiver.
type Transfer struct {
	ID         uuid.UUID
	FileID     uuid.UUID
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TransferWithFile is a transfer joined with its file metadata. The envelope
// ciphertext is not loaded.
type TransferWithFile struct {
	Transfer
	File File
}

// TransferSummary is one row of a listing, seen from the caller's side.
type TransferSummary struct {
	ID                uuid.UUID
	FileName          string
	Size              int64
	MimeType          string
	Status            Status
	CounterpartyEmail string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Listing groups the caller's transfers by direction.
type Listing struct {
	Sent     []*TransferSummary
	Received []*TransferSummary
}

// DownloadedFile is the decrypted content of a transfer with its metadata.
type DownloadedFile struct {
	TransferID uuid.UUID
	Content    []byte
	Name       string
	MimeType   string
	Size       int64
}

// UploadInput carries everything Upload needs. Passphrase is never stored.
type UploadInput struct {
	SenderID       uuid.UUID
	RecipientEmail string
	Passphrase     string
	FileName       string
	MimeType       string
	Content        []byte
}
