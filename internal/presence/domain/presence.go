// Package domain defines the presence registry types: who is connected, the
// connection handle the registry pushes to, and the events it carries.
package domain

import (
	"github.com/google/uuid"

	"github.com/allisson/filedrop/internal/errors"
)

// Event names pushed to connected clients.
const (
	EventUserOnline         = "user_online"
	EventUserOffline        = "user_offline"
	EventOnlineUsers        = "online_users"
	EventFileUploadSuccess  = "file_upload_success"
	EventDownloadInitiation = "download_initiation"
	EventTransferUpdate     = "transfer_update"
)

// ErrRegistryClosed is returned by registry calls made after Close.
var ErrRegistryClosed = errors.New("presence registry closed")

// ConnectedUser is one roster entry. A user appears at most once.
type ConnectedUser struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
}

// Event is a named message delivered to a single connection.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

// Connection is the live transport handle of a connected user.
type Connection interface {
	// ID identifies the connection; it differs across reconnects of the same user.
	ID() string

	// Send queues ev without blocking. It returns false when the event was
	// dropped because the connection is slow or already closed.
	Send(ev Event) bool

	// Close asks the transport to shut down. Safe to call more than once.
	Close()
}

// UserOnlinePayload is broadcast when a user connects.
type UserOnlinePayload struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
}

// UserOfflinePayload is broadcast when a user's current connection goes away.
type UserOfflinePayload struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
}
