package domain

import (
	"github.com/allisson/filedrop/internal/errors"
)

// Transfer errors. Integrity and randomness failures come from the crypto
// domain unchanged.
var (
	// ErrRecipientNotFound indicates no account exists for the recipient email.
	ErrRecipientNotFound = errors.Wrap(errors.ErrInvalidInput, "recipient not found")

	// ErrTransferNotFound indicates the transfer does not exist.
	ErrTransferNotFound = errors.Wrap(errors.ErrNotFound, "transfer not found")

	// ErrAccessDenied indicates the caller is not the receiver of the transfer.
	ErrAccessDenied = errors.Wrap(errors.ErrForbidden, "access denied")

	// ErrStorageFailure indicates the database or blob store failed. It is
	// fatal for the current operation and never retried.
	ErrStorageFailure = errors.New("storage failure")
)

// StorageFailure marks err as a storage failure while keeping it in the chain.
func StorageFailure(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.Join(ErrStorageFailure, err), op)
}
