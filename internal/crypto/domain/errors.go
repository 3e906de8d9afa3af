package domain

import (
	"github.com/allisson/filedrop/internal/errors"
)

// Cryptographic operation error definitions.
var (
	// ErrIntegrity is returned when GCM tag verification fails. A wrong
	// passphrase and tampered data are reported identically so callers cannot
	// learn which one happened.
	//
	// HTTP Status: 422 Unprocessable Entity
	ErrIntegrity = errors.Wrap(errors.ErrInvalidInput, "integrity check failed")

	// ErrRandomness indicates the system random source failed. Nothing should
	// be encrypted when this happens.
	ErrRandomness = errors.New("random source failure")

	// ErrInvalidKeySize indicates a key that is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidEnvelope indicates salt, iv or tag of the wrong length.
	ErrInvalidEnvelope = errors.Wrap(errors.ErrInvalidInput, "invalid envelope")

	// ErrInvalidKDFParams indicates scrypt parameters scrypt would reject.
	ErrInvalidKDFParams = errors.Wrap(errors.ErrInvalidInput, "invalid kdf parameters")
)
