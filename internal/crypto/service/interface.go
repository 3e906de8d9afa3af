// Package service implements passphrase-based envelope encryption:
// scrypt key derivation and AES-256-GCM with a detached tag.
package service

import (
	cryptoDomain "github.com/allisson/filedrop/internal/crypto/domain"
)

// AEAD seals and opens data with a detached authentication tag.
type AEAD interface {
	// Seal encrypts plaintext under nonce and returns the ciphertext (same
	// length as plaintext) and the tag.
	Seal(plaintext, nonce []byte) (ciphertext, tag []byte, err error)

	// Open verifies tag and returns the plaintext. No plaintext is returned
	// when verification fails.
	Open(ciphertext, tag, nonce []byte) ([]byte, error)
}

// KeyDeriver stretches a passphrase into a KeySize key.
type KeyDeriver interface {
	DeriveKey(passphrase string, salt []byte) ([]byte, error)
}

// EnvelopeCipher turns plaintext into an Envelope and back.
type EnvelopeCipher interface {
	// Encrypt generates a fresh salt and iv, derives the key and seals plaintext.
	Encrypt(plaintext []byte, passphrase string) (*cryptoDomain.Envelope, error)

	// Decrypt re-derives the key from the envelope salt and opens the ciphertext.
	// Any failure is reported as ErrIntegrity.
	Decrypt(env *cryptoDomain.Envelope, passphrase string) ([]byte, error)
}
