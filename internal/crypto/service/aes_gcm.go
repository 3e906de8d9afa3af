package service

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	cryptoDomain "github.com/allisson/filedrop/internal/crypto/domain"
)

// AESGCMCipher implements AEAD using AES-256-GCM with a 16-byte nonce and a
// 16-byte tag kept apart from the ciphertext.
//
// The non-standard nonce size matches the envelope layout (IVSize). GCM
// hashes nonces other than 12 bytes through GHASH to build the initial
// counter, which is still safe with random nonces.
//
// The cipher is stateless after construction and safe for concurrent use.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a cipher for a KeySize key.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, cryptoDomain.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Seal encrypts plaintext and splits the trailing tag off the GCM output.
func (a *AESGCMCipher) Seal(plaintext, nonce []byte) (ciphertext, tag []byte, err error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, nil, cryptoDomain.ErrInvalidEnvelope
	}

	sealed := a.aead.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - a.aead.Overhead()
	return sealed[:split], sealed[split:], nil
}

// Open rejoins ciphertext and tag and verifies them.
func (a *AESGCMCipher) Open(ciphertext, tag, nonce []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() || len(tag) != a.aead.Overhead() {
		return nil, cryptoDomain.ErrIntegrity
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := a.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, cryptoDomain.ErrIntegrity
	}
	return plaintext, nil
}
