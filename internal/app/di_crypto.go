package app

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/filedrop/internal/crypto/domain"
	cryptoService "github.com/allisson/filedrop/internal/crypto/service"
)

// EnvelopeCipher returns the passphrase envelope cipher (scrypt + AES-256-GCM)
// reading salts and IVs from crypto/rand.
func (c *Container) EnvelopeCipher() (cryptoService.EnvelopeCipher, error) {
	return lazy(c, &c.envelopeCipherInit, "envelopeCipher", &c.envelopeCipher, func() (cryptoService.EnvelopeCipher, error) {
		kdf, err := cryptoService.NewScryptKeyDeriver(cryptoDomain.DefaultKDFParams)
		if err != nil {
			return nil, fmt.Errorf("failed to create key deriver: %w", err)
		}
		return cryptoService.NewEnvelopeCipher(kdf, rand.Reader), nil
	})
}
