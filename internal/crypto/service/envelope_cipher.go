package service

import (
	"crypto/rand"
	"io"

	cryptoDomain "github.com/allisson/filedrop/internal/crypto/domain"
	apperrors "github.com/allisson/filedrop/internal/errors"
)

type envelopeCipher struct {
	kdf    KeyDeriver
	random io.Reader
}

// NewEnvelopeCipher builds an EnvelopeCipher on top of kdf. A nil random
// reader selects crypto/rand.
func NewEnvelopeCipher(kdf KeyDeriver, random io.Reader) EnvelopeCipher {
	if random == nil {
		random = rand.Reader
	}
	return &envelopeCipher{kdf: kdf, random: random}
}

func (c *envelopeCipher) Encrypt(plaintext []byte, passphrase string) (*cryptoDomain.Envelope, error) {
	header := make([]byte, cryptoDomain.SaltSize+cryptoDomain.IVSize)
	if _, err := io.ReadFull(c.random, header); err != nil {
		return nil, apperrors.Wrap(cryptoDomain.ErrRandomness, err.Error())
	}
	salt := header[:cryptoDomain.SaltSize:cryptoDomain.SaltSize]
	iv := header[cryptoDomain.SaltSize:]

	key, err := c.kdf.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext, tag, err := aead.Seal(plaintext, iv)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.Envelope{
		Ciphertext: ciphertext,
		Salt:       salt,
		IV:         iv,
		AuthTag:    tag,
	}, nil
}

func (c *envelopeCipher) Decrypt(env *cryptoDomain.Envelope, passphrase string) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, cryptoDomain.ErrIntegrity
	}

	key, err := c.kdf.DeriveKey(passphrase, env.Salt)
	if err != nil {
		return nil, cryptoDomain.ErrIntegrity
	}
	defer cryptoDomain.Zero(key)

	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, cryptoDomain.ErrIntegrity
	}

	return aead.Open(env.Ciphertext, env.AuthTag, env.IV)
}
