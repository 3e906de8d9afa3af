package service

import (
	"fmt"

	"golang.org/x/crypto/scrypt"

	cryptoDomain "github.com/allisson/filedrop/internal/crypto/domain"
)

// ScryptKeyDeriver derives AES-256 keys with scrypt.
type ScryptKeyDeriver struct {
	params cryptoDomain.KDFParams
}

// NewScryptKeyDeriver validates params and returns a deriver.
func NewScryptKeyDeriver(params cryptoDomain.KDFParams) (*ScryptKeyDeriver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &ScryptKeyDeriver{params: params}, nil
}

// DeriveKey returns a KeySize key for passphrase and salt. The caller owns
// the returned slice and should Zero it when done.
func (s *ScryptKeyDeriver) DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if len(salt) != cryptoDomain.SaltSize {
		return nil, cryptoDomain.ErrInvalidEnvelope
	}

	key, err := scrypt.Key([]byte(passphrase), salt, s.params.N, s.params.R, s.params.P, cryptoDomain.KeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
