package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/filedrop/internal/errors"
)

// passwordService implements PasswordService using Argon2id.
type passwordService struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordService creates a PasswordService with the Moderate Argon2id policy.
func NewPasswordService() PasswordService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// only reachable with an invalid policy
		panic(err)
	}

	return &passwordService{
		hasher: hasher,
	}
}

func (s *passwordService) HashPassword(plain string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plain))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

func (s *passwordService) ComparePassword(plain, hashed string) bool {
	ok, err := s.hasher.Verify([]byte(plain), hashed)
	if err != nil {
		return false
	}
	return ok
}
