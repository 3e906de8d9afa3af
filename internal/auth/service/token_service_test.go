package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestTokenService(t *testing.T, ttl time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(testSecret, ttl)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService([]byte("short"), time.Minute)
	assert.ErrorContains(t, err, "at least 32 bytes")

	_, err = NewTokenService(testSecret, 0)
	assert.ErrorContains(t, err, "positive")
}

func TestTokenService_SignAndParse(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)
	principal := authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), Email: "alice@example.com"}
	now := time.Now()

	token, expiresAt, err := svc.Sign(principal, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(15*time.Minute), expiresAt, time.Second)

	got, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, principal, *got)
}

func TestTokenService_Parse(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)
	principal := authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), Email: "alice@example.com"}

	t.Run("expired", func(t *testing.T) {
		token, _, err := svc.Sign(principal, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenService([]byte("fedcba9876543210fedcba9876543210"), time.Minute)
		require.NoError(t, err)
		token, _, err := other.Sign(principal, time.Now())
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, _, err := svc.Sign(principal, time.Now())
		require.NoError(t, err)
		parts := strings.Split(token, ".")
		parts[1] = parts[1][:len(parts[1])-2] + "AA"

		_, err = svc.Parse(strings.Join(parts, "."))
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   principal.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("subject not a uuid", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		token, err := raw.SignedString(testSecret)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Parse("not.a.token")
		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})
}
