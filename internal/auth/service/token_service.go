package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
	apperrors "github.com/allisson/filedrop/internal/errors"
)

const tokenIssuer = "filedrop"

// claims is the JWT payload: the user ID travels in "sub".
type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// jwtTokenService implements TokenService with HS256 JWTs.
type jwtTokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService signing with secret. Tokens expire
// ttl after issuance.
func NewTokenService(secret []byte, ttl time.Duration) (TokenService, error) {
	if len(secret) < 32 {
		return nil, apperrors.New("token secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		return nil, apperrors.New("token expiration must be positive")
	}
	return &jwtTokenService{secret: secret, ttl: ttl}, nil
}

func (s *jwtTokenService) Sign(principal authDomain.Principal, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   principal.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: principal.Email,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(err, "failed to sign token")
	}
	return signed, expiresAt, nil
}

func (s *jwtTokenService) Parse(token string) (*authDomain.Principal, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, authDomain.ErrInvalidToken
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}

	return &authDomain.Principal{UserID: userID, Email: c.Email}, nil
}
