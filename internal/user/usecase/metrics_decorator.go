package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/filedrop/internal/metrics"
	userDomain "github.com/allisson/filedrop/internal/user/domain"
)

const metricsDomain = "user"

type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{next: useCase, metrics: m}
}

func (u *userUseCaseWithMetrics) RegisterUser(
	ctx context.Context,
	input RegisterUserInput,
) (*userDomain.User, error) {
	start := time.Now()
	user, err := u.next.RegisterUser(ctx, input)
	metrics.Observe(ctx, u.metrics, metricsDomain, "register", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	email, password string,
) (*userDomain.User, error) {
	start := time.Now()
	user, err := u.next.Authenticate(ctx, email, password)
	metrics.Observe(ctx, u.metrics, metricsDomain, "authenticate", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) GetUserByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	start := time.Now()
	user, err := u.next.GetUserByEmail(ctx, email)
	metrics.Observe(ctx, u.metrics, metricsDomain, "get_by_email", start, err)
	return user, err
}

func (u *userUseCaseWithMetrics) GetUserByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	start := time.Now()
	user, err := u.next.GetUserByID(ctx, id)
	metrics.Observe(ctx, u.metrics, metricsDomain, "get_by_id", start, err)
	return user, err
}
