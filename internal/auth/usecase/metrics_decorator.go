package usecase

import (
	"context"
	"time"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
	"github.com/allisson/filedrop/internal/metrics"
)

// tokenUseCaseWithMetrics records login outcomes. Per-request token checks are
// already covered by the HTTP metrics and are passed through untouched.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)
	metrics.Observe(ctx, t.metrics, "auth", "login", start, err)
	return output, err
}

func (t *tokenUseCaseWithMetrics) Authenticate(ctx context.Context, token string) (*authDomain.Principal, error) {
	return t.next.Authenticate(ctx, token)
}
