package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// TokenRateLimitMiddleware enforces a per-IP token bucket on the public
// signup and login endpoints to slow down credential stuffing.
//
// The client address comes from c.ClientIP(), which honors X-Forwarded-For
// and X-Real-IP only for trusted proxies.
func TokenRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(ctx, rps, burst)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if allowed, retryAfter := store.allow(clientIP); !allowed {
			logger.Debug("token rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))
			abortTooManyRequests(c, retryAfter, "Too many requests from this IP. Please retry after the specified delay.")
			return
		}

		c.Next()
	}
}
