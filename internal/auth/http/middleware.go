package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
	authUseCase "github.com/allisson/filedrop/internal/auth/usecase"
	"github.com/allisson/filedrop/internal/httputil"
)

const bearerPrefix = "bearer "

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func BearerToken(authHeader string) (string, bool) {
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	return token, token != ""
}

// AuthenticationMiddleware resolves the Bearer token in the Authorization
// header to a principal and stores it in the request context.
//
// Missing, malformed, forged and expired tokens all yield 401.
//
// Usage:
//
//	router.Use(AuthenticationMiddleware(tokenUseCase, logger))
//	router.GET("/v1/files", func(c *gin.Context) {
//	    principal, _ := GetPrincipal(c.Request.Context())
//	    ...
//	})
func AuthenticationMiddleware(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, authDomain.ErrMissingToken, logger)
			c.Abort()
			return
		}

		principal, err := tokenUseCase.Authenticate(c.Request.Context(), token)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), principal))

		logger.Debug("authentication successful", slog.String("user_id", principal.UserID.String()))

		c.Next()
	}
}
