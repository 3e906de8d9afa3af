// Package http provides HTTP handlers for user-related operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/filedrop/internal/httputil"
	"github.com/allisson/filedrop/internal/user/http/dto"
	"github.com/allisson/filedrop/internal/user/usecase"
	appValidation "github.com/allisson/filedrop/internal/validation"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userUseCase usecase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// SignupHandler registers a new account.
// POST /v1/auth/signup - public.
// Returns 201 Created with the account (no password).
func (h *UserHandler) SignupHandler(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, appValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.RegisterUser(c.Request.Context(), req.ToRegisterUserInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("user registered", slog.String("user_id", user.ID.String()))
	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}
