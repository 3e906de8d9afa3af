// Package http exposes the presence registry over a websocket gateway and a
// roster endpoint.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
	authHTTP "github.com/allisson/filedrop/internal/auth/http"
	authUseCase "github.com/allisson/filedrop/internal/auth/usecase"
	apperrors "github.com/allisson/filedrop/internal/errors"
	"github.com/allisson/filedrop/internal/httputil"
	"github.com/allisson/filedrop/internal/metrics"
	presenceDomain "github.com/allisson/filedrop/internal/presence/domain"
)

// Registry is the part of the presence registry the gateway drives.
type Registry interface {
	Connect(ctx context.Context, user presenceDomain.ConnectedUser, conn presenceDomain.Connection) error
	Disconnect(ctx context.Context, conn presenceDomain.Connection) error
	Roster(ctx context.Context) ([]presenceDomain.ConnectedUser, error)
}

// Options tunes the websocket gateway.
type Options struct {
	SendBuffer   int
	PingInterval time.Duration
	// CheckOrigin overrides the same-origin check during the upgrade. See AllowOrigins.
	CheckOrigin func(r *http.Request) bool
}

// PresenceHandler serves the websocket gateway and the roster endpoint.
type PresenceHandler struct {
	registry     Registry
	tokenUseCase authUseCase.TokenUseCase
	upgrader     websocket.Upgrader
	sendBuffer   int
	pingInterval time.Duration
	metrics      metrics.BusinessMetrics
	logger       *slog.Logger
}

// NewPresenceHandler creates a PresenceHandler.
func NewPresenceHandler(
	registry Registry,
	tokenUseCase authUseCase.TokenUseCase,
	opts Options,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *PresenceHandler {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 32
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	return &PresenceHandler{
		registry:     registry,
		tokenUseCase: tokenUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     opts.CheckOrigin,
		},
		sendBuffer:   opts.SendBuffer,
		pingInterval: opts.PingInterval,
		metrics:      businessMetrics,
		logger:       logger,
	}
}

// AllowOrigins returns an upgrade origin check that accepts requests without
// an Origin header, same-origin requests and any origin in origins. "*"
// accepts every origin.
func AllowOrigins(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[strings.TrimSuffix(strings.ToLower(origin), "/")] = struct{}{}
	}
	_, wildcard := allowed["*"]

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := allowed[strings.TrimSuffix(strings.ToLower(origin), "/")]
		return ok
	}
}

// handshakeToken reads the bearer token from the Authorization header, falling
// back to the token query parameter for browser clients that cannot set headers.
func handshakeToken(c *gin.Context) string {
	if token, ok := authHTTP.BearerToken(c.GetHeader("Authorization")); ok {
		return token
	}
	return c.Query("token")
}

// ServeWS upgrades an authenticated request to a presence websocket.
// GET /v1/ws - token in Authorization header or ?token=.
// Rejected handshakes get 401 before any upgrade.
func (h *PresenceHandler) ServeWS(c *gin.Context) {
	start := time.Now()
	principal, err := h.tokenUseCase.Authenticate(c.Request.Context(), handshakeToken(c))
	if err != nil {
		metrics.Observe(c.Request.Context(), h.metrics, "presence", "connect", start, err)
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the error response
		metrics.Observe(c.Request.Context(), h.metrics, "presence", "connect", start, err)
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	conn := newWSConnection(uuid.NewString(), ws, h.sendBuffer)
	user := presenceDomain.ConnectedUser{UserID: principal.UserID, Email: principal.Email}

	go conn.writePump(h.pingInterval)

	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.registry.Connect(ctx, user, conn); err != nil {
		metrics.Observe(ctx, h.metrics, "presence", "connect", start, err)
		h.logger.Warn("presence connect failed", slog.String("error", err.Error()))
		conn.Close()
		return
	}
	metrics.Observe(ctx, h.metrics, "presence", "connect", start, nil)

	h.logger.Info("user connected",
		slog.String("user_id", user.UserID.String()),
		slog.String("connection_id", conn.ID()),
	)

	conn.readPump(2 * h.pingInterval)

	conn.Close()
	if err := h.registry.Disconnect(ctx, conn); err != nil && !apperrors.Is(err, presenceDomain.ErrRegistryClosed) {
		h.logger.Warn("presence disconnect failed", slog.String("error", err.Error()))
	}
	h.logger.Info("user disconnected",
		slog.String("user_id", user.UserID.String()),
		slog.String("connection_id", conn.ID()),
	)
}

// OnlineUsersHandler returns the users currently connected.
// GET /v1/presence/online-users - requires authentication.
func (h *PresenceHandler) OnlineUsersHandler(c *gin.Context) {
	if _, ok := authHTTP.GetPrincipal(c.Request.Context()); !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingToken, h.logger)
		return
	}

	roster, err := h.registry.Roster(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": roster})
}
