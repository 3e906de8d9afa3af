// Package http provides the API server, its router and the metrics server.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/filedrop/internal/auth/http"
	authUseCase "github.com/allisson/filedrop/internal/auth/usecase"
	"github.com/allisson/filedrop/internal/config"
	"github.com/allisson/filedrop/internal/metrics"
	presenceHTTP "github.com/allisson/filedrop/internal/presence/http"
	transferHTTP "github.com/allisson/filedrop/internal/transfer/http"
	userHTTP "github.com/allisson/filedrop/internal/user/http"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the API HTTP server.
type Server struct {
	db      *sql.DB
	storage Pinger
	router  *gin.Engine
	server  *http.Server
	logger  *slog.Logger
}

// Handlers groups the route handlers mounted by SetupRouter.
type Handlers struct {
	User     *userHTTP.UserHandler
	Token    *authHTTP.TokenHandler
	Presence *presenceHTTP.PresenceHandler
	Transfer *transferHTTP.TransferHandler
}

// NewServer creates a new API server. storage may be nil when readiness
// should only consider the database.
func NewServer(
	db *sql.DB,
	storage Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:      db,
		storage: storage,
		logger:  logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       2 * time.Minute,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter builds the Gin engine with every API route.
//
// Public: /health, /ready, /v1/auth/signup, /v1/auth/login and /v1/ws (which
// authenticates during the handshake). Everything else requires a Bearer token.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	handlers Handlers,
	tokenUseCase authUseCase.TokenUseCase,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	authGroup := v1.Group("/auth")
	if cfg.RateLimitTokenEnabled {
		authGroup.Use(authHTTP.TokenRateLimitMiddleware(
			ctx, cfg.RateLimitTokenRequestsPerSec, cfg.RateLimitTokenBurst, s.logger,
		))
	}
	authGroup.POST("/signup", handlers.User.SignupHandler)
	authGroup.POST("/login", handlers.Token.LoginHandler)

	v1.GET("/ws", handlers.Presence.ServeWS)

	authenticated := v1.Group("")
	authenticated.Use(authHTTP.AuthenticationMiddleware(tokenUseCase, s.logger))
	if cfg.RateLimitEnabled {
		authenticated.Use(authHTTP.RateLimitMiddleware(
			ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger,
		))
	}

	authenticated.GET("/presence/online-users", handlers.Presence.OnlineUsersHandler)

	files := authenticated.Group("/files")
	{
		files.GET("", handlers.Transfer.ListHandler)
		files.POST("/upload", handlers.Transfer.UploadHandler)
		files.POST("/download/:transfer_id", handlers.Transfer.DownloadHandler)
	}

	s.router = router
}

// Start starts the HTTP server. SetupRouter must be called first.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler returns the configured router, or nil before SetupRouter.
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		return nil
	}
	return s.router
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports 503 until both the database and the blob store answer.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if s.storage != nil {
		if err := s.storage.Ping(ctx); err != nil {
			s.logger.Warn("storage not reachable", slog.Any("error", err))
			components["storage"] = "error"
			ready = false
		} else {
			components["storage"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
