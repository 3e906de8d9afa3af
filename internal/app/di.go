// Package app provides the dependency injection container that assembles the
// application. Components are built lazily on first access and cached.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	authHTTP "github.com/allisson/filedrop/internal/auth/http"
	authService "github.com/allisson/filedrop/internal/auth/service"
	authUseCase "github.com/allisson/filedrop/internal/auth/usecase"
	"github.com/allisson/filedrop/internal/config"
	cryptoService "github.com/allisson/filedrop/internal/crypto/service"
	"github.com/allisson/filedrop/internal/database"
	"github.com/allisson/filedrop/internal/http"
	"github.com/allisson/filedrop/internal/metrics"
	presenceHTTP "github.com/allisson/filedrop/internal/presence/http"
	presenceService "github.com/allisson/filedrop/internal/presence/service"
	transferHTTP "github.com/allisson/filedrop/internal/transfer/http"
	"github.com/allisson/filedrop/internal/transfer/storage"
	transferUseCase "github.com/allisson/filedrop/internal/transfer/usecase"
	userHTTP "github.com/allisson/filedrop/internal/user/http"
	userUseCase "github.com/allisson/filedrop/internal/user/usecase"
)

// Container holds all application dependencies.
type Container struct {
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	presenceMetrics metrics.PresenceMetrics
	blobStore       *storage.BlobStore

	// Crypto
	envelopeCipher cryptoService.EnvelopeCipher

	// User
	userRepository userUseCase.UserRepository
	userUseCase    userUseCase.UseCase
	userHandler    *userHTTP.UserHandler

	// Auth
	passwordService authService.PasswordService
	tokenService    authService.TokenService
	tokenUseCase    authUseCase.TokenUseCase
	tokenHandler    *authHTTP.TokenHandler

	// Presence
	presenceRegistry *presenceService.Registry
	presenceHandler  *presenceHTTP.PresenceHandler

	// Transfer
	fileRepository     transferUseCase.FileRepository
	transferRepository transferUseCase.TransferRepository
	transferUseCase    transferUseCase.TransferUseCase
	transferHandler    *transferHTTP.TransferHandler

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu                     sync.Mutex
	loggerInit             sync.Once
	dbInit                 sync.Once
	txManagerInit          sync.Once
	metricsProviderInit    sync.Once
	businessMetricsInit    sync.Once
	presenceMetricsInit    sync.Once
	blobStoreInit          sync.Once
	envelopeCipherInit     sync.Once
	userRepositoryInit     sync.Once
	userUseCaseInit        sync.Once
	userHandlerInit        sync.Once
	passwordServiceInit    sync.Once
	tokenServiceInit       sync.Once
	tokenUseCaseInit       sync.Once
	tokenHandlerInit       sync.Once
	presenceRegistryInit   sync.Once
	presenceHandlerInit    sync.Once
	fileRepositoryInit     sync.Once
	transferRepositoryInit sync.Once
	transferUseCaseInit    sync.Once
	transferHandlerInit    sync.Once
	httpServerInit         sync.Once
	metricsServerInit      sync.Once
	initErrors             map[string]error
}

// NewContainer creates a new container for cfg.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// lazy runs init once under once and remembers its error under key, so a
// failed component keeps failing with the same error on later calls.
func lazy[T any](c *Container, once *sync.Once, key string, dst *T, init func() (T, error)) (T, error) {
	once.Do(func() {
		v, err := init()
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.initErrors[key] = err
			return
		}
		*dst = v
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err, exists := c.initErrors[key]; exists {
		var zero T
		return zero, err
	}
	return *dst, nil
}

// Logger returns the JSON logger configured from LOG_LEVEL.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection pool.
func (c *Container) DB() (*sql.DB, error) {
	return lazy(c, &c.dbInit, "db", &c.db, c.initDB)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return lazy(c, &c.txManagerInit, "txManager", &c.txManager, c.initTxManager)
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return lazy(c, &c.metricsProviderInit, "metricsProvider", &c.metricsProvider, c.initMetricsProvider)
}

// BusinessMetrics returns the operation metrics recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return lazy(c, &c.businessMetricsInit, "businessMetrics", &c.businessMetrics, c.initBusinessMetrics)
}

// PresenceMetrics returns the presence gauge and counters.
func (c *Container) PresenceMetrics() (metrics.PresenceMetrics, error) {
	return lazy(c, &c.presenceMetricsInit, "presenceMetrics", &c.presenceMetrics, c.initPresenceMetrics)
}

// HTTPServer returns the API server with its router configured. ctx bounds
// the background cleanup of the rate limiters.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	return lazy(c, &c.httpServerInit, "httpServer", &c.httpServer, func() (*http.Server, error) {
		return c.initHTTPServer(ctx)
	})
}

// MetricsServer returns the metrics server.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return lazy(c, &c.metricsServerInit, "metricsServer", &c.metricsServer, c.initMetricsServer)
}

// Shutdown releases every initialized resource. The presence registry is
// closed first so no notification races the database close.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error

	if c.presenceRegistry != nil {
		c.presenceRegistry.Close()
	}

	if c.blobStore != nil {
		if err := c.blobStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("blob store close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initPresenceMetrics() (metrics.PresenceMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpPresenceMetrics(), nil
	}
	return metrics.NewPresenceMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}
	blobStore, err := c.BlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get blob store for http server: %w", err)
	}
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	var handlers http.Handlers
	if handlers.User, err = c.UserHandler(); err != nil {
		return nil, fmt.Errorf("failed to get user handler: %w", err)
	}
	if handlers.Token, err = c.TokenHandler(); err != nil {
		return nil, fmt.Errorf("failed to get token handler: %w", err)
	}
	if handlers.Presence, err = c.PresenceHandler(); err != nil {
		return nil, fmt.Errorf("failed to get presence handler: %w", err)
	}
	if handlers.Transfer, err = c.TransferHandler(); err != nil {
		return nil, fmt.Errorf("failed to get transfer handler: %w", err)
	}

	server := http.NewServer(db, blobStore, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(ctx, c.config, handlers, tokenUseCase, metricsProvider, c.config.MetricsNamespace)
	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
