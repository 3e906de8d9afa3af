package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/filedrop/internal/config"
)

func TestNewContainer(t *testing.T) {
	cfg := &config.Config{LogLevel: "info", DBDriver: "postgres"}

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

func TestContainer_LoggerIsSingleton(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "invalid"} {
		t.Run(level, func(t *testing.T) {
			container := NewContainer(&config.Config{LogLevel: level})

			logger := container.Logger()
			require.NotNil(t, logger)
			assert.Same(t, logger, container.Logger())
		})
	}
}

func TestContainer_InitializationErrorsAreSticky(t *testing.T) {
	container := NewContainer(&config.Config{
		DBDriver:           "invalid_driver",
		DBConnectionString: "",
	})

	_, err1 := container.DB()
	require.Error(t, err1)

	_, err2 := container.DB()
	assert.Equal(t, err1, err2)

	_, err := container.UserRepository()
	assert.ErrorContains(t, err, "failed to get database for user repository")
}

func TestContainer_TokenServiceRequiresSecret(t *testing.T) {
	container := NewContainer(&config.Config{
		AuthTokenSecret:     "short",
		AuthTokenExpiration: time.Minute,
	})

	_, err := container.TokenService()
	assert.Error(t, err)
}

func TestContainer_TokenServiceConfigured(t *testing.T) {
	container := NewContainer(&config.Config{
		AuthTokenSecret:     "0123456789abcdef0123456789abcdef",
		AuthTokenExpiration: time.Minute,
	})

	svc, err := container.TokenService()
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestContainer_MetricsDisabledUsesNoOp(t *testing.T) {
	container := NewContainer(&config.Config{MetricsEnabled: false})

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	businessMetrics, err := container.BusinessMetrics()
	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)

	presenceMetrics, err := container.PresenceMetrics()
	require.NoError(t, err)
	assert.NotNil(t, presenceMetrics)
}

func TestContainer_InMemoryComponents(t *testing.T) {
	container := NewContainer(&config.Config{
		BlobStorageURL:   "mem://",
		MetricsEnabled:   true,
		MetricsNamespace: "filedrop_test",
	})

	store, err := container.BlobStore()
	require.NoError(t, err)
	require.NoError(t, store.Ping(context.Background()))

	cipher, err := container.EnvelopeCipher()
	require.NoError(t, err)
	assert.NotNil(t, cipher)

	registry, err := container.PresenceRegistry()
	require.NoError(t, err)
	assert.NotNil(t, registry)

	assert.NoError(t, container.Shutdown(context.Background()))
}

func TestContainer_ShutdownWithoutInitialization(t *testing.T) {
	container := NewContainer(&config.Config{})

	assert.NoError(t, container.Shutdown(context.Background()))
}

func TestContainer_PresenceOriginCheck(t *testing.T) {
	t.Run("nil when cors is disabled", func(t *testing.T) {
		container := NewContainer(&config.Config{CORSAllowOrigins: "https://app.example.com"})
		assert.Nil(t, container.presenceOriginCheck())
	})

	t.Run("nil without origins", func(t *testing.T) {
		container := NewContainer(&config.Config{CORSEnabled: true, CORSAllowOrigins: " , "})
		assert.Nil(t, container.presenceOriginCheck())
	})

	t.Run("admits cors origins", func(t *testing.T) {
		container := NewContainer(&config.Config{
			CORSEnabled:      true,
			CORSAllowOrigins: "https://app.example.com, https://admin.example.com",
		})
		check := container.presenceOriginCheck()
		require.NotNil(t, check)

		r := httptest.NewRequest(http.MethodGet, "http://api.example.com/v1/ws", nil)
		r.Header.Set("Origin", "https://admin.example.com")
		assert.True(t, check(r))

		r.Header.Set("Origin", "https://evil.example.com")
		assert.False(t, check(r))
	})
}
