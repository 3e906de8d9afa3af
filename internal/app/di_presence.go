package app

import (
	"fmt"
	"net/http"

	"github.com/allisson/filedrop/internal/httputil"
	presenceHTTP "github.com/allisson/filedrop/internal/presence/http"
	presenceService "github.com/allisson/filedrop/internal/presence/service"
)

// PresenceRegistry returns the presence registry. Its goroutine starts on
// first access and stops in Shutdown.
func (c *Container) PresenceRegistry() (*presenceService.Registry, error) {
	return lazy(c, &c.presenceRegistryInit, "presenceRegistry", &c.presenceRegistry, func() (*presenceService.Registry, error) {
		presenceMetrics, err := c.PresenceMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get presence metrics: %w", err)
		}
		return presenceService.NewRegistry(presenceMetrics, c.Logger()), nil
	})
}

// PresenceHandler returns the websocket gateway and roster handler.
func (c *Container) PresenceHandler() (*presenceHTTP.PresenceHandler, error) {
	return lazy(c, &c.presenceHandlerInit, "presenceHandler", &c.presenceHandler, c.initPresenceHandler)
}

func (c *Container) initPresenceHandler() (*presenceHTTP.PresenceHandler, error) {
	registry, err := c.PresenceRegistry()
	if err != nil {
		return nil, err
	}
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for presence handler: %w", err)
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	opts := presenceHTTP.Options{
		SendBuffer:   c.config.WSSendBuffer,
		PingInterval: c.config.WSPingInterval,
		CheckOrigin:  c.presenceOriginCheck(),
	}
	return presenceHTTP.NewPresenceHandler(registry, tokenUseCase, opts, businessMetrics, c.Logger()), nil
}

// presenceOriginCheck admits the CORS origins to the websocket gateway. It
// returns nil, leaving the same-origin default, when CORS is off.
func (c *Container) presenceOriginCheck() func(r *http.Request) bool {
	if !c.config.CORSEnabled {
		return nil
	}
	origins := httputil.ParseOrigins(c.config.CORSAllowOrigins)
	if len(origins) == 0 {
		return nil
	}
	return presenceHTTP.AllowOrigins(origins)
}
