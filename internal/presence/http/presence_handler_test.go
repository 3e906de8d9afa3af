package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/filedrop/internal/auth/domain"
	authHTTP "github.com/allisson/filedrop/internal/auth/http"
	"github.com/allisson/filedrop/internal/auth/http/mocks"
	"github.com/allisson/filedrop/internal/metrics"
	presenceDomain "github.com/allisson/filedrop/internal/presence/domain"
	"github.com/allisson/filedrop/internal/presence/service"
)

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type gatewayFixture struct {
	server   *httptest.Server
	tokens   *mocks.MockTokenUseCase
	registry *service.Registry
}

func newGatewayFixture(t *testing.T, configure ...func(*Options)) *gatewayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := service.NewRegistry(metrics.NewNoOpPresenceMetrics(), logger)
	tokens := &mocks.MockTokenUseCase{}
	opts := Options{
		SendBuffer:   8,
		PingInterval: time.Second,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	handler := NewPresenceHandler(registry, tokens, opts, metrics.NewNoOpBusinessMetrics(), logger)

	router := gin.New()
	router.GET("/v1/ws", handler.ServeWS)
	server := httptest.NewServer(router)
	t.Cleanup(func() {
		registry.Close()
		server.Close()
	})

	return &gatewayFixture{server: server, tokens: tokens, registry: registry}
}

func (f *gatewayFixture) expectToken(token, email string) *authDomain.Principal {
	principal := &authDomain.Principal{UserID: uuid.Must(uuid.NewV7()), Email: email}
	f.tokens.On("Authenticate", mock.Anything, token).Return(principal, nil)
	return principal
}

func (f *gatewayFixture) dial(t *testing.T, query string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/v1/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if conn != nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}

func readEvent(t *testing.T, conn *websocket.Conn) wireEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev wireEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestPresenceHandler_ServeWS(t *testing.T) {
	t.Run("rejects handshake without token", func(t *testing.T) {
		f := newGatewayFixture(t)
		f.tokens.On("Authenticate", mock.Anything, "").Return(nil, authDomain.ErrMissingToken)

		_, resp, err := f.dial(t, "", nil)

		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		f := newGatewayFixture(t)
		f.tokens.On("Authenticate", mock.Anything, "forged").Return(nil, authDomain.ErrInvalidToken)

		_, resp, err := f.dial(t, "?token=forged", nil)

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("roster, online and offline events", func(t *testing.T) {
		f := newGatewayFixture(t)
		alice := f.expectToken("alice-token", "alice@example.com")
		bob := f.expectToken("bob-token", "bob@example.com")

		aliceConn, _, err := f.dial(t, "", http.Header{"Authorization": {"Bearer alice-token"}})
		require.NoError(t, err)

		first := readEvent(t, aliceConn)
		assert.Equal(t, presenceDomain.EventOnlineUsers, first.Event)
		var roster []presenceDomain.ConnectedUser
		require.NoError(t, json.Unmarshal(first.Data, &roster))
		require.Len(t, roster, 1)
		assert.Equal(t, alice.UserID, roster[0].UserID)

		bobConn, _, err := f.dial(t, "?token=bob-token", nil)
		require.NoError(t, err)
		assert.Equal(t, presenceDomain.EventOnlineUsers, readEvent(t, bobConn).Event)

		online := readEvent(t, aliceConn)
		assert.Equal(t, presenceDomain.EventUserOnline, online.Event)
		var who presenceDomain.UserOnlinePayload
		require.NoError(t, json.Unmarshal(online.Data, &who))
		assert.Equal(t, bob.UserID, who.UserID)
		assert.Equal(t, "bob@example.com", who.Email)

		require.NoError(t, bobConn.Close())

		offline := readEvent(t, aliceConn)
		assert.Equal(t, presenceDomain.EventUserOffline, offline.Event)
		assert.Contains(t, string(offline.Data), bob.UserID.String())
	})

	t.Run("reconnect evicts the previous socket", func(t *testing.T) {
		f := newGatewayFixture(t)
		alice := f.expectToken("alice-token", "alice@example.com")

		oldConn, _, err := f.dial(t, "?token=alice-token", nil)
		require.NoError(t, err)
		readEvent(t, oldConn)

		newConn, _, err := f.dial(t, "?token=alice-token", nil)
		require.NoError(t, err)
		readEvent(t, newConn)

		require.NoError(t, oldConn.SetReadDeadline(time.Now().Add(5*time.Second)))
		_, _, err = oldConn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

		conn, ok := f.registry.Lookup(context.Background(), alice.UserID)
		require.True(t, ok)
		assert.True(t, conn.Send(presenceDomain.Event{Name: "ping"}))
		assert.Equal(t, "ping", readEvent(t, newConn).Event)
	})
}

type fakeRegistry struct {
	roster []presenceDomain.ConnectedUser
	err    error
}

func (f *fakeRegistry) Connect(context.Context, presenceDomain.ConnectedUser, presenceDomain.Connection) error {
	return nil
}

func (f *fakeRegistry) Disconnect(context.Context, presenceDomain.Connection) error { return nil }

func (f *fakeRegistry) Roster(context.Context) ([]presenceDomain.ConnectedUser, error) {
	return f.roster, f.err
}

func TestPresenceHandler_ServeWSOrigin(t *testing.T) {
	allowApp := func(o *Options) {
		o.CheckOrigin = AllowOrigins([]string{"https://app.example.com"})
	}

	t.Run("allowed cross origin upgrades", func(t *testing.T) {
		f := newGatewayFixture(t, allowApp)
		f.expectToken("alice-token", "alice@example.com")

		conn, resp, err := f.dial(t, "?token=alice-token", http.Header{"Origin": {"https://app.example.com"}})

		require.NoError(t, err)
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
		assert.Equal(t, presenceDomain.EventOnlineUsers, readEvent(t, conn).Event)
	})

	t.Run("unlisted origin is forbidden", func(t *testing.T) {
		f := newGatewayFixture(t, allowApp)
		f.expectToken("alice-token", "alice@example.com")

		_, resp, err := f.dial(t, "?token=alice-token", http.Header{"Origin": {"https://evil.example.com"}})

		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("default rejects cross origin", func(t *testing.T) {
		f := newGatewayFixture(t)
		f.expectToken("alice-token", "alice@example.com")

		_, resp, err := f.dial(t, "?token=alice-token", http.Header{"Origin": {"https://app.example.com"}})

		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestAllowOrigins(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		host    string
		want    bool
	}{
		{name: "no origin header", origins: []string{"https://app.example.com"}, host: "api.example.com", want: true},
		{name: "listed origin", origins: []string{"https://app.example.com"}, origin: "https://app.example.com", host: "api.example.com", want: true},
		{name: "case and trailing slash", origins: []string{"https://App.example.com/"}, origin: "https://app.example.com", host: "api.example.com", want: true},
		{name: "same origin", origins: []string{"https://app.example.com"}, origin: "https://api.example.com", host: "api.example.com", want: true},
		{name: "unlisted origin", origins: []string{"https://app.example.com"}, origin: "https://evil.example.com", host: "api.example.com", want: false},
		{name: "wildcard", origins: []string{"*"}, origin: "https://anything.example.com", host: "api.example.com", want: true},
		{name: "malformed origin", origins: []string{"https://app.example.com"}, origin: "://bad", host: "api.example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://"+tt.host+"/v1/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}

			assert.Equal(t, tt.want, AllowOrigins(tt.origins)(r))
		})
	}
}

func TestPresenceHandler_OnlineUsersHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	roster := []presenceDomain.ConnectedUser{{UserID: uuid.Must(uuid.NewV7()), Email: "alice@example.com"}}

	t.Run("Success", func(t *testing.T) {
		handler := NewPresenceHandler(&fakeRegistry{roster: roster}, nil, Options{},
			metrics.NewNoOpBusinessMetrics(), logger)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/v1/presence/online-users", nil)
		c.Request = c.Request.WithContext(authHTTP.WithPrincipal(c.Request.Context(),
			&authDomain.Principal{UserID: uuid.Must(uuid.NewV7())}))

		handler.OnlineUsersHandler(c)

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Users []presenceDomain.ConnectedUser `json:"users"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, roster, body.Users)
	})

	t.Run("Error_Unauthenticated", func(t *testing.T) {
		handler := NewPresenceHandler(&fakeRegistry{}, nil, Options{}, metrics.NewNoOpBusinessMetrics(), logger)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/v1/presence/online-users", nil)

		handler.OnlineUsersHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
