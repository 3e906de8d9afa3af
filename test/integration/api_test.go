// Package integration runs the HTTP API end to end against PostgreSQL and MySQL.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/filedrop/internal/app"
	authDTO "github.com/allisson/filedrop/internal/auth/http/dto"
	"github.com/allisson/filedrop/internal/config"
	presenceDomain "github.com/allisson/filedrop/internal/presence/domain"
	"github.com/allisson/filedrop/internal/testutil"
	transferDTO "github.com/allisson/filedrop/internal/transfer/http/dto"
	userDTO "github.com/allisson/filedrop/internal/user/http/dto"
)

const testPassword = "Str0ng!Passw0rd"

type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	dbDriver  string
}

type wsMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

var drivers = []struct {
	name     string
	dbDriver string
}{
	{"PostgreSQL", "postgres"},
	{"MySQL", "mysql"},
}

func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	testutil.SkipIfNoDB(t, dbDriver)
	gin.SetMode(gin.TestMode)

	db := testutil.SetupDB(t, dbDriver)

	cfg := &config.Config{
		DBDriver:             dbDriver,
		DBConnectionString:   testutil.GetTestDSN(dbDriver),
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		ServerHost:           "localhost",
		ServerPort:           8080,
		LogLevel:             "error",
		AuthTokenSecret:      "integration-test-secret-at-least-32-bytes",
		AuthTokenExpiration:  time.Hour,
		BlobStorageURL:       "mem://",
		MaxUploadSizeBytes:   1 << 20,
		WSSendBuffer:         16,
		WSPingInterval:       time.Minute,
	}

	container := app.NewContainer(cfg)

	httpSrv, err := container.HTTPServer(context.Background())
	require.NoError(t, err, "failed to build http server")

	handler := httpSrv.Handler()
	require.NotNil(t, handler)

	return &integrationTestContext{
		container: container,
		db:        db,
		server:    httptest.NewServer(handler),
		dbDriver:  dbDriver,
	}
}

func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	ctx.server.Close()
	if err := ctx.container.Shutdown(context.Background()); err != nil {
		t.Logf("container shutdown: %v", err)
	}
	testutil.TeardownDB(t, ctx.db)
}

func (ctx *integrationTestContext) do(t *testing.T, req *http.Request, token string) (*http.Response, []byte) {
	t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // localhost test server
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (ctx *integrationTestContext) jsonRequest(
	t *testing.T,
	method, path string,
	body any,
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ctx.do(t, req, token)
}

func (ctx *integrationTestContext) upload(
	t *testing.T,
	token, recipient, key, fileName string,
	content []byte,
) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("recipient_email", recipient))
	require.NoError(t, w.WriteField("encryption_key", key))
	part, err := w.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, ctx.server.URL+"/v1/files/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ctx.do(t, req, token)
}

// signupAndLogin registers email and returns an access token for it.
func (ctx *integrationTestContext) signupAndLogin(t *testing.T, email string) string {
	t.Helper()

	resp, body := ctx.jsonRequest(t, http.MethodPost, "/v1/auth/signup",
		userDTO.SignupRequest{Email: email, Password: testPassword}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = ctx.jsonRequest(t, http.MethodPost, "/v1/auth/login",
		map[string]string{"email": email, "password": testPassword}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var token authDTO.LoginResponse
	require.NoError(t, json.Unmarshal(body, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func (ctx *integrationTestContext) dialWS(t *testing.T, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ctx.server.URL, "http") + "/v1/ws"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn
}

// waitForEvent reads from conn until an event named name arrives.
func waitForEvent(t *testing.T, conn *websocket.Conn, name string) wsMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %s", name)
		if msg.Event == name {
			return msg
		}
	}
}

func TestIntegration_Health(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			resp, body := ctx.jsonRequest(t, http.MethodGet, "/health", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status":"healthy"}`, string(body))

			resp, body = ctx.jsonRequest(t, http.MethodGet, "/ready", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status":"ready","components":{"database":"ok","storage":"ok"}}`, string(body))
		})
	}
}

func TestIntegration_Auth(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			ctx.signupAndLogin(t, "alice@example.com")

			t.Run("duplicate signup conflicts", func(t *testing.T) {
				resp, _ := ctx.jsonRequest(t, http.MethodPost, "/v1/auth/signup",
					userDTO.SignupRequest{Email: "ALICE@example.com", Password: testPassword}, "")
				assert.Equal(t, http.StatusConflict, resp.StatusCode)
			})

			t.Run("weak password rejected", func(t *testing.T) {
				resp, _ := ctx.jsonRequest(t, http.MethodPost, "/v1/auth/signup",
					userDTO.SignupRequest{Email: "weak@example.com", Password: "password"}, "")
				assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			})

			t.Run("wrong password unauthorized", func(t *testing.T) {
				resp, _ := ctx.jsonRequest(t, http.MethodPost, "/v1/auth/login",
					map[string]string{"email": "alice@example.com", "password": "Wr0ng!Password"}, "")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("protected routes need a token", func(t *testing.T) {
				resp, _ := ctx.jsonRequest(t, http.MethodGet, "/v1/files", nil, "")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

				resp, _ = ctx.jsonRequest(t, http.MethodGet, "/v1/files", nil, "not-a-token")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})
		})
	}
}

func TestIntegration_Transfer_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			aliceToken := ctx.signupAndLogin(t, "alice@example.com")
			bobToken := ctx.signupAndLogin(t, "bob@example.com")
			carolToken := ctx.signupAndLogin(t, "carol@example.com")

			aliceWS := ctx.dialWS(t, aliceToken)
			defer func() { _ = aliceWS.Close() }()
			waitForEvent(t, aliceWS, presenceDomain.EventOnlineUsers)

			content := []byte("quarterly numbers, do not forward\n")
			var transferID string

			t.Run("upload to unknown recipient", func(t *testing.T) {
				resp, _ := ctx.upload(t, aliceToken, "nobody@example.com", "s3cret", "report.txt", content)
				assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			})

			t.Run("upload", func(t *testing.T) {
				resp, body := ctx.upload(t, aliceToken, "bob@example.com", "s3cret", "report.txt", content)
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

				var out transferDTO.UploadResponse
				require.NoError(t, json.Unmarshal(body, &out))
				assert.Equal(t, "pending", out.Status)
				transferID = out.TransferID

				msg := waitForEvent(t, aliceWS, presenceDomain.EventFileUploadSuccess)
				assert.Contains(t, string(msg.Data), transferID)
			})

			t.Run("blob holds ciphertext only", func(t *testing.T) {
				var size int64
				var storageKey string
				err := ctx.db.QueryRow("SELECT size, storage_key FROM files").Scan(&size, &storageKey)
				require.NoError(t, err)
				assert.Equal(t, int64(len(content)), size)

				store, err := ctx.container.BlobStore()
				require.NoError(t, err)
				stored, err := store.Get(context.Background(), storageKey)
				require.NoError(t, err)
				assert.Len(t, stored, len(content))
				assert.NotEqual(t, content, stored)
			})

			t.Run("listing before download", func(t *testing.T) {
				resp, body := ctx.jsonRequest(t, http.MethodGet, "/v1/files", nil, bobToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var out transferDTO.ListTransfersResponse
				require.NoError(t, json.Unmarshal(body, &out))
				assert.Empty(t, out.Sent)
				require.Len(t, out.Received, 1)
				assert.Equal(t, transferID, out.Received[0].TransferID)
				assert.Equal(t, "alice@example.com", out.Received[0].CounterpartyEmail)
				assert.Equal(t, "pending", out.Received[0].Status)
			})

			path := "/v1/files/download/" + transferID

			t.Run("third party is denied", func(t *testing.T) {
				resp, _ := ctx.jsonRequest(t, http.MethodPost, path,
					transferDTO.DownloadRequest{DecryptionKey: "s3cret"}, carolToken)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("wrong key fails integrity and keeps status", func(t *testing.T) {
				resp, _ := ctx.jsonRequest(t, http.MethodPost, path,
					transferDTO.DownloadRequest{DecryptionKey: "wrong"}, bobToken)
				assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

				var status string
				require.NoError(t, ctx.db.QueryRow("SELECT status FROM transfers").Scan(&status))
				assert.Equal(t, "pending", status)
			})

			t.Run("receiver downloads", func(t *testing.T) {
				resp, body := ctx.jsonRequest(t, http.MethodPost, path,
					transferDTO.DownloadRequest{DecryptionKey: "s3cret"}, bobToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Equal(t, content, body)
				assert.Equal(t, `attachment; filename="report.txt"`, resp.Header.Get("Content-Disposition"))
				assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

				waitForEvent(t, aliceWS, presenceDomain.EventDownloadInitiation)
				msg := waitForEvent(t, aliceWS, presenceDomain.EventTransferUpdate)
				assert.Contains(t, string(msg.Data), `"downloaded"`)
			})

			t.Run("sender is denied even with the right key", func(t *testing.T) {
				resp, _ := ctx.jsonRequest(t, http.MethodPost, path,
					transferDTO.DownloadRequest{DecryptionKey: "s3cret"}, aliceToken)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("repeat download by receiver", func(t *testing.T) {
				resp, body := ctx.jsonRequest(t, http.MethodPost, path,
					transferDTO.DownloadRequest{DecryptionKey: "s3cret"}, bobToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Equal(t, content, body)
			})

			t.Run("listing after download", func(t *testing.T) {
				resp, body := ctx.jsonRequest(t, http.MethodGet, "/v1/files", nil, aliceToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var out transferDTO.ListTransfersResponse
				require.NoError(t, json.Unmarshal(body, &out))
				require.Len(t, out.Sent, 1)
				assert.Equal(t, "downloaded", out.Sent[0].Status)
				assert.Equal(t, "bob@example.com", out.Sent[0].CounterpartyEmail)
				assert.Empty(t, out.Received)
			})

			t.Run("online users", func(t *testing.T) {
				resp, body := ctx.jsonRequest(t, http.MethodGet, "/v1/presence/online-users", nil, bobToken)
				require.Equal(t, http.StatusOK, resp.StatusCode)
				assert.Contains(t, string(body), "alice@example.com")
			})
		})
	}
}
