//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"caseguard/internal/app"
	"caseguard/internal/config"
	"caseguard/internal/database"
	"caseguard/internal/model"
)

const (
	adminEmail    = "admin@caseguard.test"
	adminPassword = "Admin-Passw0rd"
)

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *model.APIError `json:"error"`
}

// newServer starts the fully wired application against the database named by
// CASEGUARD_TEST_DATABASE_URL. Every table is truncated first, so point it at a
// disposable database.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	databaseURL := testDatabaseURL(t)
	resetDatabase(t, databaseURL)

	application, err := app.New(integrationConfig(databaseURL))
	require.NoError(t, err)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		server.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		application.Close(ctx)
	})
	return server
}

func testDatabaseURL(t *testing.T) string {
	t.Helper()

	databaseURL := os.Getenv("CASEGUARD_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("CASEGUARD_TEST_DATABASE_URL not set")
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return databaseURL
}

func integrationConfig(databaseURL string) *config.Config {
	return &config.Config{
		Environment:             config.EnvProduction,
		ServerPort:              "0",
		ServerReadHeaderTimeout: 10 * time.Second,
		ServerWriteTimeout:      30 * time.Second,
		ServerIdleTimeout:       time.Minute,
		RequestTimeout:          30 * time.Second,
		DatabaseURL:             databaseURL,
		DBMaxConns:              4,
		DBMinConns:              1,
		JWTSecret:               "integration-secret",
		JWTAccessTTL:            12 * time.Hour,
		JWTRenewTTL:             time.Hour,
		JWTRefreshTTL:           168 * time.Hour,
		Session:                 config.DefaultSession(),
		AuthzCreateRule:         config.CreateRuleView,
		CORSOrigins:             []string{"*"},
		RateLimitRPM:            0,
		AuthRateLimitRPM:        1000,
		AuditBufferSize:         64,
		BootstrapAdminEmail:     adminEmail,
		BootstrapAdminPassword:  adminPassword,
	}
}

func resetDatabase(t *testing.T, databaseURL string) {
	t.Helper()

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 2, 1)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.EnsureSchema(ctx))
	_, err = db.Pool.Exec(ctx, `TRUNCATE activity_logs, item_grants, collection_grants, items, collections, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func doJSON(t *testing.T, method string, url string, payload any, accessToken string) (*http.Response, envelope) {
	t.Helper()

	var body io.Reader = http.NoBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed envelope
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	}
	return resp, parsed
}

func decodeData(t *testing.T, env envelope, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}

func login(t *testing.T, server *httptest.Server, email string, password string) model.LoginResponse {
	t.Helper()

	resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/login",
		model.LoginRequest{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", env.Status)

	var session model.LoginResponse
	decodeData(t, env, &session)
	require.NotEmpty(t, session.Token)
	require.NotEmpty(t, session.RefreshToken)
	return session
}

func registerCollaborator(t *testing.T, server *httptest.Server, adminToken string, email string, password string) model.Principal {
	t.Helper()

	resp, env := doJSON(t, http.MethodPost, server.URL+"/api/v1/users", model.RegisterRequest{
		Email:             email,
		FullName:          "Integration Collaborator",
		Role:              string(model.RoleCollaborator),
		TemporaryPassword: password,
	}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var data model.UserData
	decodeData(t, env, &data)
	return data.User
}
