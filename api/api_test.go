package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"threatshare/config"
	"threatshare/core"
	"threatshare/search"
	"threatshare/service"
	"threatshare/storage"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testJWTSecret = "test-secret-key-that-is-at-least-32-characters-long"

// envelope mirrors SuccessResponse with a typed payload
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type testServer struct {
	api   *API
	store *storage.MemoryIOCStorage
	cache *core.TieredCache
}

func newTestConfig(authEnabled bool) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Auth: config.AuthConfig{
			Enabled:        authEnabled,
			JWTSecret:      testJWTSecret,
			Issuer:         "threatshare",
			SensitiveRoles: []string{"admin", "analyst"},
		},
	}
}

// setupTestAPI wires the API to in-memory storage and a local cache
func setupTestAPI(t *testing.T, authEnabled bool) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()

	store := storage.NewMemoryIOCStorage(logger)
	cache := core.NewTieredCache(core.NewLocalCache(100, time.Minute), nil)
	engine := search.NewEngine(store, cache, search.DefaultConfig(), logger)
	svc := service.NewIOCService(store, cache, logger)

	return &testServer{
		api:   NewAPI(newTestConfig(authEnabled), engine, svc, store, nil, logger),
		store: store,
		cache: cache,
	}
}

// seed stores an IOC created at the given offset from a fixed base time
func (ts *testServer) seed(t *testing.T, iocType core.IOCType, value string, level core.ThreatLevel, confidence int, age time.Duration, mutate ...func(*core.IOC)) *core.IOC {
	t.Helper()
	ioc := core.NewIOC(iocType, value, level, confidence)
	ioc.CreatedAt = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Add(-age)
	ioc.UpdatedAt = ioc.CreatedAt
	ioc.Status = core.IOCStatusConfirmed
	for _, m := range mutate {
		m(ioc)
	}
	require.NoError(t, ts.store.CreateIOC(context.Background(), ioc))
	return ioc
}

func (ts *testServer) do(t *testing.T, method, target string, body io.Reader, token string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.api.Handler().ServeHTTP(w, r)
	return w
}

func signToken(t *testing.T, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func validClaims(username string, roles ...string) Claims {
	now := time.Now()
	return Claims{
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "threatshare",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.True(t, env.Success, w.Body.String())
	return env.Data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.False(t, resp.Success)
	return resp
}
