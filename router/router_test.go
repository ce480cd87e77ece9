package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fintrack/config"
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (http.Handler, *Services) {
	t.Helper()
	dir := t.TempDir()
	store, err := database.Open(filepath.Join(dir, "finance_tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Auth:   config.AuthConfig{JWTSecret: "router-secret", SessionTTL: time.Hour, UnlockAttempts: 3},
		Export: config.ExportConfig{Dir: filepath.Join(dir, "exports")},
	}
	middleware.InitJWT(cfg)
	svc := NewServices(cfg, store)
	return SetupRouter(cfg, svc), svc
}

func call(h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func tokenFrom(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Token
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := call(r, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSession_OpenBeforeSetup(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := call(r, "GET", "/api/db/income", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(r, "POST", "/api/auth/setup", "", map[string]string{"name": "Alex", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := tokenFrom(t, w)
	require.NotEmpty(t, token)

	w = call(r, "GET", "/api/db/income", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, "GET", "/api/db/income", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, "GET", "/api/db/income", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// setup cannot be replayed without a session
	w = call(r, "POST", "/api/auth/setup", "", map[string]string{"name": "Mallory", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// public routes stay public
	w = call(r, "GET", "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Alex"`)
}

func TestVerify_TokenOpensSession(t *testing.T) {
	r, svc := setupTestRouter(t)
	require.NoError(t, svc.Settings.CompleteSetup(serviceSetup()))

	w := call(r, "POST", "/api/auth/verify", "", map[string]string{"password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	token := tokenFrom(t, w)

	w = call(r, "GET", "/api/stats/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerify_RateLimited(t *testing.T) {
	r, svc := setupTestRouter(t)
	require.NoError(t, svc.Settings.CompleteSetup(serviceSetup()))

	for i := 0; i < 3; i++ {
		w := call(r, "POST", "/api/auth/verify", "", map[string]string{"password": "wrong"})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := call(r, "POST", "/api/auth/verify", "", map[string]string{"password": "pw"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := call(r, "OPTIONS", "/api/db/income", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func serviceSetup() service.SetupRequest {
	return service.SetupRequest{Name: "Alex", Password: "pw"}
}
