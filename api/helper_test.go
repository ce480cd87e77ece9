package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fintrack/config"
	"fintrack/database"
	"fintrack/middleware"
	"fintrack/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	router    *gin.Engine
	cfg       *config.Config
	store     *database.Store
	records   *service.RecordService
	settings  *service.SettingsService
	images    *service.ImageService
	analytics *service.AnalyticsService
	export    *service.ExportService
}

// setupTestEnv registers every handler on a fresh store without session checks.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	store, err := database.Open(filepath.Join(dir, "finance_tracker.db"),
		database.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", SessionTTL: time.Hour, UnlockAttempts: 5},
		Export: config.ExportConfig{Dir: filepath.Join(dir, "exports")},
	}
	middleware.InitJWT(cfg)

	env := &testEnv{
		router:    gin.New(),
		cfg:       cfg,
		store:     store,
		records:   service.NewRecordService(store),
		settings:  service.NewSettingsService(store),
		images:    service.NewImageService(store),
		analytics: service.NewAnalyticsService(store),
	}
	env.export = service.NewExportService(store, cfg.Export.Dir)

	auth := NewAuthHandler(cfg, env.settings)
	env.router.GET("/auth/first-run", auth.FirstRun)
	env.router.GET("/auth/profile", auth.Profile)
	env.router.POST("/auth/verify", auth.Verify)
	env.router.POST("/auth/setup", auth.Setup)

	images := NewImageHandler(env.images)
	env.router.POST("/images", images.Upload)
	env.router.GET("/images/:key", images.Get)
	env.router.DELETE("/images/:key", images.Delete)

	records := NewRecordHandler(env.records)
	env.router.GET("/db/:kind", records.List)
	env.router.POST("/db/:kind", records.Insert)
	env.router.GET("/db/:kind/:id", records.Get)
	env.router.PUT("/db/:kind/:id", records.Update)
	env.router.DELETE("/db/:kind/:id", records.Delete)

	settings := NewSettingsHandler(env.settings)
	env.router.GET("/settings", settings.Get)
	env.router.PUT("/settings", settings.Update)

	stats := NewStatsHandler(env.analytics)
	env.router.GET("/stats/dashboard", stats.Dashboard)
	env.router.GET("/stats/history", stats.History)
	env.router.GET("/stats/predictions", stats.Predictions)

	export := NewExportHandler(env.export, env.analytics)
	env.router.POST("/export/csv", export.WriteCSV)
	env.router.GET("/export/:file", export.Download)

	return env
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		if _, raw := body.([]byte); !raw {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope; data is decoded into out when given.
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Response {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(raw.Data, out))
	}
	return Response{Success: raw.Success, Error: raw.Error, Data: raw.Data}
}
