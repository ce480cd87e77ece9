package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeErrorMessage(t *testing.T) {
	fallback := "operation failed"
	testErr := errors.New("disk I/O error")

	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	// release hides details
	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "disk I/O error", SafeErrorMessage(testErr, fallback))

	// nil config is treated as development
	GlobalConfig = nil
	assert.Equal(t, "disk I/O error", SafeErrorMessage(testErr, fallback))
}

func TestLoadConfig_ExternalFileOverridesDefaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  mode: debug
database:
  path: ` + filepath.Join(dir, "ledger.db") + `
auth:
  jwt_secret: fixed-secret
  session_hours: 2
`)
	require.NoError(t, os.WriteFile(file, content, 0o600))

	cfg, err := LoadConfig(file)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "127.0.0.1:5173", cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "ledger.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dir, "exports"), cfg.Export.Dir)
	assert.Equal(t, "fixed-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 5, cfg.Auth.UnlockAttempts)
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	dir := t.TempDir()
	t.Setenv("FINTRACK_DATABASE_PATH", filepath.Join(dir, "env.db"))

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "env.db"), cfg.Database.Path)
	// generated when empty
	assert.Len(t, cfg.Auth.JWTSecret, 64)
}
