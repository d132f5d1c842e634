package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DB_DRIVER", "LOG_LEVEL", "LOG_RETENTION_DAYS", "PRUNE_INTERVAL", "DEMO_REFRESH_INTERVAL", "MONGO_URI"} {
		t.Setenv(key, "")
	}

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "127.0.0.1:5000", cfg.Addr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 30*24*time.Hour, cfg.LogRetention)
	assert.Equal(t, 24*time.Hour, cfg.PruneInterval)
	assert.Equal(t, time.Hour, cfg.DemoRefreshInterval)
	assert.Empty(t, cfg.MongoURI)
}

func TestLoadFromDotEnv(t *testing.T) {
	for _, key := range []string{"ADDR", "DB_DRIVER", "LOG_LEVEL", "LOG_RETENTION_DAYS", "PRUNE_INTERVAL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	file := filepath.Join(t.TempDir(), ".env")
	content := "ADDR=:9000\nDB_DRIVER=SQLite\nLOG_LEVEL=debug\nLOG_RETENTION_DAYS=7\nPRUNE_INTERVAL=90m\n"
	assert.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg := Load(file)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 7*24*time.Hour, cfg.LogRetention)
	assert.Equal(t, 90*time.Minute, cfg.PruneInterval)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LOG_RETENTION_DAYS", "-3")
	t.Setenv("PRUNE_INTERVAL", "soon")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, 30*24*time.Hour, cfg.LogRetention)
	assert.Equal(t, 24*time.Hour, cfg.PruneInterval)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}
