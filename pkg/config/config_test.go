package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Minute, cfg.Pipeline.Timeout)
	assert.Equal(t, 4, cfg.Pipeline.FrameWorkers)
	assert.Equal(t, "./uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(100)*1024*1024, cfg.Upload.MaxSizeBytes)
	assert.Equal(t, float64(600), cfg.Upload.MaxDurationSeconds)
	assert.Equal(t, "./data", cfg.StoragePath)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("PIPELINE_TIMEOUT", "2m")
	t.Setenv("FRAME_WORKERS", "8")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "50")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 2*time.Minute, cfg.Pipeline.Timeout)
	assert.Equal(t, 8, cfg.Pipeline.FrameWorkers)
	assert.Equal(t, int64(50)*1024*1024, cfg.Upload.MaxSizeBytes)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("FRAME_WORKERS", "many")
	t.Setenv("PIPELINE_TIMEOUT", "soon")
	t.Setenv("LOG_LEVEL", "chatty")

	cfg := Load()

	assert.Equal(t, 4, cfg.Pipeline.FrameWorkers)
	assert.Equal(t, 10*time.Minute, cfg.Pipeline.Timeout)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}
