package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server   ServerConfig
	Pipeline PipelineConfig
	Upload   UploadConfig
	Services ServicesConfig

	StoragePath string
	LogLevel    logrus.Level
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PipelineConfig struct {
	// Timeout is the wall-clock budget for one session's pipeline run.
	Timeout      time.Duration
	FrameWorkers int
}

type UploadConfig struct {
	Dir                string
	MaxSizeBytes       int64
	MaxDurationSeconds float64
}

// ServicesConfig points at the external signal collaborators.
type ServicesConfig struct {
	FaceDetectorURL  string
	AudioMeasurerURL string
}

// Load reads configuration from the environment, with an optional .env
// file. Missing values fall back to defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Address:      getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			Timeout:      getEnvDuration("PIPELINE_TIMEOUT", 10*time.Minute),
			FrameWorkers: getEnvInt("FRAME_WORKERS", 4),
		},
		Upload: UploadConfig{
			Dir:                getEnv("UPLOAD_DIR", "./uploads"),
			MaxSizeBytes:       int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 100)) * 1024 * 1024,
			MaxDurationSeconds: float64(getEnvInt("MAX_VIDEO_DURATION", 600)),
		},
		Services: ServicesConfig{
			FaceDetectorURL:  getEnv("FACE_DETECTOR_URL", "http://localhost:8001"),
			AudioMeasurerURL: getEnv("AUDIO_MEASURER_URL", "http://localhost:8002"),
		},
		StoragePath: getEnv("STORAGE_PATH", "./data"),
		LogLevel:    getEnvLogLevel("LOG_LEVEL", logrus.InfoLevel),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvLogLevel(key string, fallback logrus.Level) logrus.Level {
	if v := os.Getenv(key); v != "" {
		if level, err := logrus.ParseLevel(v); err == nil {
			return level
		}
	}
	return fallback
}
