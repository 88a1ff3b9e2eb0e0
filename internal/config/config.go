package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jmoralo/bc3tree/internal/bc3"
	"github.com/jmoralo/bc3tree/internal/records"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Storage
	DatabasePath string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// BC3 input
	Encoding string

	// Tree construction
	MaxTreeDepth int
	FailOnCycle  bool

	// Optional YAML file overriding the tier type groups.
	ClassificationPath string
	Classification     records.Classification
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("BC3TREE_API_KEY"),

		DatabasePath: envOr("DATABASE_PATH", "./bc3tree.db"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 33554432), // 32MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		Encoding: envOr("BC3_ENCODING", bc3.DefaultEncoding),

		MaxTreeDepth: envInt("MAX_TREE_DEPTH", 16),
		FailOnCycle:  envBool("FAIL_ON_CYCLE", false),

		ClassificationPath: os.Getenv("CLASSIFICATION_FILE"),
		Classification:     records.DefaultClassification(),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 33554432
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxTreeDepth <= 0 {
		cfg.MaxTreeDepth = 16
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("BC3TREE_API_KEY is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
