// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers selectable with STORAGE_DRIVER.
const (
	DriverMinio    = "minio"
	DriverS3       = "s3"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port   string `env:"PORT" env-default:"8080"`
	AppEnv string `env:"APP_ENV" env-default:"development"`

	// MaxDuration is the execution ceiling for a single request.
	MaxDuration      time.Duration `env:"MAX_DURATION" env-default:"60s"`
	FetchConcurrency int           `env:"FETCH_CONCURRENCY" env-default:"8"`

	// JWTSecret enables bearer-token protection of mutating actions when set.
	JWTSecret string `env:"AUTH_JWT_SECRET"`

	StorageDriver     string `env:"STORAGE_DRIVER" env-default:"minio"`
	StorageEndpoint   string `env:"STORAGE_ENDPOINT" env-default:"localhost:9000"`
	StorageAccessKey  string `env:"STORAGE_ACCESS_KEY" env-default:"minioadmin"`
	StorageSecretKey  string `env:"STORAGE_SECRET_KEY" env-default:"minioadmin"`
	StorageBucket     string `env:"STORAGE_BUCKET" env-default:"media"`
	StorageRegion     string `env:"STORAGE_REGION" env-default:"us-east-1"`
	StorageUseSSL     bool   `env:"STORAGE_USE_SSL" env-default:"false"`
	StoragePathStyle  bool   `env:"STORAGE_PATH_STYLE" env-default:"false"`
	StoragePublicBase string `env:"STORAGE_PUBLIC_BASE" env-default:"http://localhost:9000/media"`

	// DatabaseURL is only used by the postgres driver.
	DatabaseURL string `env:"DATABASE_URL"`

	// ServiceBaseURL is this service's externally reachable origin. The memory
	// and postgres drivers hand out URLs below <ServiceBaseURL>/blobs.
	ServiceBaseURL string `env:"SERVICE_BASE_URL"`
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverMinio, DriverS3, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (use minio, s3, postgres or memory)", c.StorageDriver)
	}
	if c.MaxDuration <= 0 {
		return fmt.Errorf("MAX_DURATION must be positive, got %s", c.MaxDuration)
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", c.FetchConcurrency)
	}
	return nil
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LocalBlobsBase is the public base for drivers served by this process.
func (c *Config) LocalBlobsBase() string {
	base := c.ServiceBaseURL
	if base == "" {
		base = "http://localhost:" + c.Port
	}
	return strings.TrimRight(base, "/") + "/blobs"
}

// AuthEnabled reports whether mutating actions require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
