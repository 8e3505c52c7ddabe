// Package config loads process configuration from LABERAER_* environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage selects the persistence backend.
type Storage struct {
	Driver      string `env:"LABERAER_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"LABERAER_SQLITE_PATH"    envDefault:"laberaer.db"`
	PostgresDSN string `env:"LABERAER_POSTGRES_DSN"`
}

// S3 configures the S3-compatible blob driver.
type S3 struct {
	Bucket    string `env:"LABERAER_BLOB_S3_BUCKET"`
	Region    string `env:"LABERAER_BLOB_S3_REGION"     envDefault:"us-east-1"`
	Endpoint  string `env:"LABERAER_BLOB_S3_ENDPOINT"`
	PathStyle bool   `env:"LABERAER_BLOB_S3_PATH_STYLE" envDefault:"false"`
	// Static credentials; empty falls back to the default AWS chain.
	AccessKeyID     string `env:"LABERAER_BLOB_S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"LABERAER_BLOB_S3_SECRET_ACCESS_KEY"`
	SessionToken    string `env:"LABERAER_BLOB_S3_SESSION_TOKEN"`
}

// Blob selects where exported spreadsheets are written.
type Blob struct {
	Driver string `env:"LABERAER_BLOB_DRIVER"  envDefault:"fs"`
	FSRoot string `env:"LABERAER_BLOB_FS_ROOT" envDefault:"exports"`
	// URLExpiry bounds presigned download links.
	URLExpiry time.Duration `env:"LABERAER_BLOB_URL_EXPIRY" envDefault:"15m"`
	S3        S3
}

// Log configures the process logger.
type Log struct {
	Level  string `env:"LABERAER_LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LABERAER_LOG_FORMAT" envDefault:"console"`
}

// Config is the full process configuration.
type Config struct {
	Storage Storage
	Blob    Blob
	Log     Log
	// Actor is the id signed in for CLI sessions.
	Actor string `env:"LABERAER_ACTOR" envDefault:"admin-001"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses an explicit environment map; unset keys take their defaults.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
