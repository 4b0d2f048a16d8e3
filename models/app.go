package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverBadger   = "badger"

	BlobDriverGCS  = "gcs"
	BlobDriverDisk = "disk"

	UploadsRoute = "/uploads"

	DBHost = "localhost"
	DBPort = "5432"
	DBName = "photoboard"
)

// Config is read once from the environment at startup and handed to the
// components that need it.
type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	StoreDriver    string `env:"STORE_DRIVER,default=postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/messages"`

	BlobDriver  string `env:"BLOB_DRIVER,default=gcs"`
	BucketName  string `env:"BUCKET_NAME"`
	ProjectID   string `env:"GOOGLE_CLOUD_PROJECT"`
	StorageHost string `env:"STORAGE_HOST,default=storage.cloud.google.com"`
	UploadDir   string `env:"UPLOAD_DIR,default=./uploads"`

	DisplayTimezone string `env:"DISPLAY_TIMEZONE,default=Asia/Tokyo"`
	RecentLimit     int    `env:"RECENT_LIMIT,default=5"`
	MaxUploadSize   int64  `env:"MAX_UPLOAD_SIZE,default=5242880"` // 5 MB

	RetryInitialInterval time.Duration `env:"BLOB_RETRY_INITIAL_INTERVAL,default=100ms"`
	RetryBackoffFactor   float64       `env:"BLOB_RETRY_BACKOFF_FACTOR,default=1.1"`
	RetryMaxInterval     time.Duration `env:"BLOB_RETRY_MAX_INTERVAL,default=10s"`
	RetryMaxAttempts     int           `env:"BLOB_RETRY_MAX_ATTEMPTS,default=6"`
	RetryMaxElapsed      time.Duration `env:"BLOB_RETRY_MAX_ELAPSED,default=30s"`
}

// RetryPolicy controls how blob writes are retried.
type RetryPolicy struct {
	InitialInterval time.Duration
	BackoffFactor   float64
	MaxInterval     time.Duration
	MaxAttempts     int
	MaxElapsed      time.Duration
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseDSN returns DATABASE_URL, falling back to a local database.
func (c Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s dbname=%s sslmode=disable", DBHost, DBPort, DBName)
}

// Bucket returns BUCKET_NAME, or the App Engine default bucket of the project.
func (c Config) Bucket() string {
	if c.BucketName != "" {
		return c.BucketName
	}
	if c.ProjectID != "" {
		return c.ProjectID + ".appspot.com"
	}
	return ""
}

// StorageBasePath is prefixed to a stored image name to build its public URL.
func (c Config) StorageBasePath() string {
	if c.BlobDriver == BlobDriverDisk {
		return UploadsRoute
	}
	return fmt.Sprintf("https://%s/%s", strings.TrimSuffix(c.StorageHost, "/"), c.Bucket())
}

func (c Config) RetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: c.RetryInitialInterval,
		BackoffFactor:   c.RetryBackoffFactor,
		MaxInterval:     c.RetryMaxInterval,
		MaxAttempts:     c.RetryMaxAttempts,
		MaxElapsed:      c.RetryMaxElapsed,
	}
}

func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("unknown DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverBadger:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.BlobDriver {
	case BlobDriverGCS:
		if c.Bucket() == "" {
			return fmt.Errorf("BUCKET_NAME or GOOGLE_CLOUD_PROJECT must be set for the gcs blob driver")
		}
	case BlobDriverDisk:
	default:
		return fmt.Errorf("unknown BLOB_DRIVER %q", c.BlobDriver)
	}
	if c.RecentLimit <= 0 {
		return fmt.Errorf("RECENT_LIMIT must be positive, got %d", c.RecentLimit)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("BLOB_RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.RetryBackoffFactor < 1 {
		return fmt.Errorf("BLOB_RETRY_BACKOFF_FACTOR must be >= 1, got %v", c.RetryBackoffFactor)
	}
	return nil
}
