package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		StoreDriver:        StoreDriverBadger,
		BlobDriver:         BlobDriverGCS,
		BucketName:         "board-bucket",
		StorageHost:        "storage.cloud.google.com",
		DisplayTimezone:    "Asia/Tokyo",
		RecentLimit:        5,
		RetryMaxAttempts:   6,
		RetryBackoffFactor: 1.1,
	}
}

func TestConfig_StorageBasePath(t *testing.T) {
	req := require.New(t)
	c := validConfig()
	req.Equal("https://storage.cloud.google.com/board-bucket", c.StorageBasePath())

	c.BucketName = ""
	c.ProjectID = "my-app"
	req.Equal("my-app.appspot.com", c.Bucket())
	req.Equal("https://storage.cloud.google.com/my-app.appspot.com", c.StorageBasePath())

	c.BlobDriver = BlobDriverDisk
	req.Equal("/uploads", c.StorageBasePath())
}

func TestConfig_Validate(t *testing.T) {
	req := require.New(t)
	req.NoError(validConfig().Validate())

	c := validConfig()
	c.BucketName = ""
	req.Error(c.Validate())

	c = validConfig()
	c.StoreDriver = "mysql"
	req.Error(c.Validate())

	c = validConfig()
	c.RecentLimit = 0
	req.Error(c.Validate())

	c = validConfig()
	c.RetryBackoffFactor = 0.5
	req.Error(c.Validate())
}

func TestConfig_DatabaseDSN(t *testing.T) {
	req := require.New(t)
	c := validConfig()
	req.Equal("host=localhost port=5432 dbname=photoboard sslmode=disable", c.DatabaseDSN())
	c.DatabaseURL = "postgres://u:p@db/board"
	req.Equal("postgres://u:p@db/board", c.DatabaseDSN())
}

func TestConfig_RetryPolicy(t *testing.T) {
	c := validConfig()
	c.RetryInitialInterval = 100 * time.Millisecond
	c.RetryMaxInterval = 10 * time.Second
	c.RetryMaxElapsed = 30 * time.Second
	require.Equal(t, RetryPolicy{
		InitialInterval: 100 * time.Millisecond,
		BackoffFactor:   1.1,
		MaxInterval:     10 * time.Second,
		MaxAttempts:     6,
		MaxElapsed:      30 * time.Second,
	}, c.RetryPolicy())
}
