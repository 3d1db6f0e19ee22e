package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // TABLED_DATABASE_URL (required)
	HTTPAddr    string // TABLED_HTTP_ADDR (default ":8080")
	NATSURL     string // TABLED_NATS_URL (optional, empty = no events)
	AuthToken   string // TABLED_AUTH_TOKEN (optional, empty = auth disabled)

	// Backup settings
	BackupInterval   time.Duration // TABLED_BACKUP_INTERVAL (default 3m; 0 = disabled)
	BackupS3Bucket   string        // TABLED_BACKUP_S3_BUCKET (enables S3 when set)
	BackupS3Endpoint string        // TABLED_BACKUP_S3_ENDPOINT (custom endpoint for MinIO)
	BackupS3Region   string        // TABLED_BACKUP_S3_REGION (default "us-east-1")
	BackupS3Key      string        // TABLED_BACKUP_S3_KEY (default "tabled/backup.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("TABLED_DATABASE_URL"),
		HTTPAddr:         envOrDefault("TABLED_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("TABLED_NATS_URL"),
		AuthToken:        os.Getenv("TABLED_AUTH_TOKEN"),
		BackupS3Bucket:   os.Getenv("TABLED_BACKUP_S3_BUCKET"),
		BackupS3Endpoint: os.Getenv("TABLED_BACKUP_S3_ENDPOINT"),
		BackupS3Region:   envOrDefault("TABLED_BACKUP_S3_REGION", "us-east-1"),
		BackupS3Key:      envOrDefault("TABLED_BACKUP_S3_KEY", "tabled/backup.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("TABLED_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("TABLED_BACKUP_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("TABLED_BACKUP_INTERVAL: %w", err)
		}
		c.BackupInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
