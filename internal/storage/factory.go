package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gridmix/internal/config"
	"gridmix/internal/logger"
)

// NewStorageClient creates the snapshot storage client configured by cfg:
// a GCS bucket when GCS_BUCKET is set, the local reports directory otherwise
func NewStorageClient(ctx context.Context, cfg *config.Config) (StorageClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if bucket := strings.TrimSpace(cfg.GCSBucket); bucket != "" {
		gcsClient, err := NewGCSClient(ctx, bucket, cfg.GCSPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS storage client: %w", err)
		}
		logger.For(logger.ComponentStorage).Info("Using GCS storage", logger.Fields{
			"bucket": bucket,
			"prefix": cfg.GCSPrefix,
		})
		return gcsClient, nil
	}

	localClient, err := NewLocalStorageClient(cfg.LocalReportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local storage client: %w", err)
	}
	return localClient, nil
}

// Location describes where a client stores snapshots, for log lines and
// command output
func Location(client StorageClient) string {
	switch c := client.(type) {
	case *GCSClient:
		if c.prefix == "" {
			return "gs://" + c.bucket
		}
		return "gs://" + c.bucket + "/" + c.prefix
	case *LocalStorageClient:
		return c.BaseDir()
	default:
		return fmt.Sprintf("%T", client)
	}
}

// ObjectPath joins a stored path to the client's location
func ObjectPath(client StorageClient, p string) string {
	if local, ok := client.(*LocalStorageClient); ok {
		return filepath.Join(local.BaseDir(), filepath.FromSlash(p))
	}
	return Location(client) + "/" + p
}
