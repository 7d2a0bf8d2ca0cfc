package reports

import (
	"context"
	"fmt"
	"path"

	"gridmix/internal/logger"
	"gridmix/internal/storage"
)

// StorageOrchestrator writes generated snapshot files through a storage client
type StorageOrchestrator struct {
	storage storage.StorageClient
	log     *logger.Logger
}

// NewStorageOrchestrator creates a new storage orchestrator
func NewStorageOrchestrator(client storage.StorageClient) *StorageOrchestrator {
	return &StorageOrchestrator{
		storage: client,
		log:     logger.For(logger.ComponentStorage),
	}
}

// StoreAllFiles stores the page, the chart images and the data files under
// files.FolderPath and returns the path of the stored index page
func (so *StorageOrchestrator) StoreAllFiles(ctx context.Context, files *GeneratedFiles) (string, error) {
	if err := so.storage.CreateDir(ctx, files.FolderPath); err != nil {
		return "", fmt.Errorf("failed to create report folder: %w", err)
	}

	for name, data := range files.JSONFiles {
		if err := so.storage.StoreFile(ctx, path.Join(files.FolderPath, name), data); err != nil {
			return "", fmt.Errorf("failed to store data file %s: %w", name, err)
		}
	}

	for name, data := range files.AssetFiles {
		if err := so.storage.StoreFile(ctx, path.Join(files.FolderPath, name), data); err != nil {
			return "", fmt.Errorf("failed to store asset file %s: %w", name, err)
		}
	}

	// the page goes last so an index only exists for a complete snapshot
	indexPath := path.Join(files.FolderPath, "index.html")
	if err := so.storage.StoreFile(ctx, indexPath, []byte(files.HTMLContent)); err != nil {
		return "", fmt.Errorf("failed to store HTML report: %w", err)
	}

	so.log.Info("Snapshot stored", logger.Fields{
		"folder": files.FolderPath,
		"files":  len(files.JSONFiles) + len(files.AssetFiles) + 1,
	})
	return indexPath, nil
}
