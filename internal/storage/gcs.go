package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"gridmix/internal/logger"
)

// GCSClient stores snapshots as objects in a Google Cloud Storage bucket.
// Paths are resolved below an optional object prefix.
type GCSClient struct {
	client *storage.Client
	bucket string
	prefix string
	log    *logger.Logger
}

// NewGCSClient creates a new GCS client for bucketName. Credentials come from
// the environment (Application Default Credentials or STORAGE_EMULATOR_HOST).
func NewGCSClient(ctx context.Context, bucketName, prefix string) (*GCSClient, error) {
	if strings.TrimSpace(bucketName) == "" {
		return nil, fmt.Errorf("GCS bucket name cannot be empty")
	}
	clean, err := cleanPath(prefix)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSClient{
		client: client,
		bucket: bucketName,
		prefix: clean,
		log:    logger.For(logger.ComponentStorage).With(logger.Fields{"bucket": bucketName}),
	}, nil
}

// Close closes the GCS client
func (g *GCSClient) Close() error {
	return g.client.Close()
}

// objectName maps a storage path to the object name inside the bucket
func (g *GCSClient) objectName(p string) (string, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	return path.Join(g.prefix, clean), nil
}

// CreateDir is a no-op: objects carry their full path and buckets have no
// directories.
func (g *GCSClient) CreateDir(ctx context.Context, dirPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := cleanPath(dirPath)
	return err
}

// StoreFile uploads fileData as the object at filePath
func (g *GCSClient) StoreFile(ctx context.Context, filePath string, fileData []byte) error {
	name, err := g.objectName(filePath)
	if err != nil {
		return err
	}

	writer := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = GetContentType(name)
	writer.CacheControl = "public, max-age=3600"
	writer.Metadata = map[string]string{
		"filename": path.Base(name),
	}

	if _, err := writer.Write(fileData); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write file to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS file upload: %w", err)
	}

	g.log.Debug("Object stored", logger.Fields{"object": name, "bytes": len(fileData)})
	return nil
}

// GetFile downloads the object at filePath
func (g *GCSClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	name, err := g.objectName(filePath)
	if err != nil {
		return nil, err
	}

	reader, err := g.client.Bucket(g.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader for file %s: %w", filePath, err)
	}
	defer reader.Close()

	fileData, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return fileData, nil
}

// FileExists reports whether an object exists at filePath
func (g *GCSClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	name, err := g.objectName(filePath)
	if err != nil {
		return false, err
	}

	_, err = g.client.Bucket(g.bucket).Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", filePath, err)
	}
	return true, nil
}

// ListDir lists the objects below dirPath as paths relative to the client's
// prefix, sorted. Without recursive, objects in nested "folders" are left out.
func (g *GCSClient) ListDir(ctx context.Context, dirPath string, recursive bool) ([]string, error) {
	name, err := g.objectName(dirPath)
	if err != nil {
		return nil, err
	}

	query := &storage.Query{}
	if name != "" {
		query.Prefix = name + "/"
	}
	if !recursive {
		query.Delimiter = "/"
	}

	it := g.client.Bucket(g.bucket).Objects(ctx, query)
	var files []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", dirPath, err)
		}
		// synthetic folder entries from the delimiter
		if attrs.Name == "" {
			continue
		}
		rel := attrs.Name
		if g.prefix != "" {
			rel = strings.TrimPrefix(rel, g.prefix+"/")
		}
		files = append(files, rel)
	}

	sort.Strings(files)
	return files, nil
}

// ListReports returns the index pages of stored snapshots, newest first
func (g *GCSClient) ListReports(ctx context.Context, limit int) ([]string, error) {
	return ListReports(ctx, g, limit)
}
