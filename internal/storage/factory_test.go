package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gridmix/internal/config"
)

func TestNewStorageClient_Local(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := &config.Config{
		LocalReportsDir: dir,
	}

	client, err := NewStorageClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create local storage client: %v", err)
	}
	defer client.Close()

	if _, ok := client.(*LocalStorageClient); !ok {
		t.Errorf("Expected LocalStorageClient, got %T", client)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected reports directory to be created: %v", err)
	}
	if Location(client) != dir {
		t.Errorf("Expected location %s, got %s", dir, Location(client))
	}
	if got := ObjectPath(client, "2024/01/01/index.html"); got != filepath.Join(dir, "2024", "01", "01", "index.html") {
		t.Errorf("Unexpected object path %s", got)
	}
}

func TestNewStorageClient_GCS(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	t.Setenv("STORAGE_EMULATOR_HOST", srv.URL)

	cfg := &config.Config{
		LocalReportsDir: filepath.Join(t.TempDir(), "unused"),
		GCSBucket:       "gridmix-snapshots",
		GCSPrefix:       "china",
	}

	client, err := NewStorageClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create GCS storage client: %v", err)
	}
	defer client.Close()

	if _, ok := client.(*GCSClient); !ok {
		t.Errorf("Expected GCSClient, got %T", client)
	}
	if Location(client) != "gs://gridmix-snapshots/china" {
		t.Errorf("Unexpected location %s", Location(client))
	}
	if got := ObjectPath(client, "2024/01/01/index.html"); got != "gs://gridmix-snapshots/china/2024/01/01/index.html" {
		t.Errorf("Unexpected object path %s", got)
	}
	// the bucket replaces the local directory entirely
	if _, err := os.Stat(cfg.LocalReportsDir); !os.IsNotExist(err) {
		t.Error("Expected no local reports directory when GCS_BUCKET is set")
	}
}

func TestNewStorageClient_BlankBucketFallsBackToLocal(t *testing.T) {
	cfg := &config.Config{
		LocalReportsDir: filepath.Join(t.TempDir(), "out"),
		GCSBucket:       "   ",
	}

	client, err := NewStorageClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create storage client: %v", err)
	}
	defer client.Close()

	if _, ok := client.(*LocalStorageClient); !ok {
		t.Errorf("Expected LocalStorageClient fallback, got %T", client)
	}
}

func TestNewStorageClient_NilConfig(t *testing.T) {
	client, err := NewStorageClient(context.Background(), nil)
	if err == nil {
		if client != nil {
			client.Close()
		}
		t.Error("Expected error with nil config")
	}
}
