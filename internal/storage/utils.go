package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// GenerateReportFolderPath generates a consistent folder path for snapshots
// Format: YYYY/MM/DD/GridmixReport-YYYY-MM-DD-HH-MM-SS
func GenerateReportFolderPath(timestamp time.Time) string {
	timestamp = timestamp.UTC()
	return fmt.Sprintf("%04d/%02d/%02d/GridmixReport-%04d-%02d-%02d-%02d-%02d-%02d",
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Hour(), timestamp.Minute(), timestamp.Second())
}

// GetContentType returns the MIME type stored with a snapshot file
func GetContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// cleanPath normalizes a slash-separated storage path relative to a client's
// root. Paths with ".." segments are rejected.
func cleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %s", ErrInvalidPath, p)
		}
	}
	return strings.TrimPrefix(path.Clean("/"+p), "/"), nil
}

// ListReports returns the index pages stored through client, newest first.
// A limit of zero or less returns every snapshot.
func ListReports(ctx context.Context, client StorageClient, limit int) ([]string, error) {
	files, err := client.ListDir(ctx, "", true)
	if err != nil {
		return nil, err
	}

	var reports []string
	for _, f := range files {
		if path.Base(f) == "index.html" {
			reports = append(reports, f)
		}
	}

	// folder names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(reports)))
	if limit > 0 && limit < len(reports) {
		reports = reports[:limit]
	}
	return reports, nil
}

// LatestReportFile reads name from the newest stored snapshot
func LatestReportFile(ctx context.Context, client StorageClient, name string) ([]byte, string, error) {
	reports, err := ListReports(ctx, client, 1)
	if err != nil {
		return nil, "", err
	}
	if len(reports) == 0 {
		return nil, "", ErrNoReports
	}

	filePath := path.Join(path.Dir(reports[0]), name)
	exists, err := client.FileExists(ctx, filePath)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, "", fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
	}

	data, err := client.GetFile(ctx, filePath)
	if err != nil {
		return nil, "", err
	}
	return data, filePath, nil
}
