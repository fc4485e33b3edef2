package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"ragstack/models"
)

// Downloader fetches the raw bytes of a source file.
type Downloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FileDownloader retrieves http(s) URLs over the network and plain paths from
// the local filesystem, so the directory watcher and the ingest API share one
// pipeline.
type FileDownloader struct {
	client *http.Client
}

func NewFileDownloader(client *http.Client) *FileDownloader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &FileDownloader{client: client}
}

func (d *FileDownloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		data, err := os.ReadFile(url)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrTransport, err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", models.ErrTransport, url, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", models.ErrTransport, url, err)
	}
	return data, nil
}
