// Package fetch retrieves the raw JSON payloads the documentation index is
// built from, either over HTTP or from a local export directory, with a
// compressed on-disk cache for repeat loads.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Payload downloads or reads one payload. location is an http(s) URL or a
// filesystem path. A missing location returns os.ErrNotExist so callers can
// treat optional payloads as absent rather than failed.
func Payload(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("payload location not configured: %w", os.ErrNotExist)
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return fetchHTTP(ctx, location)
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("reading payload %s: %w", location, err)
	}
	return data, nil
}

func fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "csdex/0.1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("payload %s: %w", url, os.ErrNotExist)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("server returned %d for %s: %s", resp.StatusCode, url, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading payload body: %w", err)
	}
	return data, nil
}
