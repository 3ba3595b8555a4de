package fetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/csdex/csdex/internal/config"
	"github.com/klauspost/compress/zstd"
)

func cachePath(name string) string {
	return filepath.Join(config.PayloadCacheDir(), name+".json.zst")
}

// SaveCache compresses and saves raw payload bytes to disk under a payload
// name ("catalog", "comments", ...).
func SaveCache(data []byte, name string) error {
	dir := config.PayloadCacheDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating payload cache dir: %w", err)
	}

	f, err := os.Create(cachePath(name))
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer f.Close()

	w, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing compressed payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// LoadCache loads and decompresses a cached payload from disk.
func LoadCache(name string) ([]byte, error) {
	f, err := os.Open(cachePath(name))
	if err != nil {
		return nil, fmt.Errorf("opening cache file: %w", err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing payload %s: %w", name, err)
	}
	return data, nil
}

// HasCache checks whether a cached payload file exists on disk.
func HasCache(name string) bool {
	_, err := os.Stat(cachePath(name))
	return err == nil
}

// ClearCache removes all cached payload files.
func ClearCache() error {
	if err := os.RemoveAll(config.PayloadCacheDir()); err != nil {
		return fmt.Errorf("removing payload cache: %w", err)
	}
	return nil
}
