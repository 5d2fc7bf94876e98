package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Cache stores blobs by key. A missing key is reported with ok == false and no
// error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Put(ctx context.Context, key string, data []byte) error
}

// Key builds the cache key for the result of the named function on arg.
func Key(name, arg string) string {
	return name + "::" + arg
}

// FileCache keeps blobs as gzip files in a directory
type FileCache struct {
	dataDir string
}

// NewFileCache creates a FileCache rooted at dataDir, creating the directory if
// needed. A leading "~/" is expanded to the home directory.
func NewFileCache(dataDir string) (*FileCache, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &FileCache{
		dataDir: dataDir,
	}, nil
}

// Dir returns the directory the cache writes to.
func (c *FileCache) Dir() string {
	return c.dataDir
}

// path returns the file for a key. Keys are escaped so an argument cannot
// point outside the data directory.
func (c *FileCache) path(key string) string {
	return filepath.Join(c.dataDir, url.PathEscape(key)+".gz")
}

// Get reads a blob from disk
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	data, err := decompress(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decompressing cache entry %s: %w", key, err)
	}

	return data, true, nil
}

// Put writes a blob to disk. The file is written under a temporary name and
// renamed so readers never see a partial entry.
func (c *FileCache) Put(_ context.Context, key string, data []byte) error {
	raw, err := compress(data)
	if err != nil {
		return fmt.Errorf("compressing cache entry %s: %w", key, err)
	}

	path := c.path(key)
	tmp, err := os.CreateTemp(c.dataDir, ".entry-*")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	return nil
}

// NopCache never stores anything.
type NopCache struct{}

// Get always misses.
func (NopCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Put discards data.
func (NopCache) Put(context.Context, string, []byte) error {
	return nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		gz.Close() // nolint:errcheck
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(raw []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer gz.Close() // nolint:errcheck

	return io.ReadAll(gz)
}
