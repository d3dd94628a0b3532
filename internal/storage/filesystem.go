package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwywoo26-LR/cut-generation-client-sub000/internal/domain"
)

// FileStore persists generated images onto the local filesystem and serves
// them under a public base URL (the API server mounts the directory at
// /static).
type FileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore initializes a FileStore rooted at basePath. Relative paths are
// resolved against the working directory.
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if !filepath.IsAbs(basePath) {
		if abs, err := filepath.Abs(basePath); err == nil {
			basePath = abs
		}
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Put writes data under key and returns its durable URL. The content type is
// carried by the key extension.
func (s *FileStore) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("storage: empty payload")
	}
	saved, err := s.Write(ctx, key, data)
	if err != nil {
		return "", err
	}
	return s.URL(saved), nil
}

// URL maps a canonical key to its public URL.
func (s *FileStore) URL(key string) string {
	if s.baseURL == "" {
		return "/" + key
	}
	return s.baseURL + "/" + key
}

// Write persists the provided bytes at the given relative key and returns the
// canonicalized storage key. Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	// Write to a temp file first so a concurrent reader never sees a partial image.
	tmp := fullPath + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("storage: commit file: %w", err)
	}
	return cleanKey, nil
}

// KeyForURL maps a URL returned by Put back to its storage key.
func (s *FileStore) KeyForURL(url string) (string, error) {
	key := strings.TrimSpace(url)
	prefix := s.baseURL + "/"
	if s.baseURL == "" {
		prefix = "/"
	}
	if !strings.HasPrefix(key, prefix) {
		return "", fmt.Errorf("storage: %s is not served by this store", url)
	}
	return sanitizeKey(strings.TrimPrefix(key, prefix))
}

// Read returns the bytes stored behind a URL returned by Put.
func (s *FileStore) Read(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := s.KeyForURL(url)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}

var _ domain.ObjectStore = (*FileStore)(nil)
