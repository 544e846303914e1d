package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage persists media on disk under a base directory and exposes it
// below a public base URL.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Upload copies the object body into a fresh file under its folder.
func (s *LocalStorage) Upload(ctx context.Context, obj Object) (*UploadResult, error) {
	if obj.Body == nil {
		return nil, fmt.Errorf("media body missing")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := ObjectKey(obj.Folder, obj.Filename, obj.ContentType)
	target := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("prepare media directory: %w", err)
	}
	file, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(file, obj.Body); err != nil {
		file.Close() //nolint:errcheck
		_ = os.Remove(target)
		return nil, fmt.Errorf("write media stream: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("close media file: %w", err)
	}
	return &UploadResult{Key: key, URL: s.publicBaseURL + "/" + key}, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.resolve(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

// Dir exposes the directory served under the public URL.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

func (s *LocalStorage) resolve(key string) string {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	return filepath.Join(s.baseDir, clean)
}
