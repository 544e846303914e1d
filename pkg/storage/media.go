package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Object is one file handed to a media host.
type Object struct {
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult identifies a stored object and its public URL.
type UploadResult struct {
	Key string
	URL string
}

// MediaStore is implemented by every image host driver.
type MediaStore interface {
	Upload(ctx context.Context, obj Object) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

// ObjectKey builds a collision resistant key under folder, keeping the
// original extension or deriving one from the content type.
func ObjectKey(folder, filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = imageExtension(contentType)
	}
	name := fmt.Sprintf("%d_%s%s", time.Now().UTC().UnixNano(), randomSuffix(), ext)
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

func imageExtension(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
