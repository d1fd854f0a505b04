// Package blob is a disk-backed bucket store for user uploads. Buckets carry
// their own size and content-type limits, checked before anything is written.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mingle/infrastructure"
)

const (
	BucketAvatars   = "avatars"
	BucketChatFiles = "chat-files"

	maxAvatarSize   = 5 * 1024 * 1024
	maxChatFileSize = 10 * 1024 * 1024
)

var avatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type Store struct {
	baseDir string
	baseURL string
}

func NewStore(baseDir, baseURL string) (*Store, error) {
	for _, bucket := range []string{BucketAvatars, BucketChatFiles} {
		if err := os.MkdirAll(filepath.Join(baseDir, bucket), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create bucket dir: %w", err)
		}
	}
	return &Store{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload validates and writes the object, returning its bucket-relative path.
func (s *Store) Upload(bucket, path string, data []byte, contentType string) (string, error) {
	if err := s.Validate(bucket, int64(len(data)), contentType); err != nil {
		return "", err
	}

	path = sanitize(path)
	full := filepath.Join(s.baseDir, bucket, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return path, nil
}

// Validate applies the per-bucket constraints without touching disk, so
// handlers can reject oversized requests before reading the body.
func (s *Store) Validate(bucket string, size int64, contentType string) error {
	switch bucket {
	case BucketAvatars:
		if size > maxAvatarSize {
			return infrastructure.ErrFileTooLarge
		}
		if !avatarTypes[contentType] {
			return infrastructure.ErrUnsupportedType
		}
	case BucketChatFiles:
		if size > maxChatFileSize {
			return infrastructure.ErrFileTooLarge
		}
	default:
		return infrastructure.ErrInvalidInput
	}
	return nil
}

// ValidateImage is the stricter check for the image send action.
func (s *Store) ValidateImage(size int64, contentType string) error {
	if size > maxChatFileSize {
		return infrastructure.ErrFileTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") {
		return infrastructure.ErrUnsupportedType
	}
	return nil
}

func (s *Store) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/files/%s/%s", s.baseURL, bucket, sanitize(path))
}

// PathFromURL recovers the bucket-relative path from a public URL, for
// cleaning up replaced objects. Empty when the URL is not ours.
func (s *Store) PathFromURL(bucket, url string) string {
	prefix := fmt.Sprintf("%s/files/%s/", s.baseURL, bucket)
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func (s *Store) Remove(bucket, path string) error {
	path = sanitize(path)
	if path == "" {
		return infrastructure.ErrInvalidInput
	}
	err := os.Remove(filepath.Join(s.baseDir, bucket, filepath.FromSlash(path)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

// Dir is the filesystem root, exposed for the static file route.
func (s *Store) Dir() string { return s.baseDir }

func sanitize(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(path, "/")
	clean := parts[:0]
	for _, p := range parts {
		if p == "" || p == "." || p == ".." {
			continue
		}
		clean = append(clean, p)
	}
	return strings.Join(clean, "/")
}
