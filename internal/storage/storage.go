// Package storage uploads produced artifacts to object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"media-job-service/internal/entity"
)

var ErrInvalidKey = errors.New("storage: invalid key")

// ObjectStore is the upload side of the storage collaborator. Upload is
// atomic-or-failed: on error nothing is assumed to exist at key.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ThumbnailKey is the object key of an asset's thumbnail.
func ThumbnailKey(assetID uuid.UUID, ext string) string {
	return fmt.Sprintf("thumbnails/%s%s", assetID, normalizeExt(ext, ".jpg"))
}

// RenditionKey is the object key of one rendition of an asset.
func RenditionKey(assetID uuid.UUID, tier entity.Tier, ext string) string {
	return fmt.Sprintf("renditions/%s/%s%s", assetID, tier, normalizeExt(ext, ".mp4"))
}

func normalizeExt(ext, fallback string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return fallback
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidKey
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func publicURL(base, key string) string {
	if base == "" {
		return key
	}
	return strings.TrimRight(base, "/") + "/" + key
}
