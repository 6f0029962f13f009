// Package storage keeps uploaded post images on disk or in an S3 bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"
)

// URLPrefix is the first segment of every stored image path. Images are
// served under /images/.
const URLPrefix = "images"

// FileStore saves and removes post images.
type FileStore interface {
	// Save stores the content of r and returns its path, e.g. "images/<name>".
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, path string) error
	// ServeHTTP serves a stored image requested as /images/<name>.
	http.Handler
}

// Discard removes path and only logs a failure. An empty path is ignored.
func Discard(ctx context.Context, store FileStore, logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := store.Remove(ctx, path); err != nil {
		logger.Warn("failed to remove image", "path", path, "error", err)
		return
	}
	logger.Debug("image removed", "path", path)
}

// objectName builds a unique, flat file name for an upload.
func objectName(original string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "image"
	}
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%s-%s", now.UTC().Format("20060102T150405.000000000"), base)
}

// nameFromPath returns the stored file name of an image path, rejecting
// anything outside the image prefix.
func nameFromPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	name := strings.TrimPrefix(p, URLPrefix+"/")
	if name == p || name == "" || strings.Contains(name, "/") || name == ".." {
		return "", fmt.Errorf("invalid image path %q", p)
	}
	return name, nil
}
