package handlers

import (
	"os"
	"path/filepath"
	"strings"
)

// uploadsRoot holds the base directory served for uploaded assets.
// Overridable for tests and via configuration at startup.
var uploadsRoot = "/app/public"

// SetUploadsRoot points upload storage at dir.
func SetUploadsRoot(dir string) {
	if dir != "" {
		uploadsRoot = dir
	}
}

// safeDeleteUpload removes a previously uploaded asset referenced by its
// public URL path (e.g. "/uploads/abc.jpg"). Only paths that resolve inside
// the uploads directory are touched; anything else is silently ignored, as is
// a file that is already gone.
func safeDeleteUpload(urlPath string) error {
	trimmed := strings.TrimSpace(urlPath)
	if trimmed == "" || !strings.HasPrefix(trimmed, "/uploads/") {
		return nil
	}

	uploadsDir := filepath.Join(uploadsRoot, "uploads")
	full := filepath.Clean(filepath.Join(uploadsRoot, filepath.FromSlash(trimmed)))

	rel, err := filepath.Rel(uploadsDir, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
