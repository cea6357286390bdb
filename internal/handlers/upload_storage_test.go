package handlers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeDeleteUploadRemovesContainedFile(t *testing.T) {
	root := t.TempDir()
	old := uploadsRoot
	SetUploadsRoot(root)
	defer SetUploadsRoot(old)

	uploadsDir := filepath.Join(root, "uploads")
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(uploadsDir, "photo.jpg")
	if err := os.WriteFile(target, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := safeDeleteUpload("/uploads/photo.jpg"); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatal("expected the upload to be deleted")
	}
}

func TestSafeDeleteUploadIgnoresForeignPaths(t *testing.T) {
	root := t.TempDir()
	old := uploadsRoot
	SetUploadsRoot(root)
	defer SetUploadsRoot(old)

	outside := filepath.Join(root, "secret.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	// none of these should touch anything
	for _, p := range []string{
		"",
		"/secret.txt",
		"https://cdn.example.com/uploads/x.jpg",
		"/uploads/../secret.txt",
	} {
		if err := safeDeleteUpload(p); err != nil {
			t.Fatalf("safeDeleteUpload(%q) = %v", p, err)
		}
	}

	if _, err := os.Stat(outside); err != nil {
		t.Fatal("file outside uploads must not be deleted")
	}
}

func TestSafeDeleteUploadToleratesMissingFile(t *testing.T) {
	old := uploadsRoot
	SetUploadsRoot(t.TempDir())
	defer SetUploadsRoot(old)

	// an already-gone file is not an error
	if err := safeDeleteUpload("/uploads/never-existed.png"); err != nil {
		t.Fatal(err)
	}
}
