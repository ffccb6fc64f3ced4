// Package photo manages uploaded image files on local disk.
// Files live under <root>/photos/ with generated UUID filenames; the rest of
// the system only ever sees root-relative paths like "photos/<uuid>.png",
// which are safe to persist and to prefix with any base URL later.
package photo

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/travelrecords/backend/internal/domain"
)

// photosDir is the subdirectory of the upload root that holds image files.
const photosDir = "photos"

// allowedExts is the fixed allow-list of image file extensions.
var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// StoredPhoto is the result of a successful Save.
type StoredPhoto struct {
	// RelativePath is root-relative with forward slashes ("photos/<name>").
	RelativePath string
}

// Store writes, serves, and deletes photo files under a root directory.
type Store struct {
	root string
}

// NewStore creates a Store rooted at root, creating root/photos if needed.
// MkdirAll makes the call idempotent across restarts.
func NewStore(root string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("photo.NewStore: resolve root: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(absRoot, photosDir), 0o750); err != nil {
		return nil, fmt.Errorf("photo.NewStore: create upload dir: %w", err)
	}
	return &Store{root: absRoot}, nil
}

// Save validates the declared content type and filename extension, then writes
// the bytes under a freshly generated filename so concurrent uploads can never
// collide. Returns wrapped domain.ErrValidation for non-image content types
// and extensions outside the allow-list.
func (s *Store) Save(r io.Reader, contentType, filename string) (StoredPhoto, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return StoredPhoto{}, fmt.Errorf("%w: file must be an image", domain.ErrValidation)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return StoredPhoto{}, fmt.Errorf("%w: only JPG, PNG and GIF files are supported", domain.ErrValidation)
	}

	rel := path.Join(photosDir, uuid.NewString()+ext)
	dest, err := s.abs(rel)
	if err != nil {
		return StoredPhoto{}, fmt.Errorf("photo.Store.Save: %w", err)
	}

	if err := writeAtomic(dest, r); err != nil {
		return StoredPhoto{}, fmt.Errorf("photo.Store.Save: %w", err)
	}
	return StoredPhoto{RelativePath: rel}, nil
}

// Delete removes the file at the given relative path.
// Deleting a file that does not exist is not an error.
func (s *Store) Delete(relativePath string) error {
	abs, err := s.abs(relativePath)
	if err != nil {
		return fmt.Errorf("photo.Store.Delete: %w", err)
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("photo.Store.Delete: %w", err)
	}
	return nil
}

// Exists reports whether a regular file is present at the relative path.
// Used by the service to check that a record's photo_path references a real
// upload before persisting it.
func (s *Store) Exists(relativePath string) bool {
	abs, err := s.abs(relativePath)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Open opens the file at the relative path for serving and returns its
// modification time for use with http.ServeContent.
// Returns domain.ErrNotFound when the file does not exist.
func (s *Store) Open(relativePath string) (io.ReadSeekCloser, time.Time, error) {
	abs, err := s.abs(relativePath)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("photo.Store.Open: %w", err)
	}
	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, fmt.Errorf("photo.Store.Open: %w", domain.ErrNotFound)
		}
		return nil, time.Time{}, fmt.Errorf("photo.Store.Open: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, time.Time{}, fmt.Errorf("photo.Store.Open: %w", err)
	}
	return f, info.ModTime(), nil
}

// URL builds the browsable URL for a stored photo: {base}/uploads/{rel}.
// Pure string assembly — no filesystem access.
func URL(baseURL, relativePath string) string {
	return strings.TrimRight(baseURL, "/") + "/uploads/" + relativePath
}

// abs resolves a relative path to a concrete filesystem path under the root.
// filepath.Rel verifies the result still lives under root, rejecting any
// traversal attempt ("../..", absolute paths) a caller might smuggle in.
func (s *Store) abs(relativePath string) (string, error) {
	joined := filepath.Join(s.root, filepath.Clean(filepath.FromSlash(relativePath)))
	rel, err := filepath.Rel(s.root, joined)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes upload root", relativePath)
	}
	return joined, nil
}

// writeAtomic streams r to dest via a temp file + rename, so a crash mid-write
// never leaves a half-written file at the final path.
func writeAtomic(dest string, r io.Reader) error {
	tmp := dest + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("open tmp %q: %w", tmp, err)
	}

	_, werr := io.Copy(f, r)
	cerr := f.Close()

	if werr != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("write: %w", werr)
	}
	if cerr != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("flush: %w", cerr)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("rename to %q: %w", dest, err)
	}
	return nil
}
