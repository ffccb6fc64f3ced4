package photo_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelrecords/backend/internal/domain"
	"github.com/travelrecords/backend/internal/photo"
)

// newTestStore returns a Store rooted at a fresh temp directory.
// t.TempDir() is removed automatically when the test finishes.
func newTestStore(t *testing.T) (*photo.Store, string) {
	t.Helper()
	root := t.TempDir()
	s, err := photo.NewStore(root)
	require.NoError(t, err)
	return s, root
}

func TestNewStore_CreatesPhotosDir(t *testing.T) {
	_, root := newTestStore(t)

	info, err := os.Stat(filepath.Join(root, "photos"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewStore_Idempotent(t *testing.T) {
	root := t.TempDir()

	_, err := photo.NewStore(root)
	require.NoError(t, err)
	_, err = photo.NewStore(root)
	require.NoError(t, err)
}

func TestStore_Save(t *testing.T) {
	s, root := newTestStore(t)

	stored, err := s.Save(strings.NewReader("fake png bytes"), "image/png", "taipei.png")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.RelativePath, "photos/"),
		"relative path should live under photos/, got %q", stored.RelativePath)
	assert.True(t, strings.HasSuffix(stored.RelativePath, ".png"),
		"original extension should be preserved, got %q", stored.RelativePath)

	// The bytes must actually be on disk under the root.
	b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(stored.RelativePath)))
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(b))
}

func TestStore_Save_NonImageContentType(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Save(strings.NewReader("hello"), "text/plain", "notes.png")

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStore_Save_UnsupportedExtension(t *testing.T) {
	s, _ := newTestStore(t)

	for _, name := range []string{"photo.bmp", "photo.webp", "photo", "photo.png.exe"} {
		_, err := s.Save(strings.NewReader("bytes"), "image/png", name)
		assert.ErrorIs(t, err, domain.ErrValidation, "filename %q should be rejected", name)
	}
}

func TestStore_Save_UppercaseExtensionAccepted(t *testing.T) {
	s, _ := newTestStore(t)

	stored, err := s.Save(strings.NewReader("bytes"), "image/jpeg", "HOLIDAY.JPG")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.RelativePath, ".jpg"))
}

func TestStore_Save_UniqueFilenames(t *testing.T) {
	s, _ := newTestStore(t)

	first, err := s.Save(strings.NewReader("same bytes"), "image/png", "dup.png")
	require.NoError(t, err)
	second, err := s.Save(strings.NewReader("same bytes"), "image/png", "dup.png")
	require.NoError(t, err)

	// Two uploads of the same source file must never collide.
	assert.NotEqual(t, first.RelativePath, second.RelativePath)
}

func TestStore_Delete(t *testing.T) {
	s, root := newTestStore(t)

	stored, err := s.Save(strings.NewReader("bytes"), "image/png", "gone.png")
	require.NoError(t, err)

	require.NoError(t, s.Delete(stored.RelativePath))

	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(stored.RelativePath)))
	assert.True(t, os.IsNotExist(err), "file should be gone after delete")
}

func TestStore_Delete_MissingFileIsNoop(t *testing.T) {
	s, _ := newTestStore(t)

	assert.NoError(t, s.Delete("photos/never-existed.png"))
}

func TestStore_Delete_RejectsTraversal(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Error(t, s.Delete("../outside.png"))
	assert.Error(t, s.Delete("photos/../../outside.png"))
}

func TestStore_Exists(t *testing.T) {
	s, _ := newTestStore(t)

	stored, err := s.Save(strings.NewReader("bytes"), "image/gif", "loop.gif")
	require.NoError(t, err)

	assert.True(t, s.Exists(stored.RelativePath))
	assert.False(t, s.Exists("photos/other.gif"))
	assert.False(t, s.Exists("../escape.gif"))
}

func TestStore_Open(t *testing.T) {
	s, _ := newTestStore(t)

	stored, err := s.Save(strings.NewReader("readable"), "image/jpeg", "open.jpeg")
	require.NoError(t, err)

	f, modTime, err := s.Open(stored.RelativePath)
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, modTime.IsZero())

	buf := make([]byte, 16)
	n, _ := f.Read(buf)
	assert.Equal(t, "readable", string(buf[:n]))
}

func TestStore_Open_NotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, _, err := s.Open("photos/missing.png")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestURL(t *testing.T) {
	got := photo.URL("http://localhost:8080", "photos/abc.png")
	assert.Equal(t, "http://localhost:8080/uploads/photos/abc.png", got)

	// A trailing slash on the base must not double up.
	got = photo.URL("https://api.example.com/", "photos/abc.png")
	assert.Equal(t, "https://api.example.com/uploads/photos/abc.png", got)
}
