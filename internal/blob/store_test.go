package blob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingle/infrastructure"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), "http://localhost:8080/")
	require.NoError(t, err)
	return store
}

func TestValidate(t *testing.T) {
	store := newStore(t)

	t.Run("avatar size limit", func(t *testing.T) {
		require.NoError(t, store.Validate(BucketAvatars, 5*1024*1024, "image/png"))
		assert.ErrorIs(t, store.Validate(BucketAvatars, 5*1024*1024+1, "image/png"),
			infrastructure.ErrFileTooLarge)
	})

	t.Run("avatar content types", func(t *testing.T) {
		for _, ok := range []string{"image/jpeg", "image/png", "image/webp", "image/gif"} {
			assert.NoError(t, store.Validate(BucketAvatars, 10, ok))
		}
		assert.ErrorIs(t, store.Validate(BucketAvatars, 10, "image/tiff"),
			infrastructure.ErrUnsupportedType)
		assert.ErrorIs(t, store.Validate(BucketAvatars, 10, "application/pdf"),
			infrastructure.ErrUnsupportedType)
	})

	t.Run("chat files allow any type up to the limit", func(t *testing.T) {
		require.NoError(t, store.Validate(BucketChatFiles, 10*1024*1024, "application/zip"))
		assert.ErrorIs(t, store.Validate(BucketChatFiles, 10*1024*1024+1, "application/zip"),
			infrastructure.ErrFileTooLarge)
	})

	t.Run("unknown bucket", func(t *testing.T) {
		assert.ErrorIs(t, store.Validate("backups", 10, "image/png"),
			infrastructure.ErrInvalidInput)
	})
}

func TestValidateImage(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.ValidateImage(10, "image/tiff"))
	assert.ErrorIs(t, store.ValidateImage(10, "application/pdf"),
		infrastructure.ErrUnsupportedType)
	assert.ErrorIs(t, store.ValidateImage(10*1024*1024+1, "image/png"),
		infrastructure.ErrFileTooLarge)
}

func TestUploadRoundtrip(t *testing.T) {
	store := newStore(t)

	path, err := store.Upload(BucketAvatars, "u1/7_pic.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "u1/7_pic.png", path)

	data, err := os.ReadFile(filepath.Join(store.Dir(), BucketAvatars, "u1", "7_pic.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)

	url := store.PublicURL(BucketAvatars, path)
	assert.Equal(t, "http://localhost:8080/files/avatars/u1/7_pic.png", url)
	assert.Equal(t, path, store.PathFromURL(BucketAvatars, url))

	require.NoError(t, store.Remove(BucketAvatars, path))
	_, err = os.Stat(filepath.Join(store.Dir(), BucketAvatars, "u1", "7_pic.png"))
	assert.True(t, os.IsNotExist(err))

	// Removing an already absent object is not an error.
	require.NoError(t, store.Remove(BucketAvatars, path))
}

func TestPathFromURL(t *testing.T) {
	store := newStore(t)

	assert.Empty(t, store.PathFromURL(BucketAvatars, "http://elsewhere/files/avatars/x.png"))
	assert.Empty(t, store.PathFromURL(BucketAvatars,
		"http://localhost:8080/files/chat-files/x.png"))
}

func TestSanitize(t *testing.T) {
	store := newStore(t)

	path, err := store.Upload(BucketAvatars, "../../escape.png", []byte("x"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "escape.png", path)

	_, err = os.Stat(filepath.Join(store.Dir(), BucketAvatars, "escape.png"))
	assert.NoError(t, err)

	assert.ErrorIs(t, store.Remove(BucketAvatars, "../.."), infrastructure.ErrInvalidInput)
}
