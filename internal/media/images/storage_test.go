package images

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(filepath.Join(t.TempDir(), "media"))
	require.NoError(t, err)
	return storage
}

func TestNewStorage(t *testing.T) {
	t.Run("creates the base directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "media")

		storage, err := NewStorage(dir)
		require.NoError(t, err)
		require.NotNil(t, storage)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		storage, err := NewStorage("")
		assert.Error(t, err)
		assert.Nil(t, storage)
		assert.Contains(t, err.Error(), "base path cannot be empty")
	})
}

func TestStorage_SaveAndGet(t *testing.T) {
	storage := setupTestStorage(t)
	key := Key("abcdef", ".png")
	assert.Equal(t, "ab/abcdef.png", key)

	require.NoError(t, storage.Save(key, []byte("png bytes")))
	assert.True(t, storage.Exists(key))

	data, err := storage.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)

	path, err := storage.Path(key)
	require.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")
}

func TestStorage_SaveRejectsEmptyData(t *testing.T) {
	storage := setupTestStorage(t)

	err := storage.Save("ab/abc.png", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "image data cannot be empty")
}

func TestStorage_GetMissing(t *testing.T) {
	storage := setupTestStorage(t)

	_, err := storage.Get("zz/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, storage.Exists("zz/missing.png"))
}

func TestStorage_Delete(t *testing.T) {
	storage := setupTestStorage(t)
	require.NoError(t, storage.Save("ab/abc.gif", []byte("gif")))

	require.NoError(t, storage.Delete("ab/abc.gif"))
	assert.False(t, storage.Exists("ab/abc.gif"))

	// Deleting twice is fine.
	assert.NoError(t, storage.Delete("ab/abc.gif"))
}

func TestStorage_Hash(t *testing.T) {
	storage := setupTestStorage(t)
	require.NoError(t, storage.Save("ab/one.jpg", []byte("same")))
	require.NoError(t, storage.Save("ab/two.jpg", []byte("same")))

	h1, err := storage.Hash("ab/one.jpg")
	require.NoError(t, err)
	h2, err := storage.Hash("ab/two.jpg")
	require.NoError(t, err)

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)
}

func TestStorage_PathRejectsTraversal(t *testing.T) {
	storage := setupTestStorage(t)

	for _, key := range []string{"", "../secret", "ab/../../secret", "/etc/passwd"} {
		_, err := storage.Path(key)
		assert.Error(t, err, key)
	}

	_, err := storage.Path("ab/../ab/ok.png")
	assert.NoError(t, err)
}
