package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryStore(t *testing.T) {
	assert := assert.New(t)
	ms := NewMemoryStore()

	_, ok := ms.Get(TokenKey)
	assert.False(ok)

	assert.NoError(ms.Set(TokenKey, "abc"))
	v, ok := ms.Get(TokenKey)
	assert.True(ok)
	assert.Equal("abc", v)

	assert.NoError(ms.Delete(TokenKey))
	assert.NoError(ms.Delete(TokenKey))
	_, ok = ms.Get(TokenKey)
	assert.False(ok)
}

func Test_FileStore_roundTrip(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "nested", "state.toml")

	fst, err := OpenFileStore(path)
	require.NoError(err)
	_, ok := fst.Get(LocaleKey)
	assert.False(ok)
	assert.NoFileExists(path, "nothing written until first Set")

	require.NoError(fst.Set(TokenKey, "tok-1"))
	require.NoError(fst.Set(LocaleKey, "ru"))

	info, err := os.Stat(path)
	require.NoError(err)
	assert.Equal(os.FileMode(0600), info.Mode().Perm())

	reopened, err := OpenFileStore(path)
	require.NoError(err)
	v, ok := reopened.Get(LocaleKey)
	assert.True(ok)
	assert.Equal("ru", v)
	assert.Equal([]string{TokenKey, LocaleKey}, reopened.Keys())

	require.NoError(reopened.Delete(TokenKey))
	again, err := OpenFileStore(path)
	require.NoError(err)
	_, ok = again.Get(TokenKey)
	assert.False(ok)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(err)
	assert.Len(entries, 1, "temp files are cleaned up")
}

func Test_OpenFileStore_malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml"), 0600))

	_, err := OpenFileStore(path)
	assert.Error(t, err)
}
