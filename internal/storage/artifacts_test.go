package storage_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moeenhq/diwan/internal/storage"
)

func TestStoreSaveOpenRoundTrip(t *testing.T) {
	s, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	handle, err := s.Save("recording.webm", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(handle, "audio-"))
	assert.True(t, strings.HasSuffix(handle, ".webm"))
	assert.True(t, s.Exists(handle))

	f, err := s.Open(handle)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
}

func TestStoreHandlesAreUnique(t *testing.T) {
	s, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	h1, err := s.Save("a.webm", strings.NewReader("x"))
	require.NoError(t, err)
	h2, err := s.Save("a.webm", strings.NewReader("y"))
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	s, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	handle, err := s.Save("a.webm", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(handle))
	assert.False(t, s.Exists(handle))
	assert.NoError(t, s.Delete(handle), "second delete must not fail")
}

func TestStoreRejectsEscapingHandles(t *testing.T) {
	s, err := storage.NewStore(t.TempDir())
	require.NoError(t, err)

	for _, handle := range []string{"", "../etc/passwd", "a/b", `a\b`, "x..y"} {
		_, err := s.Open(handle)
		assert.ErrorIs(t, err, storage.ErrBadHandle, handle)
		assert.ErrorIs(t, s.Delete(handle), storage.ErrBadHandle, handle)
		assert.False(t, s.Exists(handle))
	}
}
