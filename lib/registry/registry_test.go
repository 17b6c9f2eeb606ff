package registry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/microkern/bootpack/lib/payload"
)

func testImage(n int, seed byte) []byte {
	img := make([]byte, n)
	for i := range img {
		img[i] = seed + byte(i%97)
	}
	return img
}

// newTestRegistry bundles init (4096 bytes) and shell (8192 bytes), the
// minimal boot set, and returns a registry over the assembled payload.
func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	w := payload.NewWriter()
	require.NoError(t, w.Add("init", testImage(4096, 1)))
	require.NoError(t, w.Add("shell", testImage(8192, 2)))

	r, err := FromBytes(w.Bytes())
	require.NoError(t, err)
	return r
}

func TestRegistryLookups(t *testing.T) {
	r := newTestRegistry(t)

	require.Equal(t, 2, r.Count())

	name, err := r.NameAt(0)
	require.NoError(t, err)
	require.Equal(t, "init", name)

	name, err = r.NameAt(1)
	require.NoError(t, err)
	require.Equal(t, "shell", name)

	img, err := r.ImageAt(0)
	require.NoError(t, err)
	require.Equal(t, 4096, img.Length())
	require.True(t, bytes.Equal(testImage(4096, 1), img.Bytes))

	img, err = r.ImageAt(1)
	require.NoError(t, err)
	require.Equal(t, 8192, img.Length())
	require.True(t, bytes.Equal(testImage(8192, 2), img.Bytes))
	require.Equal(t, uint64(0), img.Offset%payload.MinAlignment)
}

func TestRegistryIndexOutOfRange(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.ImageAt(5)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = r.ImageAt(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = r.NameAt(2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRegistryFindByName(t *testing.T) {
	r := newTestRegistry(t)

	idx, ok := r.FindByName("shell")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	// Every name found by index resolves back to the same index.
	for i := 0; i < r.Count(); i++ {
		name, err := r.NameAt(i)
		require.NoError(t, err)
		found, ok := r.FindByName(name)
		require.True(t, ok)
		require.Equal(t, i, found)
	}

	idx, ok = r.FindByName("daemon")
	require.False(t, ok)
	require.Equal(t, -1, idx)
}

func TestRegistryEmpty(t *testing.T) {
	w := payload.NewWriter()
	r, err := FromBytes(w.Bytes())
	require.NoError(t, err)

	require.Equal(t, 0, r.Count())
	require.Empty(t, r.Names())

	_, err = r.NameAt(0)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	_, ok := r.FindByName("init")
	require.False(t, ok)
}

func TestRegistryNames(t *testing.T) {
	r := newTestRegistry(t)
	require.Equal(t, []string{"init", "shell"}, r.Names())
}

func TestRegistryRejectsCorruptPayload(t *testing.T) {
	_, err := FromBytes([]byte("not a payload"))
	require.Error(t, err)
}
