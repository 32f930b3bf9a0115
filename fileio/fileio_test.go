package fileio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andewx/vkforge/errcode"
)

func TestWriteReadRoundTripAtOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")

	require.NoError(t, Write(path, []byte("headerpayload"), 0))
	require.NoError(t, Write(path, []byte("PATCHED"), 6))

	buf := make([]byte, 7)
	require.NoError(t, Read(path, buf, 6))
	require.Equal(t, "PATCHED", string(buf))

	size, err := Size(path)
	require.NoError(t, err)
	require.Equal(t, int64(13), size)
}

func TestReadPastEOFIsShortRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.bin")
	require.NoError(t, Write(path, []byte("abc"), 0))

	buf := make([]byte, 8)
	err := Read(path, buf, 0)
	require.True(t, errcode.IsCode(err, errcode.FileShortRead))
}

func TestOpenMissingFile(t *testing.T) {
	err := Read(filepath.Join(t.TempDir(), "missing"), make([]byte, 1), 0)
	require.True(t, errcode.IsCode(err, errcode.FileOpenFail))
}

func TestBasename(t *testing.T) {
	require.Equal(t, "shader.spv", Basename("assets/shaders/shader.spv"))
}
