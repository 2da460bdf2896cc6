package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.raw")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	r, closer, err := OpenInput(context.Background(), path, S3Options{})
	require.NoError(t, err)
	defer closer.Close()

	buf := make([]byte, 3)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf[:n]))
}

func TestOpenInputMissingFile(t *testing.T) {
	_, _, err := OpenInput(context.Background(), filepath.Join(t.TempDir(), "missing.raw"), S3Options{})
	assert.Error(t, err)
}
