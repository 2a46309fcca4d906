package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePathOrder(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "app")
	require.NoError(t, os.MkdirAll(filepath.Join(base, "units"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(base, "only-child"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "units"), 0o755))

	got, err := ResolvePath(base, "units")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "units"), got)

	got, err = ResolvePath(base, "only-child")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "only-child"), got)

	got, err = ResolvePath(base, filepath.Join(base, "units"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "units"), got)

	_, err = ResolvePath(base, "missing-folder-xyz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ResolvePath(base, " ")
	assert.ErrorIs(t, err, ErrNotFound)
}
