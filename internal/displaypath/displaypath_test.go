package displaypath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAbsolute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "system.img")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	got := Resolve(path)
	assert.True(t, filepath.IsAbs(got), "%q is not absolute", got)
	assert.Equal(t, "system.img", filepath.Base(got))
}

func TestResolveMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "does-not-exist.img")

	got := Resolve(path)
	assert.True(t, filepath.IsAbs(got))
	assert.Equal(t, "does-not-exist.img", filepath.Base(got))
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "relative/path.img", Identity.Resolve("relative/path.img"))
}
