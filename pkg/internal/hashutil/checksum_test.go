package hashutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateFileChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksum-test")
	require.NoError(t, os.WriteFile(path, []byte("Hello, World!\nThis is a test file.\n"), 0644))

	checksum, err := CalculateFileChecksum(path)
	require.NoError(t, err)

	assert.Contains(t, checksum, "sha256:")
	assert.Len(t, checksum, 71) // "sha256:" + 64 hex chars

	checksum2, err := CalculateFileChecksum(path)
	require.NoError(t, err)
	assert.Equal(t, checksum, checksum2)
}

func TestCalculateFileChecksumMissing(t *testing.T) {
	_, err := CalculateFileChecksum(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func buildTree(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "themes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.jsonc"), []byte(`{"layer":"top"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "themes", "dark.css"), []byte("* { color: #fff; }"), 0644))
	require.NoError(t, os.Symlink("themes/dark.css", filepath.Join(root, "style.css")))
}

func TestCalculateTreeChecksum(t *testing.T) {
	a := filepath.Join(t.TempDir(), "waybar")
	b := filepath.Join(t.TempDir(), "waybar")
	buildTree(t, a)
	buildTree(t, b)

	sumA, err := CalculateTreeChecksum(a)
	require.NoError(t, err)
	sumB, err := CalculateTreeChecksum(b)
	require.NoError(t, err)
	assert.Equal(t, sumA, sumB, "identical trees in different places hash equal")

	require.NoError(t, os.WriteFile(filepath.Join(b, "themes", "dark.css"), []byte("* { color: #000; }"), 0644))
	sumB, err = CalculateTreeChecksum(b)
	require.NoError(t, err)
	assert.NotEqual(t, sumA, sumB)
}

func TestCalculateTreeChecksumSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".zshrc")
	require.NoError(t, os.WriteFile(path, []byte("setopt autocd\n"), 0644))

	before, err := CalculateTreeChecksum(path)
	require.NoError(t, err)
	require.NoError(t, os.Chmod(path, 0600))
	after, err := CalculateTreeChecksum(path)
	require.NoError(t, err)

	assert.NotEqual(t, before, after, "permission bits are part of the digest")
}
