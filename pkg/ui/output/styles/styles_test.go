package styles_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/ui/output/styles"
)

func TestEmbeddedStyles(t *testing.T) {
	for _, name := range []string{
		"Header", "Success", "Error", "Warning", "Info",
		"Muted", "Bold", "FilePath", "Percent", "DryRunBanner", "Command",
	} {
		_, ok := styles.StyleRegistry[name]
		assert.True(t, ok, "style %s should be registered", name)
	}

	assert.True(t, styles.GetStyle("Error").GetBold())
	assert.Equal(t, lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"}, styles.GetStyle("Error").GetForeground())
	assert.Equal(t, 4, styles.GetStyle("Percent").GetWidth())
	assert.Equal(t, lipgloss.Right, styles.GetStyle("Percent").GetAlignHorizontal())
}

func TestGetStyleUnknown(t *testing.T) {
	assert.False(t, styles.GetStyle("NoSuchStyle").GetBold())
}

func TestLoadStyles(t *testing.T) {
	t.Cleanup(func() {
		data, err := os.ReadFile("styles.yaml")
		require.NoError(t, err)
		require.NoError(t, styles.LoadStylesFromData(data))
	})

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
colors:
  pink: {light: "#FF00FF", dark: "#FF77FF"}
styles:
  Success:
    underline: true
    foreground: pink
`), 0644))

	require.NoError(t, styles.LoadStyles(path))
	assert.Len(t, styles.StyleRegistry, 1)
	assert.True(t, styles.GetStyle("Success").GetUnderline())

	assert.Error(t, styles.LoadStyles(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, styles.LoadStylesFromData([]byte("styles: [")))
}
