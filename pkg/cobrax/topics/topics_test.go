package topics

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTopics() fstest.MapFS {
	return fstest.MapFS{
		"option-dry-run.txt": {Data: []byte("Information about dry-run mode")},
		"layout.md":          {Data: []byte("# Layout\n\nRepository layout details")},
		"config.txxt":        {Data: []byte("Configuration Guide\n==================")},
		"ignore.json":        {Data: []byte("This should be ignored")},
		"nested/sources.md":  {Data: []byte("# Sources")},
	}
}

func TestTopicManager_ScanTopics(t *testing.T) {
	t.Run("default extensions", func(t *testing.T) {
		tm := New(testTopics())
		require.NoError(t, tm.scanTopics())

		tests := []struct {
			name     string
			expected bool
			content  string
		}{
			{"option-dry-run", true, "Information about dry-run mode"},
			{"layout", true, "# Layout\n\nRepository layout details"},
			{"sources", true, "# Sources"},
			{"config", false, ""},
			{"ignore", false, ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				topic, exists := tm.GetTopic(tt.name)
				assert.Equal(t, tt.expected, exists)
				if exists {
					assert.Equal(t, tt.content, topic.Content)
				}
			})
		}
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := NewWithOptions(testTopics(), Options{Extensions: []string{".txxt"}})
		require.NoError(t, tm.scanTopics())
		assert.Equal(t, []string{"config"}, tm.ListTopics())
	})

	t.Run("no file system", func(t *testing.T) {
		tm := New(nil)
		require.NoError(t, tm.scanTopics())
		assert.Empty(t, tm.ListTopics())
	})
}

func TestTopicManager_GetTopicFlagStyle(t *testing.T) {
	tm := New(testTopics())
	require.NoError(t, tm.scanTopics())

	for _, name := range []string{"dry-run", "--dry-run", "option-dry-run"} {
		topic, exists := tm.GetTopic(name)
		require.True(t, exists, name)
		assert.Equal(t, "option-dry-run", topic.Name)
	}
	_, exists := tm.GetTopic("--missing")
	assert.False(t, exists)
}

type upperRenderer struct{}

func (upperRenderer) Render(content, format string) string {
	if format != ".md" {
		return content
	}
	return strings.ToUpper(content)
}

func runHelp(t *testing.T, opts Options, args ...string) string {
	t.Helper()
	rootCmd := &cobra.Command{Use: "testapp", Short: "Test application"}
	rootCmd.AddCommand(&cobra.Command{Use: "sync", Short: "Apply dotfiles", Run: func(*cobra.Command, []string) {}})
	require.NoError(t, InitializeWithOptions(rootCmd, testTopics(), opts))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"help"}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestIntegration_HelpTopic(t *testing.T) {
	out := runHelp(t, Options{Renderer: upperRenderer{}}, "layout")
	assert.Contains(t, out, "# LAYOUT")

	out = runHelp(t, Options{Renderer: upperRenderer{}}, "--dry-run")
	assert.Contains(t, out, "Information about dry-run mode")
}

func TestIntegration_HelpTopicsList(t *testing.T) {
	out := runHelp(t, Options{}, "topics")
	assert.Contains(t, out, "General topics:\n  layout\n  sources")
	assert.Contains(t, out, "Option topics:\n  --dry-run")
	assert.Contains(t, out, "Use 'testapp help <topic>'")
}

func TestIntegration_HelpCommandFallsBack(t *testing.T) {
	out := runHelp(t, Options{}, "sync")
	assert.Contains(t, out, "Apply dotfiles")
}
