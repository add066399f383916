package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// TestEnvironment is an isolated dotsync installation on the real filesystem
type TestEnvironment struct {
	Root     string
	HomeDir  string
	Worktree string

	FS    types.FS
	Paths paths.Paths

	t *testing.T
}

// NewTestEnvironment creates the directories and points HOME and the XDG
// variables at them.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		Root:    root,
		HomeDir: filepath.Join(root, "home"),
		FS:      filesystem.NewOS(),
		t:       t,
	}
	require.NoError(t, os.MkdirAll(env.HomeDir, 0755))

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg", "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "xdg", "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "xdg", "state"))
	for _, name := range []string{paths.EnvConfigDir, paths.EnvDataDir, paths.EnvStateDir} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}

	p, err := paths.New(env.HomeDir)
	require.NoError(t, err)
	env.Paths = p
	env.Worktree = p.DefaultWorktree()

	return env
}

// Config returns a valid configuration for the environment's worktree
func (env *TestEnvironment) Config(entries ...types.Entry) *config.Config {
	cfg := &config.Config{
		Repo:     "https://github.com/someone/dotfiles",
		Branch:   "main",
		Worktree: env.Worktree,
		Layout:   paths.DefaultLayout,
		Mode:     config.ModeWorktree,
		Backup:   config.Backup{Message: "update dotfiles"},
		Files:    entries,
	}
	require.NoError(env.t, cfg.Validate(env.Paths))
	return cfg
}

// HomePath returns the absolute path of a home-relative path
func (env *TestEnvironment) HomePath(rel string) string {
	return filepath.Join(env.HomeDir, filepath.FromSlash(rel))
}

// RepoPath returns the absolute path of a home-relative path inside the
// working tree layout
func (env *TestEnvironment) RepoPath(rel string) string {
	return filepath.Join(env.Worktree, paths.DefaultLayout, filepath.FromSlash(rel))
}

// WriteHome creates a file under the home directory
func (env *TestEnvironment) WriteHome(rel, content string, perm os.FileMode) string {
	env.t.Helper()
	return writeFile(env.t, env.HomePath(rel), content, perm)
}

// WriteRepo creates a file in the working tree at <layout>/rel
func (env *TestEnvironment) WriteRepo(rel, content string, perm os.FileMode) string {
	env.t.Helper()
	return writeFile(env.t, env.RepoPath(rel), content, perm)
}

// ReadHome returns the content of a file under the home directory
func (env *TestEnvironment) ReadHome(rel string) string {
	env.t.Helper()
	data, err := os.ReadFile(env.HomePath(rel))
	require.NoError(env.t, err)
	return string(data)
}

// ReadRepo returns the content of a file in the working tree layout
func (env *TestEnvironment) ReadRepo(rel string) string {
	env.t.Helper()
	data, err := os.ReadFile(env.RepoPath(rel))
	require.NoError(env.t, err)
	return string(data)
}

// MarkRepository makes the working tree look like a checkout to FakeGit
func (env *TestEnvironment) MarkRepository(url string) {
	env.t.Helper()
	require.NoError(env.t, markRepository(env.Worktree, url))
}

func writeFile(t *testing.T, path, content string, perm os.FileMode) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}
