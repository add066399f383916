package paths

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		home     string
		envSetup map[string]string
		validate func(t *testing.T, p Paths)
	}{
		{
			name: "explicit prefix",
			home: "/tmp/prefix",
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/tmp/prefix", p.Home())
			},
		},
		{
			name: "empty prefix uses HOME",
			envSetup: map[string]string{
				EnvHome: "/env/home",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/env/home", p.Home())
			},
		},
		{
			name: "XDG base directories",
			home: "/h",
			envSetup: map[string]string{
				"XDG_CONFIG_HOME": "/xdg/config",
				"XDG_DATA_HOME":   "/xdg/data",
				"XDG_STATE_HOME":  "/xdg/state",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/xdg/config/dotsync", p.ConfigDir())
				assert.Equal(t, "/xdg/data/dotsync", p.DataDir())
				assert.Equal(t, "/xdg/state/dotsync", p.StateDir())
				assert.Equal(t, "/xdg/config/dotsync/.repo", p.RepoFilePath())
				assert.Equal(t, "/xdg/data/dotsync/repo", p.DefaultWorktree())
				assert.Equal(t, "/xdg/state/dotsync/journal.db", p.JournalPath())
				assert.Equal(t, "/xdg/state/dotsync/dotsync.log", p.LogFilePath())
			},
		},
		{
			name: "dotsync overrides win over XDG",
			home: "/h",
			envSetup: map[string]string{
				"XDG_CONFIG_HOME": "/xdg/config",
				EnvConfigDir:      "/custom/config",
				EnvDataDir:        "/custom/data",
				EnvStateDir:       "/custom/state",
			},
			validate: func(t *testing.T, p Paths) {
				assert.Equal(t, "/custom/config", p.ConfigDir())
				assert.Equal(t, "/custom/data", p.DataDir())
				assert.Equal(t, "/custom/state", p.StateDir())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, "")
			t.Setenv(EnvDataDir, "")
			t.Setenv(EnvStateDir, "")
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}

			p, err := New(tt.home)
			require.NoError(t, err)
			tt.validate(t, p)
		})
	}
}

func TestRelToHome(t *testing.T) {
	t.Setenv(EnvHome, "/home/user")

	p, err := New("/backup/prefix")
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		want     string
		wantCode errors.ErrorCode
	}{
		{name: "tilde path", path: "~/.config/hypr", want: ".config/hypr"},
		{name: "bare tilde", path: "~", want: "."},
		{name: "relative path", path: ".bashrc", want: ".bashrc"},
		{name: "absolute under real home", path: "/home/user/.config/waybar", want: ".config/waybar"},
		{name: "absolute under prefix", path: "/backup/prefix/.zshrc", want: ".zshrc"},
		{name: "absolute outside home", path: "/etc/hosts", wantCode: errors.ErrOutsideHome},
		{name: "escaping relative path", path: "../elsewhere", wantCode: errors.ErrOutsideHome},
		{name: "empty", path: "", wantCode: errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.RelToHome(tt.path)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHomePath(t *testing.T) {
	t.Setenv(EnvHome, "/home/user")

	p, err := New("/prefix")
	require.NoError(t, err)

	assert.Equal(t, "/prefix/.config/kitty", p.HomePath("~/.config/kitty"))
	assert.Equal(t, "/prefix/.config/kitty", p.HomePath("/home/user/.config/kitty"))
	assert.Equal(t, "/prefix/wallpapers/bg.png", p.HomePath("wallpapers/bg.png"))
}

func TestRepoPath(t *testing.T) {
	assert.Equal(t, filepath.Join("home", ".config", "hypr"), RepoPath("home", ".config/hypr"))
	assert.Equal(t, ".bashrc", RepoPath("", ".bashrc"))
}

func TestExpandHome(t *testing.T) {
	t.Setenv(EnvHome, "/home/user")

	assert.Equal(t, "/home/user", ExpandHome("~"))
	assert.Equal(t, "/home/user/.zshrc", ExpandHome("~/.zshrc"))
	assert.Equal(t, "~other/x", ExpandHome("~other/x"))
	assert.Equal(t, "/abs", ExpandHome("/abs"))
	assert.Equal(t, "", ExpandHome(""))
}

func TestContainsPath(t *testing.T) {
	assert.True(t, ContainsPath("/a/b", "/a/b/c"))
	assert.True(t, ContainsPath("/a/b", "/a/b"))
	assert.False(t, ContainsPath("/a/b", "/a/bc"))
	assert.False(t, ContainsPath("/a/b", "/a"))
}

func TestValidatePathSecurity(t *testing.T) {
	assert.NoError(t, ValidatePathSecurity("fonts/Inter/Inter.ttf"))
	assert.Error(t, ValidatePathSecurity("../../etc/passwd"))
	assert.Error(t, ValidatePathSecurity("a/\u202ebad"))
	assert.Error(t, ValidatePathSecurity(""))
	assert.Error(t, ValidatePathSecurity("a\x00b"))
}
