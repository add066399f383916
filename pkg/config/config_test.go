package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

func setupPaths(t *testing.T) (paths.Paths, string) {
	t.Helper()
	root := t.TempDir()
	home := filepath.Join(root, "home")
	require.NoError(t, os.MkdirAll(home, 0755))
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
	for _, name := range []string{"DOTSYNC_REPO", "DOTSYNC_BRANCH", "DOTSYNC_MODE", "DOTSYNC_BACKUP_MESSAGE"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}

	p, err := paths.New(home)
	require.NoError(t, err)
	return p, root
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	p, root := setupPaths(t)

	cfg, err := Load(p, LoadOptions{Dirs: []string{filepath.Join(root, "nowhere")}})
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Branch)
	assert.Equal(t, "home", cfg.Layout)
	assert.Equal(t, ModeWorktree, cfg.Mode)
	assert.Equal(t, "update dotfiles", cfg.Backup.Message)
	assert.False(t, cfg.Backup.Commit)
	assert.Equal(t, p.DefaultWorktree(), cfg.Worktree)
	assert.Empty(t, cfg.Files)
	assert.Empty(t, cfg.Source)
}

func TestLoadYAML(t *testing.T) {
	p, root := setupPaths(t)
	dir := filepath.Join(root, "project")
	path := writeConfig(t, dir, "dotfiles_sync.yaml", `
repo: https://github.com/someone/dotfiles
branch: trunk
files:
  - path: ~/.zshrc
  - path: .config/hypr
  - path: ~/.local/bin/shot
    exec: true
  - path: ~/.oh-my-zsh/custom/plugins/autosuggest
    source: git
    url: https://github.com/zsh-users/zsh-autosuggestions
    branch: master
  - path: ~/.themes/cat
    source: external
    url: https://example.com/cat.tar.xz
    type: tar.xz
    dir_name: Catppuccin
`)

	cfg, err := Load(p, LoadOptions{Dirs: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "https://github.com/someone/dotfiles", cfg.Repo)
	assert.Equal(t, "trunk", cfg.Branch)
	require.Len(t, cfg.Files, 5)

	assert.Equal(t, types.Entry{Path: "~/.zshrc"}, cfg.Files[0])
	assert.True(t, cfg.Files[2].Exec)
	assert.Equal(t, types.SourceGit, cfg.Files[3].EffectiveSource())
	assert.Equal(t, "master", cfg.Files[3].EffectiveBranch())
	assert.Equal(t, types.PayloadTarXz, cfg.Files[4].Type)
	assert.Equal(t, "Catppuccin", cfg.Files[4].DirName)

	assert.Len(t, cfg.RepoEntries(), 3)
}

func TestLoadTOML(t *testing.T) {
	p, root := setupPaths(t)
	path := writeConfig(t, filepath.Join(root, "project"), "dotfiles_sync.toml", `
repo = "https://github.com/someone/dotfiles"

[backup]
commit = true
message = "sync from laptop"

[[files]]
path = "~/.bashrc"

[[files]]
path = "~/.local/bin/tool"
exec = true
`)

	cfg, err := Load(p, LoadOptions{File: path})
	require.NoError(t, err)

	assert.True(t, cfg.Backup.Commit)
	assert.Equal(t, "sync from laptop", cfg.Backup.Message)
	require.Len(t, cfg.Files, 2)
	assert.True(t, cfg.Files[1].Exec)
}

func TestLoadSearchOrder(t *testing.T) {
	p, root := setupPaths(t)
	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")
	writeConfig(t, second, "dotfiles_sync.yaml", "branch: second\n")

	cfg, err := Load(p, LoadOptions{Dirs: []string{first, second}})
	require.NoError(t, err)
	assert.Equal(t, "second", cfg.Branch)

	writeConfig(t, first, "dotfiles_sync.toml", "branch = \"first\"\n")
	cfg, err = Load(p, LoadOptions{Dirs: []string{first, second}})
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.Branch)
}

func TestLoadEnvAndOverrides(t *testing.T) {
	p, root := setupPaths(t)
	dir := filepath.Join(root, "project")
	writeConfig(t, dir, "dotfiles_sync.yaml", "repo: https://github.com/file/dotfiles\n")

	t.Setenv("DOTSYNC_REPO", "https://github.com/env/dotfiles")
	t.Setenv("DOTSYNC_BACKUP_MESSAGE", "from env")
	t.Setenv("DOTSYNC_BACKUP_COMMIT", "true")

	cfg, err := Load(p, LoadOptions{Dirs: []string{dir}})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/env/dotfiles", cfg.Repo)
	assert.Equal(t, "from env", cfg.Backup.Message)
	assert.True(t, cfg.Backup.Commit)

	cfg, err = Load(p, LoadOptions{
		Dirs:      []string{dir},
		Overrides: map[string]interface{}{"repo": "https://github.com/flag/dotfiles", "mode": ModeRaw},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/flag/dotfiles", cfg.Repo)
	assert.Equal(t, ModeRaw, cfg.Mode)
}

func TestLoadErrors(t *testing.T) {
	p, root := setupPaths(t)

	_, err := Load(p, LoadOptions{File: filepath.Join(root, "missing.yaml")})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))

	bad := writeConfig(t, root, "dotfiles_sync.yaml", "files: [unclosed\n")
	_, err = Load(p, LoadOptions{File: bad})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))

	ini := writeConfig(t, root, "dotfiles_sync.ini", "repo=x\n")
	_, err = Load(p, LoadOptions{File: ini})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestValidate(t *testing.T) {
	p, _ := setupPaths(t)

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(c *Config) {},
		},
		{
			name:    "outside home",
			modify:  func(c *Config) { c.Files = []types.Entry{{Path: "~/../etc/passwd"}} },
			wantErr: "outside the home directory",
		},
		{
			name:    "home itself",
			modify:  func(c *Config) { c.Files = []types.Entry{{Path: "~"}} },
			wantErr: "home directory itself",
		},
		{
			name:    "missing path",
			modify:  func(c *Config) { c.Files = []types.Entry{{Source: types.SourceRepo}} },
			wantErr: "path is required",
		},
		{
			name:    "duplicate",
			modify:  func(c *Config) { c.Files = []types.Entry{{Path: "~/.zshrc"}, {Path: ".zshrc"}} },
			wantErr: "duplicates files[0]",
		},
		{
			name:    "git without url",
			modify:  func(c *Config) { c.Files = []types.Entry{{Path: "~/x", Source: types.SourceGit}} },
			wantErr: "git entries need a url",
		},
		{
			name: "unknown payload",
			modify: func(c *Config) {
				c.Files = []types.Entry{{Path: "~/x", Source: types.SourceExternal, URL: "https://e.x/a", Type: "zip"}}
			},
			wantErr: `unknown type "zip"`,
		},
		{
			name: "dir_name on direct",
			modify: func(c *Config) {
				c.Files = []types.Entry{{Path: "~/x", Source: types.SourceExternal, URL: "https://e.x/a", DirName: "d"}}
			},
			wantErr: "dir_name only applies to archives",
		},
		{
			name:    "unknown source",
			modify:  func(c *Config) { c.Files = []types.Entry{{Path: "~/x", Source: "svn"}} },
			wantErr: `unknown source "svn"`,
		},
		{
			name:    "bad mode",
			modify:  func(c *Config) { c.Mode = "ftp" },
			wantErr: `mode "ftp"`,
		},
		{
			name:    "layout escapes",
			modify:  func(c *Config) { c.Layout = "../elsewhere" },
			wantErr: "plain relative directory",
		},
		{
			name:    "push without commit",
			modify:  func(c *Config) { c.Backup.Push = true },
			wantErr: "backup.push requires backup.commit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Branch: "main",
				Layout: "home",
				Mode:   ModeWorktree,
				Files:  []types.Entry{{Path: "~/.zshrc"}},
			}
			tt.modify(cfg)

			err := cfg.Validate(p)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRawBaseURL(t *testing.T) {
	tests := []struct {
		repo    string
		want    string
		wantErr bool
	}{
		{"https://github.com/sounddrill31/dotfiles", "https://raw.githubusercontent.com/sounddrill31/dotfiles", false},
		{"https://github.com/u/r.git", "https://raw.githubusercontent.com/u/r", false},
		{"https://github.com/u/r/", "https://raw.githubusercontent.com/u/r", false},
		{"https://gitlab.com/u/r", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			got, err := (&Config{Repo: tt.repo}).RawBaseURL()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
