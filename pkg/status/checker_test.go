package status_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/status"
	dsync "github.com/arthur-debert/dotsync/pkg/sync"
	"github.com/arthur-debert/dotsync/pkg/testutil"
	"github.com/arthur-debert/dotsync/pkg/types"
)

func TestSourceChecker_RepoEntries(t *testing.T) {
	env := testutil.NewTestEnvironment(t)

	env.WriteHome(".zshrc", "same\n", 0644)
	env.WriteRepo(".zshrc", "same\n", 0644)

	env.WriteHome(".bashrc", "edited at home\n", 0644)
	env.WriteRepo(".bashrc", "committed\n", 0644)

	env.WriteRepo(".config/hypr/hyprland.conf", "monitor=,preferred,auto,1\n", 0644)

	env.WriteHome(".tmux.conf", "set -g mouse on\n", 0644)

	env.WriteHome(".local/bin/screenshot", "#!/bin/sh\n", 0755)
	env.WriteRepo(".local/bin/screenshot", "#!/bin/sh\n", 0644)

	cfg := env.Config(
		types.Entry{Path: "~/.zshrc"},
		types.Entry{Path: "~/.bashrc"},
		types.Entry{Path: "~/.config/hypr"},
		types.Entry{Path: "~/.tmux.conf"},
		types.Entry{Path: "~/.local/bin/screenshot", Exec: true},
	)

	checker := status.NewSourceChecker(cfg, env.Paths, env.FS)
	statuses := checker.CheckAll(cfg.Files)
	require.Len(t, statuses, 5)

	assert.Equal(t, status.StateInSync, statuses[0].State)
	assert.Equal(t, status.StateModified, statuses[1].State)
	assert.NotEqual(t, statuses[1].Metadata["home_checksum"], statuses[1].Metadata["repo_checksum"])
	assert.Equal(t, status.StateMissingHome, statuses[2].State)
	assert.Contains(t, statuses[2].Message, "run sync")
	assert.Equal(t, status.StateMissingRepo, statuses[3].State)
	assert.Contains(t, statuses[3].Message, "run backup")
	assert.Equal(t, status.StateInSync, statuses[4].State, "executable bit added by sync is expected")

	counts := status.Count(statuses)
	assert.Equal(t, 2, counts[status.StateInSync])
	assert.Equal(t, 1, counts[status.StateModified])
}

func TestSourceChecker_ExecutableDirectoryInSyncAfterSync(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteRepo(".local/share/rofi/scripts/power.sh", "#!/bin/sh\n", 0644)
	require.NoError(t, os.Chmod(env.RepoPath(".local/share/rofi/scripts"), 0700))
	cfg := env.Config(types.Entry{Path: "~/.local/share/rofi/scripts", Exec: true})

	a := dsync.New(cfg, env.Paths, env.FS, testutil.NewFakeGit(), nil, dsync.Options{NoPull: true})
	result := a.Apply(context.Background(), cfg.Files[0])
	require.Equal(t, types.StatusOK, result.Status, result.Message)

	info, err := os.Stat(env.HomePath(".local/share/rofi/scripts"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0711), info.Mode().Perm())

	st := status.NewSourceChecker(cfg, env.Paths, env.FS).CheckEntry(cfg.Files[0])
	assert.Equal(t, status.StateInSync, st.State, st.Message)
	assert.Equal(t, types.StatusUnchanged, a.Apply(context.Background(), cfg.Files[0]).Status)
}

func TestSourceChecker_PermissionChangeIsModified(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	env.WriteHome(".ssh/config", "Host *\n", 0600)
	env.WriteRepo(".ssh/config", "Host *\n", 0644)
	cfg := env.Config(types.Entry{Path: "~/.ssh/config"})

	st := status.NewSourceChecker(cfg, env.Paths, env.FS).CheckEntry(cfg.Files[0])
	assert.Equal(t, status.StateModified, st.State)
}

func TestSourceChecker_Destinations(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	require.NoError(t, os.MkdirAll(env.HomePath(".oh-my-zsh/plugins/autosuggest/.git"), 0755))
	require.NoError(t, os.MkdirAll(env.HomePath(".themes/plain"), 0755))

	cfg := env.Config(
		types.Entry{Path: "~/.oh-my-zsh/plugins/autosuggest", Source: types.SourceGit, URL: "https://github.com/zsh-users/zsh-autosuggestions"},
		types.Entry{Path: "~/.themes/plain", Source: types.SourceGit, URL: "https://example.com/plain.git"},
		types.Entry{Path: "~/.themes/Catppuccin", Source: types.SourceExternal, URL: "https://example.com/theme.tar.xz", Type: types.PayloadTarXz},
	)

	statuses := status.NewSourceChecker(cfg, env.Paths, env.FS).CheckAll(cfg.Files)
	require.Len(t, statuses, 3)

	assert.Equal(t, status.StatePresent, statuses[0].State)
	assert.Equal(t, true, statuses[0].Metadata["git_checkout"])

	assert.Equal(t, status.StatePresent, statuses[1].State)
	assert.Equal(t, false, statuses[1].Metadata["git_checkout"])
	assert.Equal(t, "present but not a git checkout", statuses[1].Message)

	assert.Equal(t, status.StateAbsent, statuses[2].State)
	assert.Contains(t, statuses[2].Message, "theme.tar.xz")
}

func TestSourceChecker_UnknownSource(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	cfg := env.Config()

	st := status.NewSourceChecker(cfg, env.Paths, env.FS).CheckEntry(types.Entry{Path: "~/.x", Source: "ftp"})
	assert.Equal(t, status.StateError, st.State)
	assert.Equal(t, "Unknown source: ftp", st.Message)
}
