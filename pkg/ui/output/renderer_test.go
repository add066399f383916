package output_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/datastore"
	"github.com/arthur-debert/dotsync/pkg/status"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/ui/output"
)

func newPlain(t *testing.T) (*output.Renderer, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	r, err := output.NewRenderer(&buf, true)
	require.NoError(t, err)
	return r, &buf
}

func TestProgressLines(t *testing.T) {
	r, buf := newPlain(t)

	results := []types.Result{
		{Entry: types.Entry{Path: "~/.zshrc"}, Status: types.StatusOK, Message: "copied from repo"},
		{Entry: types.Entry{Path: "~/.config/hypr"}, Status: types.StatusFailed, Message: "FAILED: source <missing> & gone"},
		{Entry: types.Entry{Path: "~/.vimrc"}, Status: types.StatusSkipped, Message: "skipped"},
	}
	for i, res := range results {
		r.Progress(i, len(results), res)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		" 33% [●] ~/.zshrc - copied from repo",
		" 66% [✗] ~/.config/hypr - FAILED: source <missing> & gone",
		"100% [◦] ~/.vimrc - skipped",
	}, lines)
}

func TestSummaryLine(t *testing.T) {
	r, buf := newPlain(t)

	summary := &types.Summary{Command: "sync"}
	summary.Add(types.Result{Status: types.StatusOK})
	summary.Add(types.Result{Status: types.StatusUnchanged})
	summary.Add(types.Result{Status: types.StatusFailed})

	require.NoError(t, r.Summary(summary))
	assert.Equal(t, "Done: 2/3 successful, 1 failed.\n", buf.String())

	buf.Reset()
	summary.DryRun = true
	summary.Results = summary.Results[:1]
	require.NoError(t, r.Summary(summary))
	assert.Equal(t, "DRY RUN nothing was written\nDone: 1/1 successful, 0 failed.\n", buf.String())
}

func TestBackupReport(t *testing.T) {
	tests := []struct {
		name   string
		report backup.Report
		want   []string
		absent []string
	}{
		{
			name:   "next steps",
			report: backup.Report{RepoURL: "https://github.com/me/dots", URLSource: backup.URLFromSaved, Worktree: "/w"},
			want:   []string{"Repository https://github.com/me/dots (saved)", "Working tree /w", "Next steps:", "cd /w", "git push"},
			absent: []string{"Committed"},
		},
		{
			name:   "committed",
			report: backup.Report{RepoURL: "u", Worktree: "/w", Committed: true, Summary: &types.Summary{Results: []types.Result{{Status: types.StatusOK}}}},
			want:   []string{"Done: 1/1 successful, 0 failed.", "Committed. Push when ready:", "git -C /w push"},
			absent: []string{"Next steps"},
		},
		{
			name:   "pushed after init",
			report: backup.Report{RepoURL: "u", Worktree: "/w", Committed: true, Pushed: true, InitFallback: true},
			want:   []string{"(new repository, clone failed)", "Committed and pushed."},
			absent: []string{"Push when ready"},
		},
		{
			name:   "pushed with nothing to commit",
			report: backup.Report{RepoURL: "u", Worktree: "/w", Pushed: true},
			want:   []string{"Nothing to commit; pushed."},
			absent: []string{"Committed", "Next steps"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, buf := newPlain(t)
			require.NoError(t, r.BackupReport(&tt.report))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestStatusTable(t *testing.T) {
	r, buf := newPlain(t)
	require.NoError(t, r.StatusTable([]*status.EntryStatus{
		{Entry: types.Entry{Path: "~/.zshrc"}, State: status.StateInSync, Message: "up to date"},
		{Entry: types.Entry{Path: "~/.oh-my-zsh", Source: types.SourceGit}, State: status.StateAbsent, Message: "not installed"},
	}))

	out := buf.String()
	assert.Contains(t, out, "PATH")
	assert.Contains(t, out, "~/.zshrc")
	assert.Contains(t, out, "in-sync")
	assert.Contains(t, out, "git")
	assert.Contains(t, out, "absent")
	assert.NotContains(t, out, "\x1b[")
}

func TestEntryList(t *testing.T) {
	r, buf := newPlain(t)
	entries := []types.Entry{
		{Path: "~/.local/bin/screenshot", Exec: true},
		{Path: "~/.themes/Catppuccin", Source: types.SourceExternal, URL: "https://example.com/t.tar.xz", Type: types.PayloadTarXz, DirName: "Catppuccin-Mocha"},
	}
	require.NoError(t, r.EntryList(entries, func(e types.Entry) string { return "home/.local/bin/screenshot" }))

	out := buf.String()
	assert.Contains(t, out, "home/.local/bin/screenshot")
	assert.Contains(t, out, "exec")
	assert.Contains(t, out, "https://example.com/t.tar.xz")
	assert.Contains(t, out, "type=tar.xz,dir=Catppuccin-Mocha")
}

func TestRunHistory(t *testing.T) {
	r, buf := newPlain(t)
	require.NoError(t, r.RunHistory(nil))
	assert.Equal(t, "No runs recorded yet.\n", buf.String())

	buf.Reset()
	require.NoError(t, r.RunHistory([]datastore.Run{{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		Command:   "backup",
		Started:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local),
		Duration:  1500 * time.Millisecond,
		DryRun:    true,
		Total:     4,
		Succeeded: 3,
		Failed:    1,
	}}))
	out := buf.String()
	assert.Contains(t, out, "2025-03-01 12:00:00")
	assert.Contains(t, out, "backup (dry run)")
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "0f8fad5b")
	assert.NotContains(t, out, "469f")
}

func TestRenderError(t *testing.T) {
	r, buf := newPlain(t)
	require.NoError(t, r.RenderError(errors.New("clone failed: <stderr> & more")))
	assert.Equal(t, "Error: clone failed: <stderr> & more\n", buf.String())
}
