package lipbalm_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/ui/lipbalm"
)

// newStyles points lipbalm at a renderer with the given profile and returns
// styles for the tags used by the output templates
func newStyles(t *testing.T, profile termenv.Profile) lipbalm.StyleMap {
	t.Helper()
	r := lipgloss.NewRenderer(&bytes.Buffer{})
	r.SetColorProfile(profile)
	lipbalm.SetDefaultRenderer(r)
	t.Cleanup(func() { lipbalm.SetDefaultRenderer(lipgloss.DefaultRenderer()) })

	return lipbalm.StyleMap{
		"Percent":      r.NewStyle().Faint(true),
		"Success":      r.NewStyle().Foreground(lipgloss.Color("2")),
		"Error":        r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		"Muted":        r.NewStyle().Foreground(lipgloss.Color("8")),
		"Warning":      r.NewStyle().Foreground(lipgloss.Color("3")),
		"FilePath":     r.NewStyle().Underline(true),
		"Header":       r.NewStyle().Bold(true),
		"Command":      r.NewStyle().Foreground(lipgloss.Color("6")),
		"DryRunBanner": r.NewStyle().Reverse(true),
	}
}

// execute runs one of the output templates the way the renderer does
func execute(t *testing.T, name string, data interface{}) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "output", "templates", name))
	require.NoError(t, err)

	tmpl, err := template.New(name).
		Funcs(template.FuncMap{"esc": template.HTMLEscapeString}).
		Parse(string(raw))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, data))
	return strings.TrimRight(buf.String(), "\n")
}

type progressLine struct {
	Percent string
	Symbol  string
	Style   string
	Path    string
	Message string
}

type backupReport struct {
	RepoURL      string
	URLSource    string
	Worktree     string
	InitFallback bool
	Committed    bool
	Pushed       bool
}

func TestProgressLine(t *testing.T) {
	markup := execute(t, "progress.tmpl", progressLine{
		Percent: " 50%", Symbol: "●", Style: "Success", Path: "~/.zshrc", Message: "copied from repo",
	})

	t.Run("colored", func(t *testing.T) {
		styles := newStyles(t, termenv.ANSI256)
		out, err := lipbalm.ExpandTags(markup, styles)
		require.NoError(t, err)

		want := styles["Percent"].Render(" 50%") + " [" + styles["Success"].Render("●") + "] " +
			styles["FilePath"].Render("~/.zshrc") + " - copied from repo"
		assert.Equal(t, want, out)
		assert.Contains(t, out, "\x1b[")
	})

	t.Run("plain", func(t *testing.T) {
		assert.Equal(t, " 50% [●] ~/.zshrc - copied from repo", lipbalm.StripTags(markup))
	})

	t.Run("ascii profile drops styles", func(t *testing.T) {
		styles := newStyles(t, termenv.Ascii)
		out, err := lipbalm.ExpandTags(markup, styles)
		require.NoError(t, err)
		assert.Equal(t, " 50% [●] ~/.zshrc - copied from repo", out)
	})
}

func TestEscapedPathsRoundTrip(t *testing.T) {
	markup := execute(t, "progress.tmpl", progressLine{
		Percent: "100%",
		Symbol:  "✗",
		Style:   "Error",
		Path:    "~/.config/rock&roll/<theme>.conf",
		Message: `FAILED: open "theme.conf": permission denied`,
	})
	assert.Contains(t, markup, "rock&amp;roll/&lt;theme&gt;.conf")

	want := `100% [` + "✗" + `] ~/.config/rock&roll/<theme>.conf - FAILED: open "theme.conf": permission denied`
	assert.Equal(t, want, lipbalm.StripTags(markup))

	styles := newStyles(t, termenv.TrueColor)
	out, err := lipbalm.ExpandTags(markup, styles)
	require.NoError(t, err)
	assert.Contains(t, out, styles["FilePath"].Render("~/.config/rock&roll/<theme>.conf"))
}

func TestUnescapedMarkupIsReturnedAsIs(t *testing.T) {
	styles := newStyles(t, termenv.TrueColor)
	input := "<FilePath>~/.config/a<b</FilePath> - copied"

	out, err := lipbalm.ExpandTags(input, styles)
	require.NoError(t, err)
	assert.Equal(t, input, out)
	assert.Equal(t, input, lipbalm.StripTags(input))
}

func TestSummaryLine(t *testing.T) {
	data := struct {
		DryRun    bool
		Succeeded int
		Total     int
		Failed    int
	}{DryRun: true, Succeeded: 1, Total: 2, Failed: 1}
	markup := execute(t, "summary.tmpl", data)

	assert.Equal(t, "DRY RUN nothing was written\nDone: 1/2 successful, 1 failed.", lipbalm.StripTags(markup))

	styles := newStyles(t, termenv.ANSI)
	out, err := lipbalm.ExpandTags(markup, styles)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, styles["DryRunBanner"].Render("DRY RUN")+" "))
	assert.Contains(t, out, styles["Error"].Render("1")+" failed.")

	data.DryRun, data.Failed, data.Succeeded = false, 0, 2
	assert.Equal(t, "Done: 2/2 successful, 0 failed.", lipbalm.StripTags(execute(t, "summary.tmpl", data)))
}

func TestBackupReport(t *testing.T) {
	tests := []struct {
		name   string
		report backupReport
		want   []string
	}{
		{
			name:   "next steps",
			report: backupReport{RepoURL: "https://github.com/me/dots", URLSource: "prompt", Worktree: "/home/me/.local/share/dotsync/repo"},
			want:   []string{"Repository https://github.com/me/dots (prompt)", "Next steps:", "cd /home/me/.local/share/dotsync/repo", `git commit -m "update dotfiles"`},
		},
		{
			name:   "init fallback and pushed",
			report: backupReport{RepoURL: "u", URLSource: "config", Worktree: "/w", InitFallback: true, Committed: true, Pushed: true},
			want:   []string{"Working tree /w (new repository, clone failed)", "Committed and pushed."},
		},
		{
			name:   "pushed without a commit",
			report: backupReport{RepoURL: "u", URLSource: "flag", Worktree: "/w", Pushed: true},
			want:   []string{"Nothing to commit; pushed."},
		},
		{
			name:   "worktree with markup characters",
			report: backupReport{RepoURL: "git@host:me/dots.git", URLSource: "saved", Worktree: "/tmp/a&b", Committed: true},
			want:   []string{"Working tree /tmp/a&b", "git -C /tmp/a&b push"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plain := lipbalm.StripTags(execute(t, "backup.tmpl", tt.report))
			assert.NotContains(t, plain, "<")
			for _, s := range tt.want {
				assert.Contains(t, plain, s)
			}
		})
	}
}

func TestNoFormat(t *testing.T) {
	input := `<Success>synced</Success><no-format> (ok)</no-format>`

	styles := newStyles(t, termenv.TrueColor)
	out, err := lipbalm.ExpandTags(input, styles)
	require.NoError(t, err)
	assert.Equal(t, styles["Success"].Render("synced"), out)

	styles = newStyles(t, termenv.Ascii)
	out, err = lipbalm.ExpandTags(input, styles)
	require.NoError(t, err)
	assert.Equal(t, "synced (ok)", out)

	assert.Equal(t, "synced (ok)", lipbalm.StripTags(input))
}

func TestUnknownTagKeepsText(t *testing.T) {
	styles := newStyles(t, termenv.TrueColor)
	out, err := lipbalm.ExpandTags(`<Sparkle>~/.vimrc</Sparkle> <Muted>skipped</Muted>`, styles)
	require.NoError(t, err)
	assert.Equal(t, "~/.vimrc "+styles["Muted"].Render("skipped"), out)
}

func TestRender(t *testing.T) {
	styles := newStyles(t, termenv.TrueColor)

	out, err := lipbalm.Render(`<Header>{{.Title}}</Header> {{.Count}} entries`, struct {
		Title string
		Count int
	}{"Status", 3}, styles)
	require.NoError(t, err)
	assert.Equal(t, styles["Header"].Render("Status")+" 3 entries", out)

	_, err = lipbalm.Render(`<Header>{{.Title</Header>`, nil, styles)
	assert.ErrorContains(t, err, "failed to parse template")

	_, err = lipbalm.Render(`{{.Missing}}`, struct{ Title string }{"x"}, styles)
	assert.ErrorContains(t, err, "failed to execute template")

	out, err = lipbalm.ExpandTags("", styles)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, lipbalm.StripTags(""))
}
