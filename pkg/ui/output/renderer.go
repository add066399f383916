package output

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/datastore"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/status"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/ui/lipbalm"
	"github.com/arthur-debert/dotsync/pkg/ui/output/styles"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const (
	symbolOK   = "\u25cf"
	symbolFail = "\u2717"
	symbolSkip = "\u25e6"
)

// Renderer writes results to a terminal or a plain stream
type Renderer struct {
	templates *texttemplate.Template
	writer    io.Writer
	noColor   bool
	logger    zerolog.Logger
}

// NewRenderer creates a Renderer writing to w. With noColor set every
// style tag is stripped.
func NewRenderer(w io.Writer, noColor bool) (*Renderer, error) {
	logger := logging.GetLogger("output")

	logger.Debug().
		Bool("noColor", noColor).
		Str("NO_COLOR_env", os.Getenv("NO_COLOR")).
		Str("TERM", os.Getenv("TERM")).
		Msg("Creating renderer")

	if noColor {
		pterm.DisableColor()
	} else {
		renderer := lipgloss.NewRenderer(w)
		lipbalm.SetDefaultRenderer(renderer)
		logger.Debug().Str("colorProfile", fmt.Sprintf("%v", renderer.ColorProfile())).Msg("Lipgloss renderer created")
	}

	tmpl, err := texttemplate.New("output").
		Funcs(texttemplate.FuncMap{"esc": texttemplate.HTMLEscapeString}).
		ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{
		templates: tmpl,
		writer:    w,
		noColor:   noColor,
		logger:    logger,
	}, nil
}

func (r *Renderer) expand(markup string) (string, error) {
	if r.noColor {
		return lipbalm.StripTags(markup), nil
	}
	return lipbalm.ExpandTags(markup, styles.StyleRegistry)
}

func (r *Renderer) execute(name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	out, err := r.expand(strings.TrimRight(buf.String(), "\n"))
	if err != nil {
		return fmt.Errorf("failed to expand tags: %w", err)
	}
	_, err = fmt.Fprintln(r.writer, out)
	return err
}

// style applies one registered style to plain text
func (r *Renderer) style(name, text string) string {
	out, err := r.expand(fmt.Sprintf("<%s>%s</%s>", name, texttemplate.HTMLEscapeString(text), name))
	if err != nil {
		return text
	}
	return out
}

// Progress prints one line per processed entry:
//
//	 50% [●] ~/.zshrc - copied from repo
func (r *Renderer) Progress(index, total int, result types.Result) {
	percent := 100
	if total > 0 {
		percent = (index + 1) * 100 / total
	}

	symbol, style := symbolOK, "Success"
	switch result.Status {
	case types.StatusFailed:
		symbol, style = symbolFail, "Error"
	case types.StatusSkipped:
		symbol, style = symbolSkip, "Muted"
	case types.StatusUnchanged:
		style = "Muted"
	}

	data := struct {
		Percent string
		Symbol  string
		Style   string
		Path    string
		Message string
	}{
		Percent: fmt.Sprintf("%3d%%", percent),
		Symbol:  symbol,
		Style:   style,
		Path:    result.Entry.Path,
		Message: result.Message,
	}
	if err := r.execute("progress.tmpl", data); err != nil {
		r.logger.Warn().Err(err).Msg("Failed to render progress")
	}
}

// Summary prints the closing line of a run
func (r *Renderer) Summary(summary *types.Summary) error {
	return r.execute("summary.tmpl", struct {
		DryRun    bool
		Succeeded int
		Total     int
		Failed    int
	}{
		DryRun:    summary.DryRun,
		Succeeded: summary.Succeeded(),
		Total:     summary.Total(),
		Failed:    summary.Failed(),
	})
}

// BackupReport prints the summary line of the collection pass followed by
// where the backup went and what to do next
func (r *Renderer) BackupReport(report *backup.Report) error {
	if report.Summary != nil {
		if err := r.Summary(report.Summary); err != nil {
			return err
		}
	}
	return r.execute("backup.tmpl", report)
}

// StatusTable prints entry states as a table
func (r *Renderer) StatusTable(statuses []*status.EntryStatus) error {
	data := pterm.TableData{{"PATH", "SOURCE", "STATE", "DETAIL"}}
	for _, st := range statuses {
		data = append(data, []string{
			st.Entry.Path,
			string(st.Entry.EffectiveSource()),
			r.style(stateStyle(st.State), string(st.State)),
			st.Message,
		})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render status table: %w", err)
	}
	_, err = fmt.Fprintln(r.writer, table)
	return err
}

func stateStyle(state status.State) string {
	switch state {
	case status.StateInSync, status.StatePresent:
		return "Success"
	case status.StateModified, status.StateMissingHome:
		return "Warning"
	case status.StateError:
		return "Error"
	default:
		return "Muted"
	}
}

// EntryList prints the configured entries. repoPath gives the repository
// location shown for repo entries.
func (r *Renderer) EntryList(entries []types.Entry, repoPath func(types.Entry) string) error {
	table := tablewriter.NewWriter(r.writer)
	table.SetHeader([]string{"Path", "Source", "From", "Flags"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, e := range entries {
		from := e.URL
		if e.EffectiveSource() == types.SourceRepo && repoPath != nil {
			from = repoPath(e)
		}

		var flags []string
		if e.Exec {
			flags = append(flags, "exec")
		}
		switch e.EffectiveSource() {
		case types.SourceGit:
			flags = append(flags, "branch="+e.EffectiveBranch())
		case types.SourceExternal:
			flags = append(flags, "type="+string(e.EffectiveType()))
			if e.DirName != "" {
				flags = append(flags, "dir="+e.DirName)
			}
		}

		table.Append([]string{e.Path, string(e.EffectiveSource()), from, strings.Join(flags, ",")})
	}

	table.Render()
	return nil
}

// RunHistory prints journal records, newest first
func (r *Renderer) RunHistory(runs []datastore.Run) error {
	if len(runs) == 0 {
		return r.RenderMessage("Muted", "No runs recorded yet.")
	}

	table := tablewriter.NewWriter(r.writer)
	table.SetHeader([]string{"Started", "Command", "OK", "Failed", "Skipped", "Duration", "Run"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, run := range runs {
		command := run.Command
		if run.DryRun {
			command += " (dry run)"
		}
		id := run.ID
		if len(id) > 8 {
			id = id[:8]
		}
		table.Append([]string{
			run.Started.Local().Format("2006-01-02 15:04:05"),
			command,
			fmt.Sprintf("%d/%d", run.Succeeded, run.Total),
			fmt.Sprintf("%d", run.Failed),
			fmt.Sprintf("%d", run.Skipped),
			run.Duration.Round(time.Millisecond).String(),
			id,
		})
	}

	table.Render()
	return nil
}

// RenderError prints an error
func (r *Renderer) RenderError(err error) error {
	return r.execute("error.tmpl", map[string]string{"Error": err.Error()})
}

// RenderMessage prints a message in one style
func (r *Renderer) RenderMessage(style, message string) error {
	_, err := fmt.Fprintln(r.writer, r.style(style, message))
	return err
}
