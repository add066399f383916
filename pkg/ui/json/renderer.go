// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/datastore"
	"github.com/arthur-debert/dotsync/pkg/status"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Renderer provides JSON output for machine consumption
type Renderer struct {
	encoder *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) (*Renderer, error) {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}, nil
}

// Progress is silent; results are part of the summary document
func (r *Renderer) Progress(index, total int, result types.Result) {}

// Summary renders a run summary
func (r *Renderer) Summary(summary *types.Summary) error {
	return r.encoder.Encode(summary)
}

// BackupReport renders a backup report, summary included
func (r *Renderer) BackupReport(report *backup.Report) error {
	return r.encoder.Encode(report)
}

// StatusTable renders entry states
func (r *Renderer) StatusTable(statuses []*status.EntryStatus) error {
	return r.encoder.Encode(statuses)
}

// EntryList renders the configured entries. Repo entries carry their
// repository path.
func (r *Renderer) EntryList(entries []types.Entry, repoPath func(types.Entry) string) error {
	type listed struct {
		types.Entry
		RepoPath string `json:"repo_path,omitempty"`
	}
	out := make([]listed, 0, len(entries))
	for _, e := range entries {
		item := listed{Entry: e}
		if e.EffectiveSource() == types.SourceRepo && repoPath != nil {
			item.RepoPath = repoPath(e)
		}
		out = append(out, item)
	}
	return r.encoder.Encode(out)
}

// RunHistory renders journal records
func (r *Renderer) RunHistory(runs []datastore.Run) error {
	if runs == nil {
		runs = []datastore.Run{}
	}
	return r.encoder.Encode(runs)
}

// RenderError renders an error as JSON
func (r *Renderer) RenderError(err error) error {
	return r.encoder.Encode(map[string]string{"error": err.Error()})
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(style, msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
