// Package ui selects how command results are written: styled terminal
// output, plain text or JSON.
package ui

import (
	"fmt"
	"io"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/datastore"
	"github.com/arthur-debert/dotsync/pkg/status"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/ui/json"
	"github.com/arthur-debert/dotsync/pkg/ui/output"
)

// Renderer writes command results in one format
type Renderer interface {
	// Progress reports one processed entry as soon as it is done
	Progress(index, total int, result types.Result)
	Summary(summary *types.Summary) error
	BackupReport(report *backup.Report) error
	StatusTable(statuses []*status.EntryStatus) error
	EntryList(entries []types.Entry, repoPath func(types.Entry) string) error
	RunHistory(runs []datastore.Run) error
	RenderError(err error) error
	RenderMessage(style, msg string) error
}

// NewRenderer creates a renderer for format writing to w
func NewRenderer(format Format, w io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		return NewRenderer(DetectFormat(w), w)
	case FormatTerminal:
		return output.NewRenderer(w, false)
	case FormatText:
		return output.NewRenderer(w, true)
	case FormatJSON:
		return json.New(w)
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}
