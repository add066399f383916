package datastore

import (
	"time"

	"github.com/arthur-debert/dotsync/pkg/types"
)

// Journal records finished runs and lists them back.
type Journal interface {
	// RecordRun stores the outcome of one run.
	RecordRun(summary types.Summary) error

	// RecentRuns returns up to n runs, newest first. n <= 0 returns all.
	RecentRuns(n int) ([]Run, error)

	Close() error
}

// Run is the stored form of a types.Summary
type Run struct {
	ID        string        `json:"id"`
	Command   string        `json:"command"`
	Started   time.Time     `json:"started"`
	Duration  time.Duration `json:"duration"`
	DryRun    bool          `json:"dry_run,omitempty"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Changed   int           `json:"changed"`
	Entries   []EntryRecord `json:"entries"`
}

// EntryRecord is the stored outcome of one entry
type EntryRecord struct {
	Path    string       `json:"path"`
	Source  types.Source `json:"source"`
	Status  types.Status `json:"status"`
	Message string       `json:"message,omitempty"`
}

// NewRun converts a summary into its stored form
func NewRun(s types.Summary) Run {
	run := Run{
		ID:        s.RunID,
		Command:   s.Command,
		Started:   s.Started,
		Duration:  s.Duration,
		DryRun:    s.DryRun,
		Total:     s.Total(),
		Succeeded: s.Succeeded(),
		Failed:    s.Failed(),
		Skipped:   s.Skipped(),
		Changed:   s.Changed(),
	}
	for _, r := range s.Results {
		run.Entries = append(run.Entries, EntryRecord{
			Path:    r.Entry.Path,
			Source:  r.Entry.EffectiveSource(),
			Status:  r.Status,
			Message: r.Message,
		})
	}
	return run
}
