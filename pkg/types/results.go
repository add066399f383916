package types

import (
	"time"
)

// Status is the outcome of applying or collecting one entry
type Status string

const (
	// StatusOK means the entry was written
	StatusOK Status = "ok"
	// StatusUnchanged means the target already matched and nothing was written
	StatusUnchanged Status = "unchanged"
	// StatusSkipped means the entry does not apply to this run
	StatusSkipped Status = "skip"
	// StatusFailed means the entry could not be processed
	StatusFailed Status = "fail"
)

// Result records what happened to a single entry
type Result struct {
	Entry   Entry  `json:"entry"`
	Status  Status `json:"status"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Succeeded reports whether the entry ended in the desired state
func (r Result) Succeeded() bool {
	return r.Status == StatusOK || r.Status == StatusUnchanged
}

// Summary collects the results of one sync or backup run
type Summary struct {
	Command  string        `json:"command"`
	RunID    string        `json:"run_id,omitempty"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	DryRun   bool          `json:"dry_run,omitempty"`
	Results  []Result      `json:"results"`
}

// Add appends a result
func (s *Summary) Add(r Result) {
	s.Results = append(s.Results, r)
}

// Total returns the number of processed entries
func (s Summary) Total() int {
	return len(s.Results)
}

// Succeeded counts entries that ended in the desired state
func (s Summary) Succeeded() int {
	n := 0
	for _, r := range s.Results {
		if r.Succeeded() {
			n++
		}
	}
	return n
}

// Failed counts failed entries
func (s Summary) Failed() int {
	return s.count(StatusFailed)
}

// Skipped counts skipped entries
func (s Summary) Skipped() int {
	return s.count(StatusSkipped)
}

// Changed counts entries that were actually written
func (s Summary) Changed() int {
	return s.count(StatusOK)
}

func (s Summary) count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// ProgressFunc is told about each entry as soon as it is processed. index is
// zero based.
type ProgressFunc func(index, total int, result Result)
