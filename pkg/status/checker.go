package status

import (
	"fmt"
	"time"

	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// State is the comparison outcome for one entry
type State string

const (
	// StateInSync means the home copy matches the repository copy
	StateInSync State = "in-sync"
	// StateModified means both copies exist and differ
	StateModified State = "modified"
	// StateMissingHome means the repository has the entry but home does not
	StateMissingHome State = "missing-home"
	// StateMissingRepo means the repository copy is absent
	StateMissingRepo State = "missing-repo"
	// StatePresent means a git or external destination exists
	StatePresent State = "present"
	// StateAbsent means a git or external destination does not exist
	StateAbsent State = "absent"
	// StateError means the entry could not be inspected
	StateError State = "error"
)

// EntryStatus describes the state of one configured entry
type EntryStatus struct {
	Entry        types.Entry            `json:"entry"`
	Path         string                 `json:"path"`
	State        State                  `json:"state"`
	Message      string                 `json:"message"`
	LastModified time.Time              `json:"last_modified,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Checker inspects entries of one source kind
type Checker interface {
	CheckStatus(entry types.Entry, fsys types.FS) *EntryStatus
}

// SourceChecker dispatches each entry to the checker for its source
type SourceChecker struct {
	checkers map[types.Source]Checker
	fs       types.FS
}

// NewSourceChecker creates a SourceChecker for the given configuration
func NewSourceChecker(cfg *config.Config, p paths.Paths, fsys types.FS) *SourceChecker {
	sc := &SourceChecker{
		checkers: make(map[types.Source]Checker),
		fs:       fsys,
	}

	sc.checkers[types.SourceRepo] = NewRepoChecker(p, cfg.Worktree, cfg.Layout)
	sc.checkers[types.SourceGit] = NewDestinationChecker(p, types.SourceGit)
	sc.checkers[types.SourceExternal] = NewDestinationChecker(p, types.SourceExternal)

	return sc
}

// CheckEntry returns the status of a single entry
func (sc *SourceChecker) CheckEntry(entry types.Entry) *EntryStatus {
	checker, exists := sc.checkers[entry.EffectiveSource()]
	if !exists {
		return &EntryStatus{
			Entry:    entry,
			Path:     entry.Path,
			State:    StateError,
			Message:  fmt.Sprintf("Unknown source: %s", entry.Source),
			Metadata: make(map[string]interface{}),
		}
	}
	return checker.CheckStatus(entry, sc.fs)
}

// CheckAll returns the status of every entry in order
func (sc *SourceChecker) CheckAll(entries []types.Entry) []*EntryStatus {
	logger := logging.GetLogger("status")
	statuses := make([]*EntryStatus, 0, len(entries))
	for _, entry := range entries {
		st := sc.CheckEntry(entry)
		logger.Debug().Str("path", entry.Path).Str("state", string(st.State)).Msg("Checked entry")
		statuses = append(statuses, st)
	}
	return statuses
}

// Count tallies statuses by state
func Count(statuses []*EntryStatus) map[State]int {
	counts := make(map[State]int)
	for _, st := range statuses {
		counts[st.State]++
	}
	return counts
}
