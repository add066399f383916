package status

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/internal/hashutil"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// BaseChecker provides common functionality for all status checkers
type BaseChecker struct {
	paths paths.Paths
}

// InitializeStatus creates a new EntryStatus with default values
func (bc *BaseChecker) InitializeStatus(entry types.Entry) *EntryStatus {
	return &EntryStatus{
		Entry:        entry,
		Path:         entry.Path,
		LastModified: time.Time{},
		Metadata:     make(map[string]interface{}),
	}
}

// HomeTarget resolves the entry to its absolute home path and its path
// relative to home.
func (bc *BaseChecker) HomeTarget(entry types.Entry) (string, string, error) {
	rel, err := bc.paths.RelToHome(entry.Path)
	if err != nil {
		return "", "", err
	}
	return filepath.Join(bc.paths.Home(), rel), rel, nil
}

// SetError sets the status to error with a formatted message
func (bc *BaseChecker) SetError(status *EntryStatus, action string, err error) *EntryStatus {
	status.State = StateError
	status.Message = fmt.Sprintf("Failed to %s: %v", action, err)
	return status
}

// RepoChecker compares home copies of repo entries with the working tree
type RepoChecker struct {
	BaseChecker
	worktree string
	layout   string
}

// NewRepoChecker creates a RepoChecker for a working tree and layout
func NewRepoChecker(p paths.Paths, worktree, layout string) *RepoChecker {
	return &RepoChecker{
		BaseChecker: BaseChecker{paths: p},
		worktree:    worktree,
		layout:      layout,
	}
}

// CheckStatus compares the home copy with the repository copy
func (rc *RepoChecker) CheckStatus(entry types.Entry, fsys types.FS) *EntryStatus {
	status := rc.InitializeStatus(entry)

	home, rel, err := rc.HomeTarget(entry)
	if err != nil {
		return rc.SetError(status, "resolve path", err)
	}
	repo := filepath.Join(rc.worktree, paths.RepoPath(rc.layout, rel))
	status.Metadata["home_path"] = home
	status.Metadata["repo_path"] = repo

	if _, err := fsys.Lstat(repo); err != nil {
		if !os.IsNotExist(err) {
			return rc.SetError(status, "check repository copy", err)
		}
		status.State = StateMissingRepo
		status.Message = "not in repository (run backup)"
		return status
	}

	homeInfo, err := fsys.Lstat(home)
	if err != nil {
		if !os.IsNotExist(err) {
			return rc.SetError(status, "check home copy", err)
		}
		status.State = StateMissingHome
		status.Message = "not in home (run sync)"
		return status
	}
	status.LastModified = homeInfo.ModTime()

	same, err := filesystem.EqualWithMode(fsys, repo, home, entry.ExecBits())
	if err != nil {
		return rc.SetError(status, "compare", err)
	}
	if same {
		status.State = StateInSync
		status.Message = "up to date"
		return status
	}

	status.State = StateModified
	status.Message = "home and repository differ"
	if sum, err := hashutil.CalculateTreeChecksum(home); err == nil {
		status.Metadata["home_checksum"] = sum
	}
	if sum, err := hashutil.CalculateTreeChecksum(repo); err == nil {
		status.Metadata["repo_checksum"] = sum
	}
	return status
}

// DestinationChecker reports whether git and external destinations exist
type DestinationChecker struct {
	BaseChecker
	source types.Source
}

// NewDestinationChecker creates a DestinationChecker for one source kind
func NewDestinationChecker(p paths.Paths, source types.Source) *DestinationChecker {
	return &DestinationChecker{
		BaseChecker: BaseChecker{paths: p},
		source:      source,
	}
}

// CheckStatus reports present or absent for the entry's destination
func (dc *DestinationChecker) CheckStatus(entry types.Entry, fsys types.FS) *EntryStatus {
	status := dc.InitializeStatus(entry)
	status.Metadata["url"] = entry.URL

	home, _, err := dc.HomeTarget(entry)
	if err != nil {
		return dc.SetError(status, "resolve path", err)
	}
	status.Metadata["home_path"] = home

	info, err := fsys.Lstat(home)
	if err != nil {
		if !os.IsNotExist(err) {
			return dc.SetError(status, "check destination", err)
		}
		status.State = StateAbsent
		status.Message = fmt.Sprintf("not installed from %s", entry.URL)
		return status
	}

	status.State = StatePresent
	status.LastModified = info.ModTime()
	status.Message = fmt.Sprintf("installed from %s", entry.URL)
	if dc.source == types.SourceGit {
		_, err := fsys.Lstat(filepath.Join(home, ".git"))
		status.Metadata["git_checkout"] = err == nil
		if err != nil {
			status.Message = "present but not a git checkout"
		}
	}
	return status
}
