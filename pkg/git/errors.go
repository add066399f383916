package git

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Common messages from git output
const (
	errMsgNotRepository    = "not a git repository"
	errMsgAuthFailed       = "Authentication failed"
	errMsgPermissionDenied = "Permission denied"
	errMsgCouldNotRead     = "could not read Username"
	errMsgConflict         = "CONFLICT"
	errMsgNotFastForward   = "Not possible to fast-forward"
	errMsgDiverging        = "diverging branches"
	errMsgRejected         = "[rejected]"
	errMsgNothingToCommit  = "nothing to commit"
	errMsgNothingAdded     = "nothing added to commit"
	errMsgRemoteExists     = "remote origin already exists"
)

// Error is a failed git invocation
type Error struct {
	Args     []string
	ExitCode int
	Stderr   string
	err      error
}

func (e *Error) Error() string {
	cmd := "git"
	if len(e.Args) > 0 {
		cmd = "git " + e.Args[0]
	}
	if strings.TrimSpace(e.Stderr) == "" {
		return fmt.Sprintf("%s failed: %v", cmd, e.err)
	}
	return fmt.Sprintf("%s failed: %s", cmd, strings.TrimSpace(e.Stderr))
}

func (e *Error) Unwrap() error {
	return e.err
}

// newError creates an Error from command output and the exec error
func newError(args []string, output string, err error) *Error {
	exitCode := -1

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &Error{
		Args:     args,
		ExitCode: exitCode,
		Stderr:   output,
		err:      err,
	}
}

// IsNotRepository checks if the error indicates not a git repository
func IsNotRepository(err error) bool {
	return containsError(err, errMsgNotRepository)
}

// IsAuthRequired checks if the error indicates authentication is required
func IsAuthRequired(err error) bool {
	return containsError(err, errMsgAuthFailed) ||
		containsError(err, errMsgPermissionDenied) ||
		containsError(err, errMsgCouldNotRead)
}

// IsConflict checks if the error indicates the histories cannot be combined
// without manual work
func IsConflict(err error) bool {
	return containsError(err, errMsgConflict) ||
		containsError(err, errMsgNotFastForward) ||
		containsError(err, errMsgDiverging) ||
		containsError(err, errMsgRejected)
}

// IsNothingToCommit checks if the error indicates nothing to commit
func IsNothingToCommit(err error) bool {
	return containsError(err, errMsgNothingToCommit) || containsError(err, errMsgNothingAdded)
}

// IsRemoteExists checks if the error indicates the origin remote is already set
func IsRemoteExists(err error) bool {
	return containsError(err, errMsgRemoteExists)
}

// GetExitCode returns the exit code from a git error, or -1 if not available
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var gitErr *Error
	if errors.As(err, &gitErr) {
		return gitErr.ExitCode
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}

// containsError checks if the error output contains a specific message
func containsError(err error, msg string) bool {
	if err == nil {
		return false
	}

	var gitErr *Error
	if errors.As(err, &gitErr) {
		return strings.Contains(strings.ToLower(gitErr.Stderr), strings.ToLower(msg))
	}

	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(msg))
}
