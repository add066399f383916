// Package git drives the git executable for the dotfiles working tree and
// for git-sourced mapping entries.
package git

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
)

// DefaultRemote is the remote dotsync clones from and pushes to
const DefaultRemote = "origin"

// CloneOptions controls Clone
type CloneOptions struct {
	Branch string
	// Depth > 0 makes a shallow clone
	Depth int
}

// Client runs git commands
type Client struct {
	GitPath string
	// Env is appended to the process environment of every command
	Env    []string
	logger zerolog.Logger
}

// NewClient creates a git client using the git found on PATH
func NewClient() *Client {
	gitPath, _ := exec.LookPath("git")
	return &Client{
		GitPath: gitPath,
		logger:  logging.GetLogger("git"),
	}
}

// Available reports whether a git executable was found
func (c *Client) Available() bool {
	return c.GitPath != ""
}

// command creates a git command. The terminal prompt is disabled so a
// missing credential fails instead of hanging the run.
func (c *Client) command(ctx context.Context, dir string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.GitPath, args...)
	cmd.Dir = dir
	cmd.Env = append(append(os.Environ(), "GIT_TERMINAL_PROMPT=0"), c.Env...)
	return cmd
}

// run executes git and returns its trimmed combined output
func (c *Client) run(ctx context.Context, dir string, args ...string) (string, error) {
	if !c.Available() {
		return "", errors.New(errors.ErrNotFound, "git executable not found on PATH")
	}

	c.logger.Debug().Str("dir", dir).Strs("args", args).Msg("Running git")
	output, err := c.command(ctx, dir, args...).CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), errors.ErrCanceled, "git "+args[0]+" canceled")
		}
		gitErr := newError(args, string(output), err)
		c.logger.Debug().Err(gitErr).Int("exit", gitErr.ExitCode).Msg("git failed")
		return "", gitErr
	}
	return strings.TrimSpace(string(output)), nil
}

// Clone clones url into dir
func (c *Client) Clone(ctx context.Context, url, dir string, opts CloneOptions) error {
	args := []string{"clone"}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	args = append(args, "--", url, dir)

	if _, err := c.run(ctx, "", args...); err != nil {
		return errors.Wrapf(err, errors.ErrGitClone, "failed to clone %s", url).
			WithDetail("url", url).
			WithDetail("dir", dir)
	}
	return nil
}

// Pull fast-forwards dir from its upstream
func (c *Client) Pull(ctx context.Context, dir string) error {
	if _, err := c.run(ctx, dir, "pull", "--ff-only"); err != nil {
		code := errors.ErrGitPull
		if IsConflict(err) {
			code = errors.ErrGitConflict
		}
		return errors.Wrapf(err, code, "failed to pull in %s", dir).WithDetail("dir", dir)
	}
	return nil
}

// Init creates an empty repository in dir on the given branch
func (c *Client) Init(ctx context.Context, dir, branch string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dir)
	}

	args := []string{"init"}
	if branch != "" {
		args = append(args, "--initial-branch", branch)
	}
	if _, err := c.run(ctx, dir, args...); err != nil {
		return errors.Wrapf(err, errors.ErrGitInit, "failed to init repository in %s", dir)
	}
	return nil
}

// AddRemote registers url as origin. An existing origin is repointed.
func (c *Client) AddRemote(ctx context.Context, dir, url string) error {
	_, err := c.run(ctx, dir, "remote", "add", DefaultRemote, url)
	if err != nil && IsRemoteExists(err) {
		_, err = c.run(ctx, dir, "remote", "set-url", DefaultRemote, url)
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrGitInit, "failed to set remote %s", url)
	}
	return nil
}

// RemoteURL returns the origin URL of dir
func (c *Client) RemoteURL(ctx context.Context, dir string) (string, error) {
	return c.run(ctx, dir, "remote", "get-url", DefaultRemote)
}

// IsRepository reports whether dir is the top of a git working tree
func (c *Client) IsRepository(ctx context.Context, dir string) bool {
	if _, err := os.Stat(dir); err != nil {
		return false
	}
	out, err := c.run(ctx, dir, "rev-parse", "--show-cdup")
	return err == nil && out == ""
}

// AddAll stages every change in dir
func (c *Client) AddAll(ctx context.Context, dir string) error {
	if _, err := c.run(ctx, dir, "add", "-A"); err != nil {
		return errors.Wrap(err, errors.ErrGitCommit, "failed to stage changes")
	}
	return nil
}

// Commit records the staged changes. It returns false without error when
// there was nothing to commit.
func (c *Client) Commit(ctx context.Context, dir, message string) (bool, error) {
	if _, err := c.run(ctx, dir, "commit", "-m", message); err != nil {
		if IsNothingToCommit(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrGitCommit, "failed to commit")
	}
	return true, nil
}

// Push sends the current branch to origin, setting its upstream
func (c *Client) Push(ctx context.Context, dir string) error {
	if _, err := c.run(ctx, dir, "push", "--set-upstream", DefaultRemote, "HEAD"); err != nil {
		code := errors.ErrGitPush
		if IsConflict(err) {
			code = errors.ErrGitConflict
		}
		return errors.Wrap(err, code, "failed to push")
	}
	return nil
}

// Status returns the porcelain status of dir
func (c *Client) Status(ctx context.Context, dir string) (string, error) {
	return c.run(ctx, dir, "status", "--porcelain")
}

// Head returns the abbreviated commit hash of HEAD
func (c *Client) Head(ctx context.Context, dir string) (string, error) {
	return c.run(ctx, dir, "rev-parse", "--short", "HEAD")
}
