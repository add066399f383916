package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	gosync "sync"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/git"
	"github.com/arthur-debert/dotsync/pkg/internal/hashutil"
)

// FakeGit stands in for *git.Client. A checkout is any directory holding
// .git/remote; cloning url copies the directory registered in Remotes.
type FakeGit struct {
	// Remotes maps clone URLs to directories holding their content
	Remotes map[string]string

	CloneErr  error
	PullErr   error
	InitErr   error
	CommitErr error
	PushErr   error
	// NothingToCommit makes Commit report no changes
	NothingToCommit bool

	mu      gosync.Mutex
	calls   []string
	commits []string
}

// NewFakeGit returns a FakeGit with no remotes
func NewFakeGit() *FakeGit {
	return &FakeGit{Remotes: map[string]string{}}
}

// Calls returns the recorded operations, e.g. "clone <url> <dir> <branch>"
func (g *FakeGit) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// Commits returns the messages of successful commits
func (g *FakeGit) Commits() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.commits...)
}

// Called reports whether an operation with the given prefix was recorded
func (g *FakeGit) Called(prefix string) bool {
	for _, c := range g.Calls() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (g *FakeGit) record(format string, args ...interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, fmt.Sprintf(format, args...))
}

func (g *FakeGit) Clone(ctx context.Context, url, dir string, opts git.CloneOptions) error {
	g.record("clone %s %s %s", url, dir, opts.Branch)
	if g.CloneErr != nil {
		return errors.Wrapf(g.CloneErr, errors.ErrGitClone, "failed to clone %s", url)
	}
	src, ok := g.Remotes[url]
	if !ok {
		return errors.Newf(errors.ErrGitClone, "failed to clone %s: repository not found", url)
	}
	if err := copyChildren(src, dir); err != nil {
		return err
	}
	if err := markRepository(dir, url); err != nil {
		return err
	}
	return setHead(dir, src)
}

func (g *FakeGit) Pull(ctx context.Context, dir string) error {
	g.record("pull %s", dir)
	if g.PullErr != nil {
		return errors.Wrapf(g.PullErr, errors.ErrGitPull, "failed to pull in %s", dir)
	}
	url, err := g.RemoteURL(ctx, dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrGitPull, "not a git repository")
	}
	src, ok := g.Remotes[url]
	if !ok {
		return nil
	}
	head, _ := g.Head(ctx, dir)
	sum, err := hashutil.CalculateTreeChecksum(src)
	if err != nil || sum == head {
		return err
	}
	if err := copyChildren(src, dir); err != nil {
		return err
	}
	return setHead(dir, src)
}

func (g *FakeGit) IsRepository(ctx context.Context, dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git", "remote"))
	return err == nil
}

func (g *FakeGit) RemoteURL(ctx context.Context, dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ".git", "remote"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (g *FakeGit) Head(ctx context.Context, dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, ".git", "head"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (g *FakeGit) Init(ctx context.Context, dir, branch string) error {
	g.record("init %s %s", dir, branch)
	if g.InitErr != nil {
		return errors.Wrap(g.InitErr, errors.ErrGitInit, "failed to init repository")
	}
	return markRepository(dir, "")
}

func (g *FakeGit) AddRemote(ctx context.Context, dir, url string) error {
	g.record("remote %s %s", dir, url)
	return markRepository(dir, url)
}

func (g *FakeGit) AddAll(ctx context.Context, dir string) error {
	g.record("add %s", dir)
	return nil
}

func (g *FakeGit) Commit(ctx context.Context, dir, message string) (bool, error) {
	g.record("commit %s %s", dir, message)
	if g.CommitErr != nil {
		return false, errors.Wrap(g.CommitErr, errors.ErrGitCommit, "failed to commit")
	}
	if g.NothingToCommit {
		return false, nil
	}
	g.mu.Lock()
	g.commits = append(g.commits, message)
	g.mu.Unlock()
	return true, nil
}

func (g *FakeGit) Push(ctx context.Context, dir string) error {
	g.record("push %s", dir)
	if g.PushErr != nil {
		return errors.Wrap(g.PushErr, errors.ErrGitPush, "failed to push")
	}
	return nil
}

func markRepository(dir, url string) error {
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ".git", "remote"), []byte(url), 0644)
}

func setHead(dir, src string) error {
	sum, err := hashutil.CalculateTreeChecksum(src)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ".git", "head"), []byte(sum), 0644)
}

func copyChildren(src, dst string) error {
	fsys := filesystem.NewOS()
	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Name() == ".git" {
			continue
		}
		if err := filesystem.Copy(fsys, filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
