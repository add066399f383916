package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotsync/pkg/archive"
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/fetch"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/git"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// CommandName is recorded in summaries and the journal
const CommandName = "sync"

// Options tune a sync run
type Options struct {
	// DryRun reports what would change without writing anything
	DryRun bool
	// NoPull uses the working tree as it is
	NoPull bool
	// Progress, when set, is called after every entry
	Progress types.ProgressFunc
}

// Applier copies mapped entries from the repository into the home directory
type Applier struct {
	cfg     *config.Config
	paths   paths.Paths
	fs      types.FS
	git     Git
	fetcher Fetcher
	opts    Options
	logger  zerolog.Logger
}

// New creates an Applier
func New(cfg *config.Config, p paths.Paths, fsys types.FS, g Git, f Fetcher, opts Options) *Applier {
	return &Applier{
		cfg:     cfg,
		paths:   p,
		fs:      fsys,
		git:     g,
		fetcher: f,
		opts:    opts,
		logger:  logging.GetLogger("sync"),
	}
}

// Run prepares the working tree and applies every entry in order
func (a *Applier) Run(ctx context.Context) (*types.Summary, error) {
	summary := &types.Summary{
		Command: CommandName,
		Started: time.Now(),
		DryRun:  a.opts.DryRun,
	}

	if err := a.PrepareWorktree(ctx); err != nil {
		return summary, err
	}

	total := len(a.cfg.Files)
	for i, entry := range a.cfg.Files {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(summary.Started)
			return summary, errors.Wrap(err, errors.ErrCanceled, "sync interrupted")
		}

		result := a.Apply(ctx, entry)
		summary.Add(result)
		if a.opts.Progress != nil {
			a.opts.Progress(i, total, result)
		}
	}

	summary.Duration = time.Since(summary.Started)
	a.logger.Info().
		Int("ok", summary.Succeeded()).
		Int("failed", summary.Failed()).
		Int("total", summary.Total()).
		Dur("duration", summary.Duration).
		Msg("Sync finished")
	return summary, nil
}

// PrepareWorktree clones the repository when the working tree is absent
// and fast-forwards it otherwise. Raw mode, dry runs and NoPull leave it
// alone.
func (a *Applier) PrepareWorktree(ctx context.Context) error {
	if a.cfg.Mode == config.ModeRaw || a.opts.NoPull || a.opts.DryRun {
		a.logger.Debug().Str("mode", a.cfg.Mode).Bool("no_pull", a.opts.NoPull).Msg("Skipping working tree update")
		return nil
	}
	if !a.hasRepoEntries() {
		return nil
	}

	worktree := a.cfg.Worktree
	if a.git.IsRepository(ctx, worktree) {
		a.logger.Info().Str("worktree", worktree).Msg("Pulling dotfiles repository")
		return a.git.Pull(ctx, worktree)
	}

	if a.cfg.Repo == "" {
		return errors.New(errors.ErrConfigValid, "no repository configured; set repo in the config file")
	}
	if filesystem.Exists(a.fs, worktree) {
		entries, err := a.fs.ReadDir(worktree)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", worktree)
		}
		if len(entries) > 0 {
			return errors.Newf(errors.ErrGitClone, "%s exists and is not a git repository", worktree)
		}
	}
	if err := a.fs.MkdirAll(filepath.Dir(worktree), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(worktree))
	}

	a.logger.Info().Str("repo", a.cfg.Repo).Str("worktree", worktree).Msg("Cloning dotfiles repository")
	return a.git.Clone(ctx, a.cfg.Repo, worktree, git.CloneOptions{Branch: a.cfg.Branch})
}

func (a *Applier) hasRepoEntries() bool {
	return len(a.cfg.RepoEntries()) > 0
}

// Apply brings one entry into place and reports the outcome. It never
// returns an error; failures are part of the result.
func (a *Applier) Apply(ctx context.Context, entry types.Entry) types.Result {
	result := types.Result{Entry: entry}

	rel, err := a.paths.RelToHome(entry.Path)
	if err != nil {
		return a.failed(result, err)
	}
	dst := filepath.Join(a.paths.Home(), rel)
	result.Target = dst

	var message string
	var status types.Status
	switch entry.EffectiveSource() {
	case types.SourceRepo:
		if a.cfg.Mode == config.ModeRaw {
			status, message, err = a.applyRaw(ctx, entry, rel, dst)
		} else {
			status, message, err = a.applyRepo(entry, rel, dst)
		}
	case types.SourceGit:
		status, message, err = a.applyGit(ctx, entry, dst)
	case types.SourceExternal:
		status, message, err = a.applyExternal(ctx, entry, dst)
	default:
		err = errors.Newf(errors.ErrUnknownSource, "Unknown source: %s", entry.Source)
	}
	if err != nil {
		return a.failed(result, err)
	}

	if status == types.StatusOK && entry.Exec {
		if a.opts.DryRun {
			message += " (executable)"
		} else if err := filesystem.MakeExecutable(a.fs, dst); err != nil {
			return a.failed(result, errors.Wrap(err, errors.ErrPermission, "chmod failed"))
		} else {
			message += " (executable)"
		}
	}

	result.Status = status
	result.Message = message
	a.logger.Debug().Str("path", entry.Path).Str("status", string(status)).Msg(message)
	return result
}

func (a *Applier) failed(result types.Result, err error) types.Result {
	result.Status = types.StatusFailed
	result.Err = err
	result.Message = "FAILED: " + err.Error()
	a.logger.Warn().Err(err).Str("path", result.Entry.Path).Msg("Entry failed")
	return result
}

// applyRepo copies from the working tree. The source is checked before
// anything at dst is touched.
func (a *Applier) applyRepo(entry types.Entry, rel, dst string) (types.Status, string, error) {
	src := filepath.Join(a.cfg.Worktree, paths.RepoPath(a.cfg.Layout, rel))
	if !filesystem.Exists(a.fs, src) {
		return "", "", errors.Newf(errors.ErrMissingSource, "%s is missing from the repository", paths.RepoPath(a.cfg.Layout, rel)).
			WithDetail("source", src)
	}

	same, err := filesystem.EqualWithMode(a.fs, src, dst, entry.ExecBits())
	if err != nil {
		return "", "", err
	}
	if same {
		return types.StatusUnchanged, "up to date", nil
	}

	if a.opts.DryRun {
		return types.StatusOK, "would copy from repo", nil
	}
	if err := filesystem.Copy(a.fs, src, dst); err != nil {
		return "", "", err
	}
	return types.StatusOK, "copied from repo", nil
}

// applyRaw downloads a single file from the repository host
func (a *Applier) applyRaw(ctx context.Context, entry types.Entry, rel, dst string) (types.Status, string, error) {
	base, err := a.cfg.RawBaseURL()
	if err != nil {
		return "", "", err
	}
	url := fetch.RawURL(base, a.cfg.Branch, paths.RepoPath(a.cfg.Layout, rel))

	data, err := a.fetcher.Bytes(ctx, url)
	if err != nil {
		return "", "", err
	}
	return a.writePayload(entry, dst, data, "fetched from repo")
}

// writePayload writes downloaded bytes to dst unless it already holds them
func (a *Applier) writePayload(entry types.Entry, dst string, data []byte, message string) (types.Status, string, error) {
	perm := os.FileMode(0644)
	if info, err := a.fs.Lstat(dst); err == nil {
		if info.Mode().IsRegular() {
			perm = info.Mode().Perm()
			current, err := a.fs.ReadFile(dst)
			if err == nil && bytes.Equal(current, data) && (!entry.Exec || perm&0111 == 0111) {
				return types.StatusUnchanged, "up to date", nil
			}
		}
	}

	if a.opts.DryRun {
		return types.StatusOK, "would write " + filepath.Base(dst), nil
	}
	if err := a.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent of %s", dst)
	}
	if info, err := a.fs.Lstat(dst); err == nil && !info.Mode().IsRegular() {
		if err := filesystem.Remove(a.fs, dst); err != nil {
			return "", "", err
		}
	}
	if err := a.fs.WriteFile(dst, data, perm); err != nil {
		return "", "", errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst)
	}
	return types.StatusOK, message, nil
}

// applyGit clones a separate repository into dst. An existing checkout of
// the same url is fast-forwarded instead; anything else at dst is replaced
// only once the new clone succeeded.
func (a *Applier) applyGit(ctx context.Context, entry types.Entry, dst string) (types.Status, string, error) {
	branch := entry.EffectiveBranch()
	label := fmt.Sprintf("%s@%s", entry.URL, branch)

	if a.git.IsRepository(ctx, dst) {
		if remote, err := a.git.RemoteURL(ctx, dst); err == nil && remote == entry.URL {
			if a.opts.DryRun {
				return types.StatusOK, "would pull " + label, nil
			}
			before, _ := a.git.Head(ctx, dst)
			if err := a.git.Pull(ctx, dst); err != nil {
				return "", "", err
			}
			after, _ := a.git.Head(ctx, dst)
			if before != "" && before == after {
				return types.StatusUnchanged, "up to date " + label, nil
			}
			return types.StatusOK, "pulled " + label, nil
		}
	}

	if a.opts.DryRun {
		return types.StatusOK, "would clone " + label, nil
	}

	staging, err := filesystem.TempSibling(a.fs, dst)
	if err != nil {
		return "", "", err
	}
	defer func() {
		_ = a.fs.RemoveAll(staging)
	}()

	checkout := filepath.Join(staging, "checkout")
	if err := a.git.Clone(ctx, entry.URL, checkout, git.CloneOptions{Branch: branch, Depth: 1}); err != nil {
		return "", "", err
	}
	if err := filesystem.Replace(a.fs, checkout, dst); err != nil {
		return "", "", err
	}
	return types.StatusOK, "cloned " + label, nil
}

// applyExternal downloads a file or an archive
func (a *Applier) applyExternal(ctx context.Context, entry types.Entry, dst string) (types.Status, string, error) {
	kind := entry.EffectiveType()
	message := "downloaded " + entry.URL

	if !kind.IsArchive() {
		if a.opts.DryRun {
			return types.StatusOK, "would download " + entry.URL, nil
		}
		data, err := a.fetcher.Bytes(ctx, entry.URL)
		if err != nil {
			return "", "", err
		}
		return a.writePayload(entry, dst, data, message)
	}

	if a.opts.DryRun {
		return types.StatusOK, "would download and extract " + entry.URL, nil
	}

	staging, err := filesystem.TempSibling(a.fs, dst)
	if err != nil {
		return "", "", err
	}
	defer func() {
		_ = a.fs.RemoveAll(staging)
	}()

	payload, err := a.fetcher.TempFile(ctx, entry.URL, staging)
	if err != nil {
		return "", "", err
	}
	extracted := filepath.Join(staging, "extracted")
	if err := archive.ExtractFile(ctx, payload, kind, extracted); err != nil {
		return "", "", err
	}
	root, err := archive.Root(extracted, entry.DirName)
	if err != nil {
		return "", "", err
	}
	if err := filesystem.Replace(a.fs, root, dst); err != nil {
		return "", "", err
	}
	return types.StatusOK, message, nil
}
