package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/git"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// CommandName is recorded in summaries and the journal
const CommandName = "backup"

// Options tune a backup run. Commit, push and the commit message come from
// the backup section of the configuration.
type Options struct {
	// RepoURL overrides every other repository source
	RepoURL string
	// Fresh discards the working tree and clones again
	Fresh bool
	// DryRun reports what would be copied without touching anything
	DryRun bool
	// Prompt asks for a URL when none is known
	Prompt PromptFunc
	// Progress, when set, is called after every entry
	Progress types.ProgressFunc
}

// Report describes a complete backup run
type Report struct {
	Summary      *types.Summary `json:"summary"`
	RepoURL      string         `json:"repo_url"`
	URLSource    URLSource      `json:"url_source"`
	SavedURL     bool           `json:"saved_url"`
	Worktree     string         `json:"worktree"`
	Cloned       bool           `json:"cloned"`
	InitFallback bool           `json:"init_fallback"`
	Committed    bool           `json:"committed"`
	Pushed       bool           `json:"pushed"`
}

// Collector copies home entries back into the working tree
type Collector struct {
	cfg    *config.Config
	paths  paths.Paths
	fs     types.FS
	git    Git
	opts   Options
	logger zerolog.Logger
}

// New creates a Collector
func New(cfg *config.Config, p paths.Paths, fsys types.FS, g Git, opts Options) *Collector {
	return &Collector{
		cfg:    cfg,
		paths:  p,
		fs:     fsys,
		git:    g,
		opts:   opts,
		logger: logging.GetLogger("backup"),
	}
}

// Run resolves the repository, prepares the working tree, collects every
// entry and commits when configured to.
func (c *Collector) Run(ctx context.Context) (*Report, error) {
	report := &Report{Worktree: c.cfg.Worktree}

	url, source, err := c.ResolveRepoURL()
	if err != nil {
		return report, err
	}
	report.RepoURL = url
	report.URLSource = source
	c.logger.Info().Str("url", url).Str("from", string(source)).Msg("Using repo URL")

	if c.opts.DryRun {
		report.Summary = c.CollectAll(ctx)
		return report, nil
	}

	if err := c.PrepareWorktree(ctx, url, report); err != nil {
		return report, err
	}
	if report.SavedURL, err = c.SaveRepoURL(url); err != nil {
		c.logger.Warn().Err(err).Msg("Could not save repo URL")
	}

	report.Summary = c.CollectAll(ctx)
	if err := ctx.Err(); err != nil {
		return report, errors.Wrap(err, errors.ErrCanceled, "backup interrupted")
	}

	if c.cfg.Backup.Commit {
		committed, err := c.Commit(ctx)
		report.Committed = committed
		if err != nil {
			return report, err
		}
		if c.cfg.Backup.Push {
			if err := c.Push(ctx); err != nil {
				return report, err
			}
			report.Pushed = true
		}
	}

	return report, nil
}

// PrepareWorktree makes the working tree a checkout of url. An existing
// checkout is reused and fast-forwarded; a missing one is cloned, falling
// back to git init plus an origin remote when the clone fails.
func (c *Collector) PrepareWorktree(ctx context.Context, url string, report *Report) error {
	worktree := c.cfg.Worktree

	if c.opts.Fresh && filesystem.Exists(c.fs, worktree) {
		c.logger.Info().Str("worktree", worktree).Msg("Clearing previous contents")
		if err := filesystem.Remove(c.fs, worktree); err != nil {
			return err
		}
	}

	if c.git.IsRepository(ctx, worktree) {
		if remote, err := c.git.RemoteURL(ctx, worktree); err != nil || remote != url {
			if err := c.git.AddRemote(ctx, worktree, url); err != nil {
				return err
			}
		}
		if err := c.git.Pull(ctx, worktree); err != nil {
			if git.IsConflict(err) {
				return err
			}
			// a fresh init has nothing upstream yet
			c.logger.Warn().Err(err).Msg("Could not update working tree, using it as is")
		}
		return nil
	}

	if filesystem.Exists(c.fs, worktree) {
		entries, err := c.fs.ReadDir(worktree)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", worktree)
		}
		if len(entries) > 0 {
			return errors.Newf(errors.ErrGitClone, "%s exists and is not a git repository (use --fresh to replace it)", worktree)
		}
	}
	if err := c.fs.MkdirAll(filepath.Dir(worktree), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(worktree))
	}

	c.logger.Info().Str("url", url).Str("worktree", worktree).Msg("Cloning repo")
	cloneErr := c.git.Clone(ctx, url, worktree, git.CloneOptions{Branch: c.cfg.Branch})
	if cloneErr == nil {
		report.Cloned = true
		return nil
	}
	if ctx.Err() != nil {
		return cloneErr
	}

	c.logger.Warn().Err(cloneErr).Msg("Clone failed. Falling back to git init")
	_ = filesystem.Remove(c.fs, worktree)
	if err := c.git.Init(ctx, worktree, c.cfg.Branch); err != nil {
		return errors.Wrapf(err, errors.ErrGitInit, "clone failed (%v) and init failed", cloneErr)
	}
	if err := c.git.AddRemote(ctx, worktree, url); err != nil {
		return err
	}
	report.InitFallback = true
	return nil
}

// CollectAll copies every entry and returns the summary
func (c *Collector) CollectAll(ctx context.Context) *types.Summary {
	summary := &types.Summary{
		Command: CommandName,
		Started: time.Now(),
		DryRun:  c.opts.DryRun,
	}

	total := len(c.cfg.Files)
	for i, entry := range c.cfg.Files {
		if ctx.Err() != nil {
			break
		}
		result := c.Collect(entry)
		summary.Add(result)
		if c.opts.Progress != nil {
			c.opts.Progress(i, total, result)
		}
	}

	summary.Duration = time.Since(summary.Started)
	c.logger.Info().
		Int("copied", summary.Changed()).
		Int("skipped", summary.Skipped()).
		Int("failed", summary.Failed()).
		Msg("Collection finished")
	return summary
}

// Collect copies one entry from the home directory into the working tree.
// Only repository entries are collected; a missing home path is skipped.
// A home path that is itself a symlink is followed.
func (c *Collector) Collect(entry types.Entry) types.Result {
	result := types.Result{Entry: entry}

	if entry.EffectiveSource() != types.SourceRepo {
		result.Status = types.StatusSkipped
		result.Message = fmt.Sprintf("%s entries are not backed up", entry.EffectiveSource())
		return result
	}

	rel, err := c.paths.RelToHome(entry.Path)
	if err != nil {
		return c.failed(result, err)
	}
	src := filepath.Join(c.paths.Home(), rel)
	dst := filepath.Join(c.cfg.Worktree, paths.RepoPath(c.cfg.Layout, rel))
	result.Target = dst

	if !filesystem.Exists(c.fs, src) {
		result.Status = types.StatusSkipped
		result.Message = fmt.Sprintf("%s does not exist, skipping", src)
		return result
	}

	// a linked home file, as left by stow, is stored as its content
	same, err := filesystem.EqualFollow(c.fs, src, dst)
	if err != nil {
		return c.failed(result, err)
	}
	if same {
		result.Status = types.StatusUnchanged
		result.Message = "up to date"
		return result
	}

	if c.opts.DryRun {
		result.Status = types.StatusOK
		result.Message = "would copy to " + paths.RepoPath(c.cfg.Layout, rel)
		return result
	}

	if err := filesystem.CopyFollow(c.fs, src, dst); err != nil {
		return c.failed(result, err)
	}
	result.Status = types.StatusOK
	result.Message = "copied to " + paths.RepoPath(c.cfg.Layout, rel)
	c.logger.Debug().Str("src", src).Str("dst", dst).Msg("Copied")
	return result
}

func (c *Collector) failed(result types.Result, err error) types.Result {
	result.Status = types.StatusFailed
	result.Err = err
	result.Message = "FAILED: " + err.Error()
	c.logger.Warn().Err(err).Str("path", result.Entry.Path).Msg("Failed to copy")
	return result
}

// Commit stages everything and commits with the configured message. It
// reports false when there was nothing to commit.
func (c *Collector) Commit(ctx context.Context) (bool, error) {
	worktree := c.cfg.Worktree
	if err := c.git.AddAll(ctx, worktree); err != nil {
		return false, err
	}
	committed, err := c.git.Commit(ctx, worktree, c.commitMessage())
	if err != nil {
		return false, err
	}
	if !committed {
		c.logger.Info().Msg("Nothing to commit")
	}
	return committed, nil
}

// Push sends the working tree's branch to origin
func (c *Collector) Push(ctx context.Context) error {
	return c.git.Push(ctx, c.cfg.Worktree)
}

func (c *Collector) commitMessage() string {
	if c.cfg.Backup.Message != "" {
		return c.cfg.Backup.Message
	}
	return "update dotfiles"
}
