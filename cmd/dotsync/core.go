package dotsync

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/config"
	dsync "github.com/arthur-debert/dotsync/pkg/sync"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/watch"
)

func newSyncCmd(a *app) *cobra.Command {
	var (
		prefix string
		raw    bool
		noPull bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Example: MsgSyncExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			if raw {
				overrides["mode"] = config.ModeRaw
			}

			s, err := a.newSession(cmd, prefix, overrides)
			if err != nil {
				return err
			}

			s.logger.Info().
				Str("home", s.paths.Home()).
				Str("mode", s.cfg.Mode).
				Bool("dry_run", a.dryRun).
				Msg("Syncing dotfiles")

			applier := dsync.New(s.cfg, s.paths, s.fs, a.git(), a.fetcher(), dsync.Options{
				DryRun:   a.dryRun,
				NoPull:   noPull,
				Progress: s.out.Progress,
			})
			summary, err := applier.Run(cmd.Context())
			if err == nil || summary.Total() > 0 {
				a.record(s, summary)
			}
			if err != nil {
				return fmt.Errorf(MsgErrSync, err)
			}

			if err := s.out.Summary(summary); err != nil {
				return err
			}
			return checkStrict(strict, summary)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", MsgFlagPrefix)
	cmd.Flags().BoolVar(&raw, "raw", false, MsgFlagRaw)
	cmd.Flags().BoolVar(&noPull, "no-pull", false, MsgFlagNoPull)
	cmd.Flags().BoolVar(&strict, "strict", false, MsgFlagStrict)

	return cmd
}

func newBackupCmd(a *app) *cobra.Command {
	var (
		repo    string
		prefix  string
		fresh   bool
		commit  bool
		push    bool
		message string
		strict  bool
	)

	cmd := &cobra.Command{
		Use:     "backup",
		Short:   MsgBackupShort,
		Long:    MsgBackupLong,
		Example: MsgBackupExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			if commit || push {
				overrides["backup.commit"] = true
			}
			if push {
				overrides["backup.push"] = true
			}
			if cmd.Flags().Changed("message") {
				overrides["backup.message"] = message
			}

			s, err := a.newSession(cmd, prefix, overrides)
			if err != nil {
				return err
			}

			collector := backup.New(s.cfg, s.paths, s.fs, a.git(), backup.Options{
				RepoURL:  repo,
				Fresh:    fresh,
				DryRun:   a.dryRun,
				Prompt:   a.prompt(cmd),
				Progress: s.out.Progress,
			})
			report, err := collector.Run(cmd.Context())
			a.record(s, report.Summary)
			if err != nil {
				return fmt.Errorf(MsgErrBackup, err)
			}

			if err := s.out.BackupReport(report); err != nil {
				return err
			}
			return checkStrict(strict, report.Summary)
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", MsgFlagRepo)
	cmd.Flags().StringVar(&prefix, "prefix", "", MsgFlagPrefix)
	cmd.Flags().BoolVar(&fresh, "fresh", false, MsgFlagFresh)
	cmd.Flags().BoolVar(&commit, "commit", false, MsgFlagCommit)
	cmd.Flags().BoolVar(&push, "push", false, MsgFlagPush)
	cmd.Flags().StringVarP(&message, "message", "m", "", MsgFlagMessage)
	cmd.Flags().BoolVar(&strict, "strict", false, MsgFlagStrict)

	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		repo     string
		prefix   string
		debounce time.Duration
		commit   bool
	)

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   MsgWatchShort,
		Long:    MsgWatchLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]interface{}{}
			if commit {
				overrides["backup.commit"] = true
			}

			s, err := a.newSession(cmd, prefix, overrides)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			collector := backup.New(s.cfg, s.paths, s.fs, a.git(), backup.Options{
				RepoURL:  repo,
				DryRun:   a.dryRun,
				Prompt:   a.prompt(cmd),
				Progress: s.out.Progress,
			})

			if !a.dryRun {
				url, _, err := collector.ResolveRepoURL()
				if err != nil {
					return fmt.Errorf(MsgErrWatch, err)
				}
				if err := collector.PrepareWorktree(ctx, url, &backup.Report{Worktree: s.cfg.Worktree}); err != nil {
					return fmt.Errorf(MsgErrWatch, err)
				}
			}

			entries := s.cfg.RepoEntries()
			roots := make([]string, 0, len(entries))
			for _, e := range entries {
				roots = append(roots, s.paths.HomePath(e.Path))
			}

			w := watch.New(roots, collector, watch.Options{
				Debounce: debounce,
				Commit:   s.cfg.Backup.Commit && !a.dryRun,
				OnRun: func(summary *types.Summary) {
					a.record(s, summary)
					if err := s.out.Summary(summary); err != nil {
						s.logger.Warn().Err(err).Msg("Failed to render summary")
					}
				},
			})

			_ = s.out.RenderMessage("Info", fmt.Sprintf(MsgWatching, len(roots)))
			if err := w.Run(ctx); err != nil {
				return fmt.Errorf(MsgErrWatch, err)
			}
			return s.out.RenderMessage("Muted", MsgWatchStopped)
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", MsgFlagRepo)
	cmd.Flags().StringVar(&prefix, "prefix", "", MsgFlagPrefix)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, MsgFlagDebounce)
	cmd.Flags().BoolVar(&commit, "commit", false, MsgFlagCommit)

	return cmd
}
