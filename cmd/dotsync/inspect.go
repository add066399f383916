package dotsync

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/pkg/datastore"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/status"
	"github.com/arthur-debert/dotsync/pkg/types"
)

func newStatusCmd(a *app) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		GroupID: "info",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd, prefix, nil)
			if err != nil {
				return err
			}
			if len(s.cfg.Files) == 0 {
				return s.out.RenderMessage("Muted", MsgNoEntries)
			}

			statuses := status.NewSourceChecker(s.cfg, s.paths, s.fs).CheckAll(s.cfg.Files)
			s.logger.Debug().Interface("counts", status.Count(statuses)).Msg("Status computed")
			return s.out.StatusTable(statuses)
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", MsgFlagPrefix)

	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		Long:    MsgListLong,
		GroupID: "info",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.newSession(cmd, "", nil)
			if err != nil {
				return err
			}
			if len(s.cfg.Files) == 0 {
				return s.out.RenderMessage("Muted", MsgNoEntries)
			}

			return s.out.EntryList(s.cfg.Files, func(e types.Entry) string {
				rel, err := s.paths.RelToHome(e.Path)
				if err != nil {
					return ""
				}
				return paths.RepoPath(s.cfg.Layout, rel)
			})
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "history",
		Short:   MsgHistoryShort,
		Long:    MsgHistoryLong,
		GroupID: "info",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := paths.New("")
			if err != nil {
				return fmt.Errorf(MsgErrInitPaths, err)
			}
			out, err := a.renderer(cmd)
			if err != nil {
				return err
			}

			journal, err := datastore.Open(p.JournalPath())
			if err != nil {
				return fmt.Errorf(MsgErrHistory, err)
			}
			defer func() { _ = journal.Close() }()

			runs, err := journal.RecentRuns(limit)
			if err != nil {
				return fmt.Errorf(MsgErrHistory, err)
			}
			return out.RunHistory(runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, MsgFlagLimit)

	return cmd
}
