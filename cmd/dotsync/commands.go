package dotsync

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/internal/version"
	"github.com/arthur-debert/dotsync/pkg/backup"
	"github.com/arthur-debert/dotsync/pkg/cobrax/topics"
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/datastore"
	"github.com/arthur-debert/dotsync/pkg/fetch"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/git"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/markdown"
	"github.com/arthur-debert/dotsync/pkg/paths"
	dsync "github.com/arthur-debert/dotsync/pkg/sync"
	"github.com/arthur-debert/dotsync/pkg/types"
	"github.com/arthur-debert/dotsync/pkg/ui"
)

//go:embed topics/*.md
var topicsFS embed.FS

// Git is the version control used by sync and backup
type Git interface {
	dsync.Git
	backup.Git
}

// Options replaces collaborators of the commands. Zero values select the
// real git client, HTTP fetcher and terminal.
type Options struct {
	Git     Git
	Fetcher dsync.Fetcher
	// Stdin answers the repository URL prompt. When nil the prompt is only
	// shown if standard input is a terminal.
	Stdin io.Reader
}

// app holds the global flags shared by every command
type app struct {
	opts Options

	verbosity  int
	dryRun     bool
	noColor    bool
	configFile string
	output     string
	runID      string
}

// session is what a command needs once paths and config are resolved
type session struct {
	paths  paths.Paths
	cfg    *config.Config
	fs     types.FS
	out    ui.Renderer
	logger zerolog.Logger
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithOptions(Options{})
}

// NewRootCmdWithOptions creates the root command with replaced collaborators
func NewRootCmdWithOptions(opts Options) *cobra.Command {
	initTemplateFormatting()

	a := &app{opts: opts}

	rootCmd := &cobra.Command{
		Use:     "dotsync",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			plainHelp = a.noColor
			logging.SetupLogger(a.verbosity)
			a.runID = logging.AttachRunID()
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgNoCommandGiven)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, MsgFlagNoColor)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "auto", MsgFlagOutput)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "info", Title: "INSPECT:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newSyncCmd(a))
	rootCmd.AddCommand(newBackupCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))
	rootCmd.AddCommand(newListCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newRenderCmd(a))
	rootCmd.AddCommand(newExtractCmd(a))
	rootCmd.AddCommand(newGenConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	sub, err := fs.Sub(topicsFS, "topics")
	if err == nil {
		err = topics.InitializeWithOptions(rootCmd, sub, topics.Options{
			Extensions: []string{".md"},
			Renderer:   markdown.ForTerminal(os.Getenv("NO_COLOR") != ""),
		})
	}
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// newSession resolves paths and configuration for one command. prefix
// replaces the home directory when set.
func (a *app) newSession(cmd *cobra.Command, prefix string, overrides map[string]interface{}) (*session, error) {
	p, err := paths.New(prefix)
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	cfg, err := config.Load(p, config.LoadOptions{
		File:      a.configFile,
		Dirs:      config.DefaultSearchDirs(p),
		Overrides: overrides,
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}

	out, err := a.renderer(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.GetLogger("cli")
	logger.Debug().
		Str("home", p.Home()).
		Str("config", cfg.Source).
		Str("worktree", cfg.Worktree).
		Int("entries", len(cfg.Files)).
		Msg("Session ready")

	return &session{
		paths:  p,
		cfg:    cfg,
		fs:     filesystem.NewOS(),
		out:    out,
		logger: logger,
	}, nil
}

// renderer picks the output format from --output and --no-color
func (a *app) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := ui.ParseFormat(a.output)
	if err != nil {
		return nil, fmt.Errorf(MsgErrOutput, err)
	}
	if a.noColor && (format == ui.FormatAuto || format == ui.FormatTerminal) {
		format = ui.FormatText
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

func (a *app) git() Git {
	if a.opts.Git != nil {
		return a.opts.Git
	}
	return git.NewClient()
}

func (a *app) fetcher() dsync.Fetcher {
	if a.opts.Fetcher != nil {
		return a.opts.Fetcher
	}
	return fetch.NewClient(fetch.DefaultTimeout)
}

// prompt returns the repository URL prompt, or nil when nobody can answer
func (a *app) prompt(cmd *cobra.Command) backup.PromptFunc {
	in := a.opts.Stdin
	if in == nil {
		fd := os.Stdin.Fd()
		if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
			return nil
		}
		in = os.Stdin
	}
	return backup.LinePrompt(in, cmd.ErrOrStderr())
}

// record stores a finished run in the journal. A journal that cannot be
// opened, usually because another dotsync holds its lock, only warns.
func (a *app) record(s *session, summary *types.Summary) {
	if summary == nil {
		return
	}
	summary.RunID = a.runID

	journal, err := datastore.Open(s.paths.JournalPath())
	if err != nil {
		s.logger.Warn().Err(err).Msg(MsgJournalWarning)
		return
	}
	defer func() { _ = journal.Close() }()

	if err := journal.RecordRun(*summary); err != nil {
		s.logger.Warn().Err(err).Msg(MsgJournalWarning)
	}
}

// checkStrict turns per-entry failures into a command error under --strict
func checkStrict(strict bool, summary *types.Summary) error {
	if !strict || summary == nil || summary.Failed() == 0 {
		return nil
	}
	return fmt.Errorf(MsgStrictFailures, summary.Failed(), summary.Total())
}
