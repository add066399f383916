package dotsync

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Keep dotfiles in sync with a git repository"
	MsgSyncShort       = "Copy the repository onto your home directory"
	MsgBackupShort     = "Copy your home directory into the repository"
	MsgStatusShort     = "Compare home and repository copies"
	MsgListShort       = "List configured entries"
	MsgListLong        = "List shows every entry in the config with where it comes from."
	MsgHistoryShort    = "Show recent runs"
	MsgHistoryLong     = "History lists the most recent sync, backup and watch runs, newest first."
	MsgWatchShort      = "Back up automatically when files change"
	MsgRenderShort     = "Render a markdown file in the terminal"
	MsgExtractShort    = "Extract a tar archive into a directory"
	MsgGenConfigShort  = "Print a starter configuration"
	MsgGenConfigLong   = "Print a commented starter configuration, or write it to the dotsync config directory with -w."
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgWatching         = "Watching %d paths, press Ctrl-C to stop"
	MsgWatchStopped     = "Stopped watching."
	MsgConfigWritten    = "Wrote %s"
	MsgNoEntries        = "No entries configured."
	MsgVersionFormat    = "dotsync %s (commit %s, built %s)\n"
	MsgJournalWarning   = "Could not record run"
	MsgStrictFailures   = "%d of %d entries failed"
	MsgNoCommandGiven   = "no command specified"
	MsgUnknownPayload   = "cannot tell the archive type of %s, use --type"
	MsgConfigFileExists = "%s already exists"
)

// Flag descriptions
const (
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun   = "Show what would change without writing anything"
	MsgFlagNoColor  = "Disable colored output"
	MsgFlagConfig   = "Config file to use instead of searching for one"
	MsgFlagOutput   = "Output format: auto, term, text or json"
	MsgFlagPrefix   = "Treat this directory as the home directory"
	MsgFlagRaw      = "Download files from the repository host instead of cloning"
	MsgFlagNoPull   = "Use the working tree as it is, without pulling"
	MsgFlagStrict   = "Exit with an error when any entry fails"
	MsgFlagRepo     = "Repository URL to back up to"
	MsgFlagFresh    = "Discard the working tree and clone again"
	MsgFlagCommit   = "Commit the working tree after copying"
	MsgFlagPush     = "Push after committing (implies --commit)"
	MsgFlagMessage  = "Commit message"
	MsgFlagLimit    = "Number of runs to show"
	MsgFlagDebounce = "Quiet period before a backup pass runs"
	MsgFlagFormat   = "Config format: yaml or toml"
	MsgFlagWrite    = "Write the config file instead of printing it"
	MsgFlagType     = "Archive type: tar, tar.gz, tar.xz or tar.zst"
)

// Error messages
const (
	MsgErrInitPaths   = "failed to initialize paths: %w"
	MsgErrLoadConfig  = "failed to load configuration: %w"
	MsgErrOutput      = "invalid output format: %w"
	MsgErrSync        = "sync failed: %w"
	MsgErrBackup      = "backup failed: %w"
	MsgErrWatch       = "watch failed: %w"
	MsgErrHistory     = "failed to read history: %w"
	MsgErrRender      = "failed to render %s: %w"
	MsgErrExtract     = "failed to extract %s: %w"
	MsgErrGenConfig   = "failed to generate config: %w"
	MsgErrWriteConfig = "failed to write config: %w"
)

// Long messages and examples loaded from files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/sync-example.txt
	msgSyncExampleRaw string
	MsgSyncExample    = strings.TrimRight(msgSyncExampleRaw, "\n")

	//go:embed msgs/backup-long.txt
	msgBackupLongRaw string
	MsgBackupLong    = strings.TrimSpace(msgBackupLongRaw)

	//go:embed msgs/backup-example.txt
	msgBackupExampleRaw string
	MsgBackupExample    = strings.TrimRight(msgBackupExampleRaw, "\n")

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/watch-long.txt
	msgWatchLongRaw string
	MsgWatchLong    = strings.TrimSpace(msgWatchLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
