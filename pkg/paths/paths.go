package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotsync/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for dotsync
	EnvConfigDir = "DOTSYNC_CONFIG_DIR"

	// EnvDataDir overrides the XDG data directory for dotsync
	EnvDataDir = "DOTSYNC_DATA_DIR"

	// EnvStateDir overrides the XDG state directory for dotsync
	EnvStateDir = "DOTSYNC_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names inside the dotsync directories. These are not user-configurable.
const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "dotsync"

	// RepoFileName holds the last repository URL used by backup
	RepoFileName = ".repo"

	// WorktreeDirName is the default working tree directory under the data dir
	WorktreeDirName = "repo"

	// JournalFileName is the bbolt run journal under the state dir
	JournalFileName = "journal.db"

	// LogFileName is the name of the log file
	LogFileName = "dotsync.log"

	// DefaultLayout is the repository subdirectory holding home-relative copies
	DefaultLayout = "home"
)

// Paths provides the locations dotsync reads and writes
type Paths interface {
	Home() string
	ConfigDir() string
	DataDir() string
	StateDir() string
	RepoFilePath() string
	DefaultWorktree() string
	JournalPath() string
	LogFilePath() string
	HomePath(path string) string
	RelToHome(path string) (string, error)
}

type paths struct {
	home      string
	configDir string
	dataDir   string
	stateDir  string
}

// New creates a Paths instance. An empty home uses the user's home
// directory; otherwise home acts as the prefix every mapped path lives under.
func New(home string) (Paths, error) {
	p := &paths{}

	if home == "" {
		h, err := GetHomeDirectory()
		if err != nil {
			return nil, err
		}
		home = h
	}

	abs, err := filepath.Abs(ExpandHome(home))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for home %s", home)
	}
	p.home = filepath.Clean(abs)

	p.setupXDGDirs()
	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	// adrg/xdg caches the environment at init; tests change it per case.
	xdg.Reload()

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = ExpandHome(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		p.dataDir = ExpandHome(dir)
	} else {
		p.dataDir = filepath.Join(xdg.DataHome, AppDirName)
	}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = ExpandHome(dir)
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}
}

// Home returns the directory mapped paths are resolved against
func (p *paths) Home() string {
	return p.home
}

// ConfigDir returns the XDG config directory for dotsync
func (p *paths) ConfigDir() string {
	return p.configDir
}

// DataDir returns the XDG data directory for dotsync
func (p *paths) DataDir() string {
	return p.dataDir
}

// StateDir returns the XDG state directory for dotsync
func (p *paths) StateDir() string {
	return p.stateDir
}

// RepoFilePath returns the file holding the saved repository URL
func (p *paths) RepoFilePath() string {
	return filepath.Join(p.configDir, RepoFileName)
}

// DefaultWorktree returns the working tree location used when the config names none
func (p *paths) DefaultWorktree() string {
	return filepath.Join(p.dataDir, WorktreeDirName)
}

// JournalPath returns the path of the run journal database
func (p *paths) JournalPath() string {
	return filepath.Join(p.stateDir, JournalFileName)
}

// LogFilePath returns the path to the dotsync log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// HomePath resolves a mapping path against the home prefix. A leading ~ and
// the real home directory are both replaced by the prefix; relative paths
// are taken relative to it.
func (p *paths) HomePath(path string) string {
	rel, err := p.RelToHome(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Join(p.home, rel)
}

// RelToHome returns path relative to the home prefix. Paths that resolve
// outside the prefix yield an ErrOutsideHome error.
func (p *paths) RelToHome(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	var rel string
	switch {
	case path == "~":
		rel = "."
	case strings.HasPrefix(path, "~/"):
		rel = path[2:]
	case filepath.IsAbs(path):
		base := p.home
		if realHome, err := GetHomeDirectory(); err == nil && ContainsPath(realHome, path) && !ContainsPath(p.home, path) {
			base = realHome
		}
		r, err := filepath.Rel(base, filepath.Clean(path))
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrOutsideHome, "%s is not under %s", path, base)
		}
		rel = r
	default:
		rel = path
	}

	rel = filepath.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrOutsideHome, "%s resolves outside the home directory", path)
	}
	return rel, nil
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := GetHomeDirectory()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}

// RepoPath returns the repository-relative location of a home-relative path
// under the given layout directory.
func RepoPath(layout, rel string) string {
	if layout == "" {
		return filepath.Clean(rel)
	}
	return filepath.Join(layout, rel)
}
