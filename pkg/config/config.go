package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// Sync modes
const (
	// ModeWorktree applies files from a local checkout of the repository
	ModeWorktree = "worktree"
	// ModeRaw downloads each file from the repository host instead
	ModeRaw = "raw"
)

// Config is the complete dotsync configuration
type Config struct {
	Repo     string        `koanf:"repo" yaml:"repo,omitempty" toml:"repo,omitempty"`
	Branch   string        `koanf:"branch" yaml:"branch" toml:"branch"`
	Worktree string        `koanf:"worktree" yaml:"worktree,omitempty" toml:"worktree,omitempty"`
	Layout   string        `koanf:"layout" yaml:"layout" toml:"layout"`
	Mode     string        `koanf:"mode" yaml:"mode,omitempty" toml:"mode,omitempty"`
	Backup   Backup        `koanf:"backup" yaml:"backup" toml:"backup"`
	Files    []types.Entry `koanf:"files" yaml:"files" toml:"files"`

	// Source is the config file that was loaded, empty when none was found
	Source string `koanf:"-" yaml:"-" toml:"-"`
}

// Backup holds the backup collector settings
type Backup struct {
	Commit  bool   `koanf:"commit" yaml:"commit" toml:"commit"`
	Push    bool   `koanf:"push" yaml:"push" toml:"push"`
	Message string `koanf:"message" yaml:"message" toml:"message"`
}

// Validate checks the configuration against the home prefix. All problems
// are reported together.
func (c *Config) Validate(p paths.Paths) error {
	var problems []string

	switch c.Mode {
	case ModeWorktree, ModeRaw:
	default:
		problems = append(problems, fmt.Sprintf("mode %q must be %q or %q", c.Mode, ModeWorktree, ModeRaw))
	}

	if c.Layout != "" {
		if err := paths.ValidatePathSecurity(c.Layout); err != nil || filepath.IsAbs(c.Layout) {
			problems = append(problems, fmt.Sprintf("layout %q must be a plain relative directory", c.Layout))
		}
	}

	if c.Backup.Push && !c.Backup.Commit {
		problems = append(problems, "backup.push requires backup.commit")
	}

	seen := make(map[string]int)
	for i, entry := range c.Files {
		label := fmt.Sprintf("files[%d]", i)
		if entry.Path == "" {
			problems = append(problems, label+": path is required")
			continue
		}
		label = fmt.Sprintf("files[%d] (%s)", i, entry.Path)

		rel, err := p.RelToHome(entry.Path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", label, err))
			continue
		}
		if rel == "." {
			problems = append(problems, label+": cannot map the home directory itself")
			continue
		}
		if prev, ok := seen[rel]; ok {
			problems = append(problems, fmt.Sprintf("%s: duplicates files[%d]", label, prev))
		}
		seen[rel] = i

		switch entry.EffectiveSource() {
		case types.SourceRepo:
		case types.SourceGit:
			if entry.URL == "" {
				problems = append(problems, label+": git entries need a url")
			}
		case types.SourceExternal:
			if entry.URL == "" {
				problems = append(problems, label+": external entries need a url")
			}
			switch t := entry.EffectiveType(); t {
			case types.PayloadDirect, types.PayloadTar, types.PayloadTarGz, types.PayloadTarXz, types.PayloadTarZst:
			default:
				problems = append(problems, fmt.Sprintf("%s: unknown type %q", label, t))
			}
			if entry.DirName != "" && !entry.EffectiveType().IsArchive() {
				problems = append(problems, label+": dir_name only applies to archives")
			}
			if entry.DirName != "" {
				if err := paths.ValidatePathSecurity(entry.DirName); err != nil {
					problems = append(problems, fmt.Sprintf("%s: dir_name: %v", label, err))
				}
			}
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown source %q", label, entry.Source))
		}
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrConfigValid, "invalid configuration:\n  "+strings.Join(problems, "\n  ")).
			WithDetail("problems", problems)
	}
	return nil
}

// RepoEntries returns the entries backed by the dotfiles repository
func (c *Config) RepoEntries() []types.Entry {
	var out []types.Entry
	for _, e := range c.Files {
		if e.EffectiveSource() == types.SourceRepo {
			out = append(out, e)
		}
	}
	return out
}

// RawBaseURL rewrites a GitHub repository URL into its raw content base,
// e.g. https://github.com/u/r(.git) becomes https://raw.githubusercontent.com/u/r
func (c *Config) RawBaseURL() (string, error) {
	url := strings.TrimSuffix(strings.TrimSuffix(c.Repo, "/"), ".git")
	if !strings.Contains(url, "github.com/") {
		return "", errors.Newf(errors.ErrConfigValid, "raw mode needs a github.com repository, got %q", c.Repo)
	}
	return strings.Replace(url, "github.com/", "raw.githubusercontent.com/", 1), nil
}
