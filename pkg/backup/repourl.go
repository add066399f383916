package backup

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

// DefaultRepoURL is offered when nothing else names a repository
const DefaultRepoURL = "https://github.com/sounddrill31/dotfiles"

// URLSource tells where the repository URL came from
type URLSource string

const (
	URLFromFlag   URLSource = "flag"
	URLFromSaved  URLSource = "saved"
	URLFromConfig URLSource = "config"
	URLFromPrompt URLSource = "prompt"
)

// ResolveRepoURL picks the repository URL: the --repo flag, then the saved
// .repo file, then the config file, then the prompt.
func (c *Collector) ResolveRepoURL() (string, URLSource, error) {
	if url := strings.TrimSpace(c.opts.RepoURL); url != "" {
		return url, URLFromFlag, nil
	}

	if saved, err := c.SavedRepoURL(); err != nil {
		return "", "", err
	} else if saved != "" {
		return saved, URLFromSaved, nil
	}

	if url := strings.TrimSpace(c.cfg.Repo); url != "" {
		return url, URLFromConfig, nil
	}

	if c.opts.Prompt == nil {
		return DefaultRepoURL, URLFromPrompt, nil
	}
	url, err := c.opts.Prompt(DefaultRepoURL)
	if err != nil {
		return "", "", errors.Wrap(err, errors.ErrInvalidInput, "failed to read repository URL")
	}
	if url = strings.TrimSpace(url); url == "" {
		url = DefaultRepoURL
	}
	return url, URLFromPrompt, nil
}

// SavedRepoURL returns the content of the .repo file, or "" when absent
func (c *Collector) SavedRepoURL() (string, error) {
	data, err := c.fs.ReadFile(c.paths.RepoFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", c.paths.RepoFilePath())
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveRepoURL writes url to the .repo file unless it already holds it.
// It reports whether the file was written.
func (c *Collector) SaveRepoURL(url string) (bool, error) {
	saved, err := c.SavedRepoURL()
	if err != nil {
		return false, err
	}
	if saved == url {
		return false, nil
	}

	path := c.paths.RepoFilePath()
	if err := c.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}
	if err := c.fs.WriteFile(path, []byte(url), 0644); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileWrite, "failed to save repository URL to %s", path)
	}
	c.logger.Info().Str("path", path).Str("url", url).Msg("Saved repo URL")
	return true, nil
}
