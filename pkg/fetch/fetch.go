// Package fetch downloads mapping payloads over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
)

// DefaultTimeout bounds a single download
const DefaultTimeout = 30 * time.Second

// MaxDirectSize caps payloads that are read fully into memory
const MaxDirectSize = 64 << 20

// Client downloads files
type Client struct {
	HTTP      *http.Client
	UserAgent string
	logger    zerolog.Logger
}

// NewClient returns a client with the given per-request timeout
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: "dotsync",
		logger:    logging.GetLogger("fetch"),
	}
}

// RawURL builds the raw content URL of a repository file
func RawURL(base, branch, repoPath string) string {
	return strings.TrimSuffix(base, "/") + "/" + path.Join(branch, strings.TrimPrefix(repoPath, "/"))
}

// Open issues a GET and returns the body of a 2xx response
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFetch, "invalid url %s", url)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	c.logger.Debug().Str("url", url).Msg("Downloading")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.ErrCanceled, "download canceled")
		}
		return nil, errors.Wrapf(err, errors.ErrFetch, "failed to download %s", url).WithDetail("url", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, errors.Newf(errors.ErrFetch, "%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), url).
			WithDetail("url", url).
			WithDetail("status", resp.StatusCode)
	}
	return resp.Body, nil
}

// Bytes downloads url into memory
func (c *Client) Bytes(ctx context.Context, url string) ([]byte, error) {
	body, err := c.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(body, MaxDirectSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFetch, "failed to read %s", url)
	}
	if len(data) > MaxDirectSize {
		return nil, errors.Newf(errors.ErrFetch, "%s is larger than %d bytes", url, MaxDirectSize)
	}
	return data, nil
}

// TempFile streams url into a new temporary file in dir and returns its
// path. The caller removes it.
func (c *Client) TempFile(ctx context.Context, url, dir string) (string, error) {
	body, err := c.Open(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = body.Close()
	}()

	f, err := os.CreateTemp(dir, ".dotsync-download-*")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to create temporary file in %s", dir)
	}
	n, err := io.Copy(f, body)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", errors.Wrapf(err, errors.ErrFetch, "failed to download %s", url)
	}

	c.logger.Debug().Str("url", url).Str("size", humanSize(n)).Msg("Downloaded")
	return f.Name(), nil
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}
