package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/u/dotfiles/main/home/.zshrc", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dotsync", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("setopt autocd\n"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRawURL(t *testing.T) {
	assert.Equal(t,
		"https://raw.githubusercontent.com/u/dotfiles/main/home/.config/hypr/hyprland.conf",
		RawURL("https://raw.githubusercontent.com/u/dotfiles/", "main", "home/.config/hypr/hyprland.conf"))
	assert.Equal(t, "https://h/r/dev/x", RawURL("https://h/r", "dev", "/x"))
}

func TestBytes(t *testing.T) {
	srv := newServer(t)
	c := NewClient(0)

	data, err := c.Bytes(context.Background(), RawURL(srv.URL+"/u/dotfiles", "main", "home/.zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "setopt autocd\n", string(data))
}

func TestNotFound(t *testing.T) {
	srv := newServer(t)
	c := NewClient(0)
	dir := t.TempDir()

	_, err := c.Bytes(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetch))
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, 404, errors.GetErrorDetails(err)["status"])

	_, err = c.TempFile(context.Background(), srv.URL+"/missing", dir)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetch))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTempFile(t *testing.T) {
	srv := newServer(t)
	c := NewClient(0)
	dir := t.TempDir()

	path, err := c.TempFile(context.Background(), srv.URL+"/u/dotfiles/main/home/.zshrc", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "setopt autocd\n", string(content))
}

func TestCanceled(t *testing.T) {
	srv := newServer(t)
	c := NewClient(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Bytes(ctx, srv.URL+"/slow")
	assert.True(t, errors.IsErrorCode(err, errors.ErrCanceled))
}

func TestInvalidURL(t *testing.T) {
	_, err := NewClient(time.Second).Bytes(context.Background(), "://nope")
	assert.True(t, errors.IsErrorCode(err, errors.ErrFetch))
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "12B", humanSize(12))
	assert.Equal(t, "2.0KiB", humanSize(2048))
	assert.Equal(t, "1.5MiB", humanSize(3<<19))
}
