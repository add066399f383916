package sync

import (
	"context"

	"github.com/arthur-debert/dotsync/pkg/git"
)

// Git is the version control the applier needs
type Git interface {
	Clone(ctx context.Context, url, dir string, opts git.CloneOptions) error
	Pull(ctx context.Context, dir string) error
	IsRepository(ctx context.Context, dir string) bool
	RemoteURL(ctx context.Context, dir string) (string, error)
	Head(ctx context.Context, dir string) (string, error)
}

// Fetcher downloads payloads
type Fetcher interface {
	Bytes(ctx context.Context, url string) ([]byte, error)
	TempFile(ctx context.Context, url, dir string) (string, error)
}
