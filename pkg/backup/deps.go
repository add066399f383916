package backup

import (
	"context"

	"github.com/arthur-debert/dotsync/pkg/git"
)

// Git is the version control the collector needs
type Git interface {
	Clone(ctx context.Context, url, dir string, opts git.CloneOptions) error
	Pull(ctx context.Context, dir string) error
	Init(ctx context.Context, dir, branch string) error
	AddRemote(ctx context.Context, dir, url string) error
	IsRepository(ctx context.Context, dir string) bool
	RemoteURL(ctx context.Context, dir string) (string, error)
	AddAll(ctx context.Context, dir string) error
	Commit(ctx context.Context, dir, message string) (bool, error)
	Push(ctx context.Context, dir string) error
}
