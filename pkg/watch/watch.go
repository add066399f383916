// Package watch runs the backup copy phase whenever a mapped home path
// changes. Bursts of events are debounced into a single run.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/types"
)

// DefaultDebounce is how long the watcher waits for activity to settle
const DefaultDebounce = 2 * time.Second

// CommandName is recorded in the summaries of watch passes
const CommandName = "watch"

// Runner performs one backup pass. *backup.Collector satisfies it.
type Runner interface {
	CollectAll(ctx context.Context) *types.Summary
	Commit(ctx context.Context) (bool, error)
}

// Options tune the watcher
type Options struct {
	Debounce time.Duration
	// Commit stages and commits after every pass that copied something
	Commit bool
	// OnRun, when set, receives the summary of every pass
	OnRun func(*types.Summary)
}

// Watcher watches home paths and triggers backup passes
type Watcher struct {
	roots  []string
	runner Runner
	opts   Options
	logger zerolog.Logger

	fsw *fsnotify.Watcher
}

// New creates a Watcher for the given absolute paths. Directories are
// watched recursively; files are watched through their parent directory so
// editors that replace files by rename are still seen.
func New(roots []string, runner Runner, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	cleaned := make([]string, 0, len(roots))
	for _, r := range roots {
		cleaned = append(cleaned, filepath.Clean(r))
	}
	return &Watcher{
		roots:  cleaned,
		runner: runner,
		opts:   opts,
		logger: logging.GetLogger("watch"),
	}
}

// Run blocks until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrWatch, "cannot create file watcher")
	}
	w.fsw = fsw
	defer func() {
		_ = fsw.Close()
	}()

	watched := 0
	for _, root := range w.roots {
		n, err := w.addRoot(root)
		if err != nil {
			return err
		}
		watched += n
	}
	if watched == 0 {
		return errors.New(errors.ErrWatch, "nothing to watch: no mapped path exists")
	}
	w.logger.Info().
		Int("paths", len(w.roots)).
		Int("directories", watched).
		Dur("debounce", w.opts.Debounce).
		Msg("Watching for changes")

	fire := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Change detected")

			if event.Has(fsnotify.Create) {
				w.watchNewDirectory(event.Name)
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.pass(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Watcher error")
		}
	}
}

func (w *Watcher) pass(ctx context.Context) {
	summary := w.runner.CollectAll(ctx)
	summary.Command = CommandName
	if w.opts.OnRun != nil {
		defer w.opts.OnRun(summary)
	}
	if !w.opts.Commit || summary.Changed() == 0 || ctx.Err() != nil {
		return
	}
	committed, err := w.runner.Commit(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("Commit failed")
		return
	}
	if committed {
		w.logger.Info().Int("changed", summary.Changed()).Msg("Committed changes")
	}
}

// addRoot registers root and returns how many directories were added
func (w *Watcher) addRoot(root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, errors.Wrapf(err, errors.ErrWatch, "cannot stat %s", root)
		}
		// watch the parent so the path is picked up once created
		parent := filepath.Dir(root)
		if _, err := os.Stat(parent); err != nil {
			w.logger.Warn().Str("path", root).Msg("Path and its parent do not exist, not watching")
			return 0, nil
		}
		return w.add(parent)
	}

	if !info.IsDir() {
		return w.add(filepath.Dir(root))
	}

	count := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		n, err := w.add(path)
		count += n
		return err
	})
	if err != nil {
		return count, errors.Wrapf(err, errors.ErrWatch, "cannot watch %s", root)
	}
	return count, nil
}

func (w *Watcher) add(dir string) (int, error) {
	if err := w.fsw.Add(dir); err != nil {
		return 0, errors.Wrapf(err, errors.ErrWatch, "cannot watch %s", dir)
	}
	return 1, nil
}

func (w *Watcher) watchNewDirectory(path string) {
	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() || !w.underRoot(path) {
		return
	}
	if _, err := w.addRoot(path); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("Cannot watch new directory")
	}
}

// relevant reports whether path is one of the roots or lies below one
func (w *Watcher) relevant(path string) bool {
	return w.underRoot(filepath.Clean(path))
}

func (w *Watcher) underRoot(path string) bool {
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
