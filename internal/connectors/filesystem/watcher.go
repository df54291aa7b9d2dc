package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.FileWatcher = (*Watcher)(nil)

// DefaultDebounce is how long a path must stay quiet before its change is
// reported.
const DefaultDebounce = 300 * time.Millisecond

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reports debounced changes to supported files.
type Watcher struct {
	supports func(string) bool
	debounce time.Duration

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for the files l would load.
func NewWatcher(l *Loader, opts ...WatcherOption) *Watcher {
	if l == nil {
		l = NewLoader()
	}
	w := &Watcher{
		supports: l.Supports,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch starts watching paths. Directories are watched recursively,
// including directories created later. A file path watches only that file.
func (w *Watcher) Watch(ctx context.Context, paths ...string) (<-chan domain.FileChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrWatcherClosed
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths to watch", domain.ErrInvalidInput)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	var (
		files = make(map[string]bool)
		trees []string
	)
	for _, p := range paths {
		root, err := ResolvePath(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
		if !info.IsDir() {
			files[root] = true
			err = fw.Add(filepath.Dir(root))
		} else {
			trees = append(trees, root)
			err = addTree(fw, root)
		}
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", root, err)
		}
	}

	accept := func(path string) bool {
		return (files[path] || underAny(trees, path)) && w.supports(path)
	}

	w.watchers = append(w.watchers, fw)
	out := make(chan domain.FileChange, 64)
	go w.run(ctx, fw, accept, out)
	return out, nil
}

// Close stops every active watch. Channels returned by Watch are closed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for _, fw := range w.watchers {
		if err := fw.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.watchers = nil
	return errors.Join(errs...)
}

// underAny reports whether path lies below one of roots.
func underAny(roots []string, path string) bool {
	for _, root := range roots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

type pendingChange struct {
	typ domain.ChangeType
	due time.Time
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher, accept func(string) bool, out chan<- domain.FileChange) {
	defer close(out)
	defer fw.Close()

	pending := make(map[string]pendingChange)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(info.Name()) {
					if err := addTree(fw, event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
					// Files written before the directory was watched.
					for _, path := range filesUnder(event.Name) {
						if accept(path) {
							pending[path] = pendingChange{typ: domain.ChangeCreated, due: time.Now().Add(w.debounce)}
							timer.Reset(w.debounce)
						}
					}
					continue
				}
			}
			if !accept(event.Name) {
				continue
			}
			typ, ok := changeType(event)
			if !ok {
				continue
			}
			pending[event.Name] = pendingChange{
				typ: mergeChange(pending, event.Name, typ),
				due: time.Now().Add(w.debounce),
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher: %v", err)

		case <-timer.C:
			now := time.Now()
			var next time.Time
			for path, p := range pending {
				if p.due.After(now) {
					if next.IsZero() || p.due.Before(next) {
						next = p.due
					}
					continue
				}
				delete(pending, path)
				logger.Debug("file %s: %s", p.typ, path)
				select {
				case out <- domain.FileChange{Type: p.typ, Path: path}:
				case <-ctx.Done():
					return
				}
			}
			if !next.IsZero() {
				timer.Reset(time.Until(next))
			}
		}
	}
}

// changeType maps an fsnotify operation to a change. Renames are reported
// as deletions of the old name; the new name arrives as a create.
func changeType(event fsnotify.Event) (domain.ChangeType, bool) {
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return domain.ChangeDeleted, true
	case event.Has(fsnotify.Create):
		return domain.ChangeCreated, true
	case event.Has(fsnotify.Write):
		return domain.ChangeUpdated, true
	default:
		return 0, false
	}
}

// mergeChange folds a new event into the change already pending for path.
func mergeChange(pending map[string]pendingChange, path string, next domain.ChangeType) domain.ChangeType {
	prev, ok := pending[path]
	if !ok {
		return next
	}
	switch {
	case next == domain.ChangeDeleted:
		return domain.ChangeDeleted
	case prev.typ == domain.ChangeCreated:
		return domain.ChangeCreated
	case prev.typ == domain.ChangeDeleted:
		// Deleted and recreated within the window: the content changed.
		return domain.ChangeUpdated
	default:
		return next
	}
}

// addTree watches root and every non-hidden directory below it.
func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func filesUnder(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	return files
}
