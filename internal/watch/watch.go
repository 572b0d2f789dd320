// Package watch re-runs an action whenever a snapshot file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultDebounce groups the burst of events an editor produces for one save.
const DefaultDebounce = 200 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   hclog.Logger
}

// Watcher calls a function after the watched file settles following a change.
//
// The parent directory is watched rather than the file itself, so a save that
// replaces the file by rename is still seen.
type Watcher struct {
	path    string
	dir     string
	name    string
	options Options

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for path.
func New(path string, options Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if options.Debounce <= 0 {
		options.Debounce = DefaultDebounce
	}
	if options.Logger == nil {
		options.Logger = hclog.NewNullLogger()
	}
	return &Watcher{
		path:    abs,
		dir:     filepath.Dir(abs),
		name:    filepath.Base(abs),
		options: options,
	}, nil
}

// Run blocks until ctx is done, calling onChange once per settled burst of
// changes. Calls to onChange never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.options.Logger.Info("watching snapshot", "path", w.path)

	fire := make(chan struct{}, 1)
	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.options.Logger.Debug("snapshot event", "op", event.Op.String(), "file", event.Name)
			w.schedule(fire)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.options.Logger.Error("file watcher error", "error", err)

		case <-fire:
			onChange(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.name {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// schedule restarts the debounce timer. When it expires a token is placed on
// fire unless one is already waiting.
func (w *Watcher) schedule(fire chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.options.Debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
