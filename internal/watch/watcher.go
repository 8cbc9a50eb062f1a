package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a folder must stay quiet before its new files
// are handed over
const DefaultDebounce = 500 * time.Millisecond

// FilesCallback receives a debounced set of new or rewritten files
type FilesCallback func(files []string)

// Watcher hands files appearing in a folder to a callback in batches
type Watcher struct {
	watcher   *fsnotify.Watcher
	callback  FilesCallback
	operation string
	ignore    string
	debounce  time.Duration
	logger    *slog.Logger

	pending map[string]struct{}
	timer   *time.Timer
	mu      sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

// Options configures a Watcher
type Options struct {
	// Operation decides which file types are picked up
	Operation string
	// IgnoreDir is skipped, so outputs written below the watched folder are
	// not fed back in
	IgnoreDir string
	Debounce  time.Duration
	Logger    *slog.Logger
}

// NewWatcher watches dir, which must exist
func NewWatcher(dir string, opts Options, callback FilesCallback) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ignore := ""
	if opts.IgnoreDir != "" {
		ignore = filepath.Clean(opts.IgnoreDir)
	}

	return &Watcher{
		watcher:   watcher,
		callback:  callback,
		operation: opts.Operation,
		ignore:    ignore,
		debounce:  opts.Debounce,
		logger:    opts.Logger,
		pending:   make(map[string]struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching for file changes
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("Watcher error", "error", err)
			}
		}
	}()
}

// Stop stops watching and drops files still waiting on the debounce timer
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
	w.watcher.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]struct{})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !Accepts(w.operation, event.Name) || w.ignored(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[event.Name] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) ignored(path string) bool {
	if w.ignore == "" {
		return false
	}
	path = filepath.Clean(path)
	return path == w.ignore || strings.HasPrefix(path, w.ignore+string(filepath.Separator))
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(pending) == 0 || w.callback == nil {
		return
	}

	files := make([]string, 0, len(pending))
	for f := range pending {
		files = append(files, f)
	}
	sort.Strings(files)
	w.callback(files)
}
