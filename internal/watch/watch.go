// Package watch implements the --watch mode: a debounced fsnotify loop
// that re-runs the analysis pipeline whenever a source file changes. It
// follows the shape of the teacher's own file-watcher (recursive
// directory registration, a debounce timer coalescing bursts of events
// into a single callback) adapted to a single-shot re-run callback
// instead of an incremental reindex queue.
package watch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher watches a project tree and invokes a callback with the set of
// changed files once a burst of filesystem activity settles.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	extensions   map[string]bool
	excludeDirs  map[string]bool
	debounce     time.Duration
	callback     func(changed []string)
	cancel       context.CancelFunc
	done         chan struct{}
	accumulated  map[string]bool
	accumulateMu sync.Mutex
}

// New builds a Watcher rooted at rootDir, monitoring files with the
// given extensions (e.g. ".java", ".xml") and skipping excludeDirs by
// name at any depth.
func New(rootDir string, extensions, excludeDirs []string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(e)] = true
	}
	excludeSet := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excludeSet[d] = true
	}

	w := &Watcher{
		fsWatcher:   fsWatcher,
		extensions:  extSet,
		excludeDirs: excludeSet,
		debounce:    defaultDebounce,
		accumulated: make(map[string]bool),
		done:        make(chan struct{}),
	}

	if err := w.addRecursively(rootDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}
	return w, nil
}

// SetDebounce overrides the default 500ms debounce window, mainly for tests.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

func (w *Watcher) addRecursively(root string) error {
	if w.excludeDirs[filepath.Base(root)] {
		return nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", root, err)
	}
	if err := w.fsWatcher.Add(root); err != nil {
		return fmt.Errorf("watch dir %s: %w", root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if w.excludeDirs[entry.Name()] {
			continue
		}
		if err := w.addRecursively(filepath.Join(root, entry.Name())); err != nil {
			log.Printf("watch: %v", err)
		}
	}
	return nil
}

// Start begins watching in a background goroutine; callback fires once
// per settled debounce window with every file changed during it. Start
// returns immediately.
func (w *Watcher) Start(ctx context.Context, callback func(changed []string)) {
	w.callback = callback
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	go w.run(runCtx)
}

// Stop halts the watcher and releases its fsnotify handle.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	} else {
		close(w.done)
	}
	return w.fsWatcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	resetTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case fire <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			if !w.extensions[strings.ToLower(filepath.Ext(event.Name))] {
				continue
			}
			w.accumulateMu.Lock()
			w.accumulated[event.Name] = true
			w.accumulateMu.Unlock()
			resetTimer()

		case <-fire:
			w.accumulateMu.Lock()
			if len(w.accumulated) == 0 {
				w.accumulateMu.Unlock()
				continue
			}
			changed := make([]string, 0, len(w.accumulated))
			for f := range w.accumulated {
				changed = append(changed, f)
			}
			w.accumulated = make(map[string]bool)
			w.accumulateMu.Unlock()

			if w.callback != nil {
				w.callback(changed)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: fsnotify error: %v", err)
		}
	}
}
