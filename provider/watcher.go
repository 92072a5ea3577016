package provider

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Staler is marked stale when its file changes outside the session.
// *document.FileDocument implements it.
type Staler interface {
	MarkStale()
}

// Watcher marks staged documents stale when their file is written, created,
// removed or renamed by someone else. It watches parent directories so that
// editors which save by rename are still seen.
//
// Safe for concurrent use. Events are handled on a single goroutine.
type Watcher struct {
	fsw    *fsnotify.Watcher
	logger *slog.Logger

	mu      sync.Mutex
	targets map[string]Staler
	dirs    map[string]int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewWatcher(logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fsw:     fsw,
		logger:  logger.With(slog.String("component", "provider.Watcher")),
		targets: make(map[string]Staler),
		dirs:    make(map[string]int),
		done:    make(chan struct{}),
	}, nil
}

// Start processes events until ctx is canceled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
}

// Close stops the watcher and waits for the event goroutine.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

// Watch starts reporting external changes of path to doc.
func (w *Watcher) Watch(path string, doc Staler) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.targets[abs]; ok {
		w.targets[abs] = doc
		return nil
	}
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.targets[abs] = doc
	return nil
}

func (w *Watcher) Unwatch(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.targets[abs]; !ok {
		return
	}
	delete(w.targets, abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fsw.Remove(dir)
	}
}

// Watching reports whether path is being watched.
func (w *Watcher) Watching(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.targets[abs]
	return ok
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".nplmerge-") {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	doc, ok := w.targets[abs]
	w.mu.Unlock()
	if !ok {
		return
	}
	w.logger.Info("external change, marking document stale",
		slog.String("path", abs),
		slog.String("op", event.Op.String()),
	)
	doc.MarkStale()
}
