package library

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn after the named document changes on disk. Bursts of events
// are collapsed into one call. It blocks until ctx is done.
func (l *Library) Watch(ctx context.Context, name string, fn func()) error {
	doc, err := DocumentName(name)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", doc, err)
	}
	defer w.Close()
	// The directory, not the file: atomic replacement swaps the inode.
	if err := w.Add(l.root); err != nil {
		return fmt.Errorf("watch %s: %w", l.root, err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(l.debounce, func() {
			if ctx.Err() == nil {
				fn()
			}
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(evt.Name) != doc {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("document watch", "doc", doc, "err", err)
		}
	}
}
