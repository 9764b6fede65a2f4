package lobbyingie

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/telemachus/internal/core/ports/driven"
	"github.com/custodia-labs/telemachus/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.ChangeWatcher = (*Watcher)(nil)

// DefaultDebounce is how long the watcher waits after the last event
// before signalling.
const DefaultDebounce = 500 * time.Millisecond

// Watcher signals when CSV exports are added, changed or removed.
type Watcher struct {
	dir      string
	debounce time.Duration
}

// NewWatcher creates a watcher over the import directory.
func NewWatcher(dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce}
}

// Watch starts watching. Bursts of events collapse into one signal and
// signals are dropped while a previous one is still unread.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	out := make(chan struct{}, 1)
	go w.loop(ctx, fw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, out chan struct{}) {
	var (
		mu     sync.Mutex
		timer  *time.Timer
		closed bool
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		closed = true
		mu.Unlock()
		_ = fw.Close()
		close(out)
	}()

	fire := func() {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case out <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("lobbyingie: %s %s", event.Op, event.Name)

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, fire)
			mu.Unlock()
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			logger.Warn("lobbyingie: watcher: %v", err)
		}
	}
}

// relevant reports whether an event touches a CSV export.
func relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return isExport(filepath.Base(event.Name))
}
