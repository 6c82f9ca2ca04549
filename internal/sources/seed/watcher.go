package seed

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/windmesh/bearing/internal/logger"
	"github.com/windmesh/bearing/internal/utils"
)

// DefaultDebounce coalesces editor save bursts into one reload signal.
const DefaultDebounce = 500 * time.Millisecond

// Watcher signals when the seed file changes on disk. The parent directory
// is watched rather than the file itself: editors and config tooling
// typically replace the file via rename, which would detach a direct watch.
type Watcher struct {
	watcher  *fsnotify.Watcher
	fileName string
	debounce time.Duration
	events   chan struct{}
	logger   logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher starts watching the seed file's directory.
func NewWatcher(filePath string, debounce time.Duration, log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(filePath)
	if err := fsw.Add(dir); err != nil {
		utils.Close(fsw)
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:  fsw,
		fileName: filepath.Base(filePath),
		debounce: debounce,
		events:   make(chan struct{}, 1),
		logger:   log,
		stopCh:   make(chan struct{}),
	}
	go w.run()

	return w, nil
}

// Events delivers one signal per debounced change burst. The channel holds
// at most one pending signal; receivers that lag see a single coalesced one.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops watching and releases resources
func (w *Watcher) Close() error {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	return w.watcher.Close()
}

func (w *Watcher) run() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var lastChange time.Time
	dirty := false

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != w.fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			lastChange = time.Now()
			dirty = true

		case <-ticker.C:
			if dirty && time.Since(lastChange) >= w.debounce {
				dirty = false
				select {
				case w.events <- struct{}{}:
				default:
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("seed file watcher error",
				logger.Error(err))

		case <-w.stopCh:
			return
		}
	}
}
