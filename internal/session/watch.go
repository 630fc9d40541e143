package session

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Iron-Ham/tasker/internal/config"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// ConfigWatcher reloads a config file when it changes on disk.
type ConfigWatcher struct {
	path     string
	load     func() (*config.Config, error)
	watcher  *fsnotify.Watcher
	onChange func(*config.Config)
	onError  func(error)

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewConfigWatcher watches path. onChange receives each successfully loaded
// and validated config; onError (optional) receives load failures.
func NewConfigWatcher(path string, onChange func(*config.Config), onError func(error)) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory: editors often replace the file instead of writing it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	return &ConfigWatcher{
		path:     path,
		load:     func() (*config.Config, error) { return config.ReadFile(path) },
		watcher:  watcher,
		onChange: onChange,
		onError:  onError,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// SetLoader replaces how the file is read on change. The default reads it
// on its own, which loses any flag overrides the caller applied. Call
// before Start.
func (w *ConfigWatcher) SetLoader(load func() (*config.Config, error)) {
	if load != nil {
		w.load = load
	}
}

// Start begins watching in a background goroutine.
func (w *ConfigWatcher) Start() {
	go w.watchLoop()
}

// Stop ends the watch and waits for the goroutine to exit. Safe to call twice.
func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
		<-w.done
	})
}

func (w *ConfigWatcher) watchLoop() {
	defer close(w.done)

	target := filepath.Base(w.path)
	debounce := time.NewTimer(reloadDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-w.stopCh:
			debounce.Stop()
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			debounce.Reset(reloadDebounce)

		case <-debounce.C:
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *ConfigWatcher) reload() {
	cfg, err := w.load()
	if err != nil {
		w.report(err)
		return
	}
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

func (w *ConfigWatcher) report(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}
