package session

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/Iron-Ham/tasker/internal/autosave"
	"github.com/Iron-Ham/tasker/internal/config"
	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/Iron-Ham/tasker/internal/event"
	"github.com/Iron-Ham/tasker/internal/logging"
	"github.com/Iron-Ham/tasker/internal/storage"
	"github.com/Iron-Ham/tasker/internal/task"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Session ties a task store to its file, its autosave ticker and the
// event bus.
type Session struct {
	id      string
	cfg     *config.Config
	store   *task.Store
	file    *storage.File
	bus     *event.Bus
	ticker  *autosave.Ticker // nil when autosave is disabled
	watcher *ConfigWatcher   // nil unless a config file is watched
	logger  *logging.Logger
	cancel  context.CancelFunc

	loadErr        error
	quarantinePath string
	logSub         string

	fs           afero.Fs
	configFile   string
	configLoader func() (*config.Config, error)

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Session.
type Option func(*Session)

// WithFs sets the filesystem for the task file. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(s *Session) { s.fs = fsys }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBus supplies an event bus, so callers can subscribe before the
// initial load event is published.
func WithBus(bus *event.Bus) Option {
	return func(s *Session) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// WithConfigWatch reloads path whenever it changes and applies a new
// autosave.interval to the running ticker.
func WithConfigWatch(path string) Option {
	return func(s *Session) { s.configFile = path }
}

// WithConfigLoader sets how a watched config file is re-read, typically
// config.Reload on the viper instance that holds flag overrides.
func WithConfigLoader(load func() (*config.Config, error)) Option {
	return func(s *Session) { s.configLoader = load }
}

// Open loads the task file named by cfg and starts autosave. A file that
// cannot be read or parsed does not fail Open: the store starts empty and
// the problem is reported through LoadErr. A file that fails to parse is
// moved aside to <file>.corrupt first, so autosave cannot overwrite it.
func Open(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, config.ValidationErrors(errs)
	}

	s := &Session{
		id:     uuid.NewString(),
		cfg:    cfg,
		bus:    event.NewBus(),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithSession(s.id)
	log := s.logger.WithComponent("session")

	eventLog := s.logger.WithComponent("events")
	s.bus.SetPanicHandler(func(e event.Event, r any, stack []byte) {
		eventLog.Error("event handler panicked",
			"type", e.EventType(),
			"panic", fmt.Sprint(r),
			"stack", string(stack),
		)
	})
	s.logSub = s.bus.SubscribeAll(func(e event.Event) {
		eventLog.Debug("event", "type", e.EventType())
	})

	s.file = storage.NewFile(s.fs, cfg.Storage.ResolveFile())
	s.store = s.load(log)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if cfg.Autosave.Enabled {
		s.ticker = autosave.New(s.store, s.file, cfg.Autosave.Interval,
			autosave.WithBus(s.bus),
			autosave.WithLogger(s.logger),
			autosave.WithPath(s.file.Path()),
		)
		s.ticker.Start(ctx)
	}

	if s.configFile != "" {
		w, err := NewConfigWatcher(s.configFile, s.applyConfig, func(err error) {
			log.Warn("config reload failed", "path", s.configFile, "error", err.Error())
		})
		if err != nil {
			log.Warn("config watch disabled", "path", s.configFile, "error", err.Error())
		} else {
			w.SetLoader(s.configLoader)
			s.watcher = w
			w.Start()
		}
	}

	log.Info("session opened",
		"path", s.file.Path(),
		"tasks", s.store.Len(),
		"autosave", cfg.Autosave.Enabled,
		"interval", cfg.Autosave.Interval.String(),
	)
	return s, nil
}

func (s *Session) load(log *logging.Logger) *task.Store {
	tasks, err := s.file.Load()
	if err == nil {
		s.bus.Publish(event.NewStoreLoadedEvent(s.file.Path(), len(tasks), ""))
		return task.NewStoreFrom(tasks)
	}

	s.loadErr = err
	log.Warn("load failed, starting empty", "path", s.file.Path(), "error", err.Error())

	if errors.Is(err, errors.ErrStorageFormat) {
		if dest, qerr := s.file.Quarantine(); qerr != nil {
			log.Error("could not move corrupt file aside", "path", s.file.Path(), "error", qerr.Error())
		} else {
			s.quarantinePath = dest
			log.Info("corrupt file moved aside", "path", dest)
		}
	}

	s.bus.Publish(event.NewStoreLoadedEvent(s.file.Path(), 0, err.Error()))
	return task.NewStore()
}

func (s *Session) applyConfig(cfg *config.Config) {
	if s.ticker != nil && cfg.Autosave.Interval != s.ticker.Interval() {
		s.ticker.SetInterval(cfg.Autosave.Interval)
	}
}

// ID returns the session's unique id, used to correlate log lines.
func (s *Session) ID() string { return s.id }

// Store returns the underlying task store.
func (s *Session) Store() *task.Store { return s.store }

// Bus returns the session's event bus.
func (s *Session) Bus() *event.Bus { return s.bus }

// Path returns the task file path.
func (s *Session) Path() string { return s.file.Path() }

// Logger returns the session-scoped logger.
func (s *Session) Logger() *logging.Logger { return s.logger }

// LoadErr returns the error from the initial load, if any.
func (s *Session) LoadErr() error { return s.loadErr }

// QuarantinePath returns where a corrupt task file was moved, or "".
func (s *Session) QuarantinePath() string { return s.quarantinePath }

// Autosave returns the running ticker, or nil when autosave is disabled.
func (s *Session) Autosave() *autosave.Ticker { return s.ticker }

// Add creates a task and returns its id.
func (s *Session) Add(title string) (int64, error) {
	id, err := s.store.Add(title)
	if err != nil {
		return 0, err
	}
	s.bus.Publish(event.NewTaskAddedEvent(id, strings.TrimSpace(title)))
	return id, nil
}

// List returns the tasks in insertion order.
func (s *Session) List() iter.Seq[task.Task] {
	return s.store.List()
}

// Toggle flips a task's completion flag.
func (s *Session) Toggle(id int64) (task.Task, error) {
	t, err := s.store.Toggle(id)
	if err != nil {
		return task.Task{}, err
	}
	s.bus.Publish(event.NewTaskToggledEvent(id, t.Done))
	return t, nil
}

// Delete removes a task.
func (s *Session) Delete(id int64) (task.Task, error) {
	t, err := s.store.Delete(id)
	if err != nil {
		return task.Task{}, err
	}
	s.bus.Publish(event.NewTaskDeletedEvent(id, t.Title))
	return t, nil
}

// Filter returns tasks whose titles match pattern.
func (s *Session) Filter(pattern string) ([]task.Task, error) {
	return s.store.Filter(pattern)
}

// Status returns done and pending counts.
func (s *Session) Status() task.Status {
	return s.store.Status()
}

// Save writes the store to disk now.
func (s *Session) Save() error {
	return s.save(event.SaveManual)
}

func (s *Session) save(reason event.SaveReason) error {
	start := time.Now()
	var count int

	err := s.store.WithLock(func(tasks []task.Task) error {
		count = len(tasks)
		return s.file.Save(tasks)
	})

	log := s.logger.WithComponent("storage")
	if err != nil {
		log.Error("save failed", "reason", string(reason), "path", s.file.Path(), "error", err.Error())
		s.bus.Publish(event.NewStoreSaveFailedEvent(s.file.Path(), reason, err.Error()))
		return err
	}

	elapsed := time.Since(start)
	log.Info("tasks saved", "reason", string(reason), "count", count, "duration_ms", elapsed.Milliseconds())
	s.bus.Publish(event.NewStoreSavedEvent(s.file.Path(), count, reason, elapsed))
	return nil
}

// Close stops the config watcher and the autosave ticker, waiting for any
// in-flight save, then saves one final time. Only the first call does any
// work; later calls return the same result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.watcher != nil {
			s.watcher.Stop()
		}
		if s.ticker != nil {
			s.ticker.Stop()
		}
		s.cancel()

		s.closeErr = s.save(event.SaveShutdown)

		s.bus.Unsubscribe(s.logSub)
		s.logger.WithComponent("session").Info("session closed",
			"error", errString(s.closeErr),
			"open_subscriptions", s.bus.SubscriptionCount(),
		)
	})
	return s.closeErr
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
