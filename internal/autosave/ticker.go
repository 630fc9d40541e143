package autosave

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/tasker/internal/event"
	"github.com/Iron-Ham/tasker/internal/logging"
	"github.com/Iron-Ham/tasker/internal/storage"
	"github.com/Iron-Ham/tasker/internal/task"
	"github.com/sourcegraph/conc"
)

// DefaultInterval is used when New is given a non-positive interval.
const DefaultInterval = 10 * time.Second

// Ticker saves a task store on a fixed interval.
type Ticker struct {
	store  *task.Store
	saver  storage.Saver
	bus    *event.Bus
	logger *logging.Logger
	path   string

	mu       sync.Mutex
	interval time.Duration
	cancel   context.CancelFunc
	started  bool
	stopped  bool
	wg       conc.WaitGroup

	// resetCh carries interval changes to the running loop.
	resetCh chan time.Duration

	ticks    atomic.Int64
	failures atomic.Int64
}

// Option configures a Ticker.
type Option func(*Ticker)

// WithBus publishes store.saved and store.save_failed events for each tick.
func WithBus(bus *event.Bus) Option {
	return func(t *Ticker) { t.bus = bus }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(t *Ticker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithPath sets the file path reported in events and log lines.
func WithPath(path string) Option {
	return func(t *Ticker) { t.path = path }
}

// New creates a Ticker. It does nothing until Start is called.
func New(store *task.Store, saver storage.Saver, interval time.Duration, opts ...Option) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := &Ticker{
		store:    store,
		saver:    saver,
		logger:   logging.NopLogger(),
		interval: interval,
		resetCh:  make(chan time.Duration, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithComponent("autosave")
	return t
}

// Start launches the background loop. The loop ends when ctx is canceled or
// Stop is called. Calling Start more than once, or after Stop, does nothing.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started || t.stopped {
		return
	}
	t.started = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	interval := t.interval

	t.wg.Go(func() { t.run(ctx, interval) })
	t.logger.Debug("autosave started", "interval", interval.String())
}

// Stop cancels the loop and waits for it to exit, including any save in
// progress. It is safe to call Stop more than once, or without Start.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	cancel := t.cancel
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()
	t.logger.Debug("autosave stopped", "ticks", t.Ticks(), "failures", t.Failures())
}

// SetInterval changes the period of a running or not yet started ticker.
// Non-positive values are ignored. The next tick fires one full new
// interval after the change.
func (t *Ticker) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}

	t.mu.Lock()
	if t.interval == d {
		t.mu.Unlock()
		return
	}
	t.interval = d
	running := t.started && !t.stopped
	t.mu.Unlock()

	if !running {
		return
	}

	// Keep only the latest pending change.
	select {
	case <-t.resetCh:
	default:
	}
	select {
	case t.resetCh <- d:
	default:
	}
	t.logger.Info("autosave interval changed", "interval", d.String())
}

// Interval returns the current period.
func (t *Ticker) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// Ticks returns the number of completed save attempts.
func (t *Ticker) Ticks() int {
	return int(t.ticks.Load())
}

// Failures returns the number of save attempts that returned an error.
func (t *Ticker) Failures() int {
	return int(t.failures.Load())
}

func (t *Ticker) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-t.resetCh:
			ticker.Reset(d)
		case <-ticker.C:
			// A stop that raced with the tick wins.
			if ctx.Err() != nil {
				return
			}
			t.tick()
		}
	}
}

func (t *Ticker) tick() {
	start := time.Now()
	var count int

	err := t.store.WithLock(func(tasks []task.Task) error {
		count = len(tasks)
		return t.saver.Save(tasks)
	})
	t.ticks.Add(1)

	if err != nil {
		t.failures.Add(1)
		t.logger.Warn("autosave failed", "path", t.path, "error", err.Error())
		t.publish(event.NewStoreSaveFailedEvent(t.path, event.SaveAutosave, err.Error()))
		return
	}

	elapsed := time.Since(start)
	t.logger.Debug("autosave complete", "path", t.path, "count", count, "duration_ms", elapsed.Milliseconds())
	t.publish(event.NewStoreSavedEvent(t.path, count, event.SaveAutosave, elapsed))
}

func (t *Ticker) publish(e event.Event) {
	if t.bus != nil {
		t.bus.Publish(e)
	}
}
