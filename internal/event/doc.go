// Package event provides a pub-sub event bus that lets tasker components
// react to store changes and saves without depending on each other.
//
// # Main Types
//
//   - [Event]: Interface that all events must implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub event dispatcher with thread-safe operations
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Event Categories
//
// Task changes:
//   - [TaskAddedEvent]: a task was appended to the store
//   - [TaskToggledEvent]: a task's completion flag flipped
//   - [TaskDeletedEvent]: a task was removed
//
// Persistence:
//   - [StoreLoadedEvent]: the store was populated from disk at startup
//   - [StoreSavedEvent]: a save finished (manual, autosave, or shutdown)
//   - [StoreSaveFailedEvent]: a save returned an error
//
// # Thread Safety
//
// The [Bus] type is safe for concurrent use. The autosave goroutine and the
// interactive loop both publish on the same bus. Handlers are called
// synchronously on the publishing goroutine and are protected against
// panics.
//
// # Basic Usage
//
//	bus := event.NewBus()
//
//	bus.Subscribe(event.TypeStoreSaveFailed, func(e event.Event) {
//	    failed := e.(event.StoreSaveFailedEvent)
//	    fmt.Fprintf(os.Stderr, "autosave failed: %s\n", failed.Error)
//	})
//
//	bus.SubscribeAll(func(e event.Event) {
//	    logger.Debug("event", "type", e.EventType())
//	})
//
//	bus.Publish(event.NewTaskAddedEvent(1, "buy milk"))
//
// # Event Type Naming Convention
//
// Event types follow the pattern "category.action":
//   - task.added, task.toggled, task.deleted
//   - store.loaded, store.saved, store.save_failed
package event
