// Package event defines event types for decoupling components in tasker.
package event

import "time"

// Event type identifiers.
const (
	TypeTaskAdded       = "task.added"
	TypeTaskToggled     = "task.toggled"
	TypeTaskDeleted     = "task.deleted"
	TypeStoreLoaded     = "store.loaded"
	TypeStoreSaved      = "store.saved"
	TypeStoreSaveFailed = "store.save_failed"
)

// SaveReason says what triggered a save.
type SaveReason string

const (
	// SaveManual is a save requested from the menu.
	SaveManual SaveReason = "manual"
	// SaveAutosave is a save performed by the ticker.
	SaveAutosave SaveReason = "autosave"
	// SaveShutdown is the final save after the ticker stopped.
	SaveShutdown SaveReason = "shutdown"
)

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.added", "store.saved")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Task Events
// -----------------------------------------------------------------------------

// TaskAddedEvent is emitted after a task is appended to the store.
type TaskAddedEvent struct {
	baseEvent
	TaskID int64
	Title  string
}

// NewTaskAddedEvent creates a TaskAddedEvent.
func NewTaskAddedEvent(taskID int64, title string) TaskAddedEvent {
	return TaskAddedEvent{
		baseEvent: newBaseEvent(TypeTaskAdded),
		TaskID:    taskID,
		Title:     title,
	}
}

// TaskToggledEvent is emitted after a task's completion flag flips.
type TaskToggledEvent struct {
	baseEvent
	TaskID int64
	Done   bool // Flag value after the toggle
}

// NewTaskToggledEvent creates a TaskToggledEvent.
func NewTaskToggledEvent(taskID int64, done bool) TaskToggledEvent {
	return TaskToggledEvent{
		baseEvent: newBaseEvent(TypeTaskToggled),
		TaskID:    taskID,
		Done:      done,
	}
}

// TaskDeletedEvent is emitted after a task is removed from the store.
type TaskDeletedEvent struct {
	baseEvent
	TaskID int64
	Title  string
}

// NewTaskDeletedEvent creates a TaskDeletedEvent.
func NewTaskDeletedEvent(taskID int64, title string) TaskDeletedEvent {
	return TaskDeletedEvent{
		baseEvent: newBaseEvent(TypeTaskDeleted),
		TaskID:    taskID,
		Title:     title,
	}
}

// -----------------------------------------------------------------------------
// Persistence Events
// -----------------------------------------------------------------------------

// StoreLoadedEvent is emitted once at startup after the task file is read.
type StoreLoadedEvent struct {
	baseEvent
	Path  string
	Count int
	Error string // Non-empty when the load failed and the store started empty
}

// NewStoreLoadedEvent creates a StoreLoadedEvent.
func NewStoreLoadedEvent(path string, count int, errMsg string) StoreLoadedEvent {
	return StoreLoadedEvent{
		baseEvent: newBaseEvent(TypeStoreLoaded),
		Path:      path,
		Count:     count,
		Error:     errMsg,
	}
}

// StoreSavedEvent is emitted after the task file was written.
type StoreSavedEvent struct {
	baseEvent
	Path     string
	Count    int
	Reason   SaveReason
	Duration time.Duration
}

// NewStoreSavedEvent creates a StoreSavedEvent.
func NewStoreSavedEvent(path string, count int, reason SaveReason, duration time.Duration) StoreSavedEvent {
	return StoreSavedEvent{
		baseEvent: newBaseEvent(TypeStoreSaved),
		Path:      path,
		Count:     count,
		Reason:    reason,
		Duration:  duration,
	}
}

// StoreSaveFailedEvent is emitted when writing the task file fails.
type StoreSaveFailedEvent struct {
	baseEvent
	Path   string
	Reason SaveReason
	Error  string
}

// NewStoreSaveFailedEvent creates a StoreSaveFailedEvent.
func NewStoreSaveFailedEvent(path string, reason SaveReason, errMsg string) StoreSaveFailedEvent {
	return StoreSaveFailedEvent{
		baseEvent: newBaseEvent(TypeStoreSaveFailed),
		Path:      path,
		Reason:    reason,
		Error:     errMsg,
	}
}
