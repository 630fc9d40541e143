package task

import (
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/gobwas/glob"
)

// MaxID is the largest id a task may carry. Ids above it cannot be handed
// out without overflowing the counter, so files holding them are rejected.
const MaxID int64 = math.MaxInt64 - 1

// Store manages an ordered set of tasks.
// All methods are safe for concurrent use via an internal mutex.
type Store struct {
	mu     sync.Mutex
	tasks  []Task
	nextID int64
	now    func() time.Time
}

// NewStore creates an empty Store whose first task gets id 1.
func NewStore() *Store {
	return &Store{
		tasks:  []Task{},
		nextID: 1,
		now:    time.Now,
	}
}

// NewStoreFrom creates a Store holding a copy of tasks, in order.
func NewStoreFrom(tasks []Task) *Store {
	s := NewStore()
	s.Replace(tasks)
	return s
}

// Add appends a new pending task and returns its id.
// The title is trimmed; an empty title is rejected with ErrInvalidInput.
func (s *Store) Add(title string) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, errors.NewValidationError("task title cannot be empty").WithField("title")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextID > MaxID {
		return 0, errors.NewValidationError("no task ids left").WithField("id")
	}
	id := s.nextID
	s.nextID++
	s.tasks = append(s.tasks, Task{
		ID:        id,
		Title:     title,
		CreatedAt: s.now(),
	})
	return id, nil
}

// List returns a read-only view of the tasks in insertion order.
// The view is a copy taken under the lock when List is called, so
// callers may mutate the store while ranging over it.
func (s *Store) List() iter.Seq[Task] {
	snapshot := s.Snapshot()
	return slices.Values(snapshot)
}

// Snapshot returns a copy of all tasks in order.
func (s *Store) Snapshot() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Get returns the task with the given id.
func (s *Store) Get(id int64) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexOf(id)
	if err != nil {
		return Task{}, err
	}
	return s.tasks[i], nil
}

// Toggle flips the completion flag of the task with the given id and
// returns the updated task.
func (s *Store) Toggle(id int64) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexOf(id)
	if err != nil {
		return Task{}, err
	}
	s.tasks[i].Done = !s.tasks[i].Done
	return s.tasks[i], nil
}

// Delete removes the task with the given id and returns it.
func (s *Store) Delete(id int64) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.indexOf(id)
	if err != nil {
		return Task{}, err
	}
	removed := s.tasks[i]
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return removed, nil
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Status returns counts of done and pending tasks.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.Done {
			st.Done++
		}
	}
	st.Pending = st.Total - st.Done
	return st
}

// Replace swaps the whole task set, as done after loading from disk.
// The id counter resumes after the largest id, and never moves backwards.
// Ids above MaxID leave the counter exhausted rather than wrapping.
func (s *Store) Replace(tasks []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = slices.Clone(tasks)
	if s.tasks == nil {
		s.tasks = []Task{}
	}
	for _, t := range s.tasks {
		if t.ID >= s.nextID {
			s.nextID = min(t.ID, MaxID) + 1
		}
	}
}

// WithLock calls fn with the live task slice while holding the store lock.
// fn must not retain the slice or call back into the store.
func (s *Store) WithLock(fn func(tasks []Task) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tasks)
}

// Filter returns tasks whose titles match a glob pattern, ignoring case.
// A pattern without wildcards matches as a substring.
func (s *Store) Filter(pattern string) ([]Task, error) {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "" {
		return nil, errors.NewValidationError("search pattern cannot be empty").WithField("pattern")
	}
	if !strings.ContainsAny(pattern, "*?[{") {
		pattern = "*" + pattern + "*"
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.NewValidationError("invalid search pattern").WithValue(pattern).WithCause(err)
	}

	var matched []Task
	for t := range s.List() {
		if g.Match(strings.ToLower(t.Title)) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// indexOf returns the slice index of id. Must be called while s.mu is held.
func (s *Store) indexOf(id int64) (int, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i, nil
		}
	}
	return -1, errors.NewNotFoundError("task", strconv.FormatInt(id, 10))
}
