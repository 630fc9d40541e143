package task

import "time"

// Task is a single user-visible record.
type Task struct {
	// ID is unique within a store for the store's lifetime.
	ID int64 `json:"id"`

	// Title is the task description. Never empty.
	Title string `json:"title"`

	// Done is the completion flag.
	Done bool `json:"done"`

	// CreatedAt is when the task was added. Zero for tasks loaded from
	// files that predate the field.
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Mark returns the checkbox used in listings.
func (t Task) Mark() string {
	if t.Done {
		return "x"
	}
	return " "
}

// Status is a snapshot of the store's counts.
type Status struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Pending int `json:"pending"`
}
