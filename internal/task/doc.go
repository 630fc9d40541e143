// Package task provides the in-memory task list shared by the interactive
// menu and the autosave ticker.
//
// The core type is [Store], an ordered collection of [Task] records guarded
// by a single mutex. Every operation takes the lock for its whole duration
// and releases it on all return paths, so a reader never observes a store
// in the middle of a mutation.
//
// Identifiers come from a monotonic counter and are never reused, even after
// the task holding the highest id is deleted. After [Store.Replace] the
// counter resumes at one past the largest loaded id.
//
// Saves go through [Store.WithLock], which hands the live slice to a callback
// while the lock is held. Two saves therefore never overlap and each one
// serializes a consistent snapshot.
//
// Usage:
//
//	store := task.NewStore()
//	id, err := store.Add("buy milk")
//	if _, err := store.Toggle(id); err != nil { ... }
//	for t := range store.List() {
//	    fmt.Println(t.ID, t.Title, t.Done)
//	}
package task
