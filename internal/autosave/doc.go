// Package autosave periodically writes the task store to disk.
//
// A [Ticker] runs one background goroutine that, every interval, takes the
// store lock and hands the live task list to a [storage.Saver]. Because the
// save happens under the same lock as every mutation, the file always holds
// a consistent snapshot and saves never interleave with each other or with
// manual saves.
//
// Failed saves are logged and published on the event bus as
// store.save_failed; they never stop the ticker. [Ticker.Stop] cancels the
// wait and blocks until any in-flight save has finished, which lets the
// caller perform a final save knowing nothing else is writing.
package autosave
