// Package storage persists the task list to a single JSON file.
//
// Writes are atomic: the encoded list goes to a temporary file next to the
// target, which is then renamed into place, so the file on disk is always
// either the previous complete snapshot or the new one. A missing file loads
// as an empty list.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/Iron-Ham/tasker/internal/task"
	"github.com/spf13/afero"
)

// DefaultFileName is the task file used when no path is configured.
const DefaultFileName = "tasks.json"

// Saver writes a full task list. Implemented by [File].
type Saver interface {
	Save(tasks []task.Task) error
}

// File is a task file on an afero filesystem.
type File struct {
	fs   afero.Fs
	path string
}

// NewFile returns a File for path on fsys. A nil fsys means the OS filesystem.
func NewFile(fsys afero.Fs, path string) *File {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if path == "" {
		path = DefaultFileName
	}
	return &File{fs: fsys, path: path}
}

// Path returns the target file path.
func (f *File) Path() string {
	return f.path
}

// Save writes tasks to the file, replacing previous contents.
// The caller is responsible for holding whatever lock guards tasks.
func (f *File) Save(tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return errors.NewStorageError(errors.KindIO, "marshal tasks", err).WithPath(f.path)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(f.path); dir != "." {
		if err := f.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.NewStorageError(errors.KindIO, "create directory", err).WithPath(f.path)
		}
	}

	tmp := f.path + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o644); err != nil {
		_ = f.fs.Remove(tmp) // best-effort cleanup
		return errors.NewStorageError(errors.KindIO, "write temp file", err).WithPath(f.path)
	}

	if err := f.fs.Rename(tmp, f.path); err != nil {
		_ = f.fs.Remove(tmp) // best-effort cleanup
		return errors.NewStorageError(errors.KindIO, "rename temp file", err).WithPath(f.path)
	}

	return nil
}

// SaveStore writes the store's current contents through saver while holding
// the store lock, so concurrent saves never interleave.
func SaveStore(store *task.Store, saver Saver) error {
	return store.WithLock(saver.Save)
}

// Load reads the task list. A missing file yields an empty list and no error.
func (f *File) Load() ([]task.Task, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return []task.Task{}, nil
		}
		return nil, errors.NewStorageError(errors.KindIO, "read task file", err).WithPath(f.path)
	}

	tasks, err := Decode(data)
	if err != nil {
		var storageErr *errors.StorageError
		if errors.As(err, &storageErr) {
			return nil, storageErr.WithPath(f.path)
		}
		return nil, err
	}
	return tasks, nil
}

// Quarantine moves an unreadable task file aside to <path>.corrupt so the
// next save does not destroy it. It returns the new location.
func (f *File) Quarantine() (string, error) {
	dest := f.path + ".corrupt"
	if err := f.fs.Rename(f.path, dest); err != nil {
		return "", errors.NewStorageError(errors.KindIO, "move corrupt file aside", err).WithPath(f.path)
	}
	return dest, nil
}

// Decode parses and validates an encoded task list.
// An empty or whitespace-only document decodes as an empty list.
func Decode(data []byte) ([]task.Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []task.Task{}, nil
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, errors.NewStorageError(errors.KindFormat, "decode tasks", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}

	seen := make(map[int64]bool, len(tasks))
	for i, t := range tasks {
		switch {
		case t.ID <= 0:
			return nil, errors.NewStorageError(errors.KindFormat,
				fmt.Sprintf("record %d: id must be positive (got %d)", i, t.ID), nil)
		case t.ID > task.MaxID:
			return nil, errors.NewStorageError(errors.KindFormat,
				fmt.Sprintf("record %d: id %d out of range", i, t.ID), nil)
		case seen[t.ID]:
			return nil, errors.NewStorageError(errors.KindFormat,
				fmt.Sprintf("record %d: duplicate id %d", i, t.ID), nil)
		case t.Title == "":
			return nil, errors.NewStorageError(errors.KindFormat,
				fmt.Sprintf("record %d: empty title", i), nil)
		}
		seen[t.ID] = true
	}
	return tasks, nil
}
