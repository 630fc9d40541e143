package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/Iron-Ham/tasker/internal/task"
	"github.com/Iron-Ham/tasker/internal/tui/styles"
)

// commandFunc executes one command. arg is the trimmed text after the
// command word, possibly empty. It reports whether the loop should end;
// a non-nil error is an input failure, never a task error.
type commandFunc func(l *Loop, ctx context.Context, arg string) (quit bool, err error)

type menuItem struct {
	key   string
	label string
}

var menuItems = []menuItem{
	{"1", "Add task"},
	{"2", "List tasks"},
	{"3", "Toggle done"},
	{"4", "Delete task"},
	{"5", "Save tasks"},
	{"f", "Find tasks"},
	{"0", "Exit"},
}

// createdLayout is the creation time shown in listings, to the second.
const createdLayout = "2006-01-02 15:04:05"

func (l *Loop) registerCommands() {
	l.commands = map[string]commandFunc{
		"1": cmdAdd, "add": cmdAdd, "a": cmdAdd,
		"2": cmdList, "list": cmdList, "ls": cmdList, "l": cmdList,
		"3": cmdToggle, "toggle": cmdToggle, "t": cmdToggle,
		"4": cmdDelete, "delete": cmdDelete, "del": cmdDelete, "rm": cmdDelete, "d": cmdDelete,
		"5": cmdSave, "save": cmdSave, "s": cmdSave,
		"0": cmdQuit, "quit": cmdQuit, "exit": cmdQuit, "q": cmdQuit,
		"find": cmdFind, "f": cmdFind,
		"help": cmdHelp, "h": cmdHelp, "?": cmdHelp,
	}
}

// dispatch parses and runs a single input line.
func (l *Loop) dispatch(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return cmdHelp(l, ctx, "")
	}

	name, arg := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		name, arg = line[:i], strings.TrimSpace(line[i:])
	}
	name = strings.ToLower(name)

	fn, ok := l.commands[name]
	if !ok {
		l.logger.Debug("unknown command", "input", line)
		l.failure("Invalid choice.")
		return false, nil
	}

	l.logger.Debug("command", "name", name, "has_arg", arg != "")
	return fn(l, ctx, arg)
}

func cmdAdd(l *Loop, ctx context.Context, title string) (bool, error) {
	if title == "" {
		var err error
		if title, err = l.ask(ctx, "Enter task title: "); err != nil {
			return false, err
		}
	}

	id, err := l.tasks.Add(title)
	if err != nil {
		if strings.TrimSpace(title) == "" {
			l.failure("Task title cannot be empty.")
		} else {
			l.failure("Could not add task: " + errors.UserMessage(err))
		}
		return false, nil
	}
	l.success(fmt.Sprintf("Added task %d", id))
	return false, nil
}

func cmdList(l *Loop, _ context.Context, _ string) (bool, error) {
	empty := true
	for t := range l.tasks.List() {
		empty = false
		l.println(l.formatTask(t))
	}
	if empty {
		l.println("No tasks.")
	}
	return false, nil
}

func cmdToggle(l *Loop, ctx context.Context, arg string) (bool, error) {
	id, ok, err := l.readID(ctx, arg, "Enter task id to toggle: ")
	if err != nil || !ok {
		return false, err
	}

	t, err := l.tasks.Toggle(id)
	if err != nil {
		l.reportTaskError(err)
		return false, nil
	}
	l.success(fmt.Sprintf("Toggled task %d -> %t", id, t.Done))
	return false, nil
}

func cmdDelete(l *Loop, ctx context.Context, arg string) (bool, error) {
	id, ok, err := l.readID(ctx, arg, "Enter task id to delete: ")
	if err != nil || !ok {
		return false, err
	}

	if _, err := l.tasks.Delete(id); err != nil {
		l.reportTaskError(err)
		return false, nil
	}
	l.success(fmt.Sprintf("Deleted task %d", id))
	return false, nil
}

func cmdSave(l *Loop, _ context.Context, _ string) (bool, error) {
	if err := l.tasks.Save(); err != nil {
		msg := "Failed to save tasks: " + errors.UserMessage(err)
		if errors.IsRetryable(err) {
			msg += " (try again with 5)"
		}
		l.failure(msg)
		return false, nil
	}
	l.success("Tasks saved.")
	return false, nil
}

func cmdQuit(l *Loop, _ context.Context, _ string) (bool, error) {
	l.println("Saving and exiting...")
	return true, nil
}

func cmdFind(l *Loop, ctx context.Context, pattern string) (bool, error) {
	if pattern == "" {
		var err error
		if pattern, err = l.ask(ctx, "Enter search pattern: "); err != nil {
			return false, err
		}
	}

	matches, err := l.tasks.Filter(pattern)
	if err != nil {
		l.failure("Invalid search pattern.")
		return false, nil
	}
	if len(matches) == 0 {
		l.println("No matching tasks.")
		return false, nil
	}
	for _, t := range matches {
		l.println(l.formatTask(t))
	}
	return false, nil
}

func cmdHelp(l *Loop, _ context.Context, _ string) (bool, error) {
	l.printMenu()
	return false, nil
}

// readID takes the id from arg, or prompts for it. ok is false when the
// input was not a positive integer; the user has already been told.
func (l *Loop) readID(ctx context.Context, arg, prompt string) (id int64, ok bool, err error) {
	if arg == "" {
		if arg, err = l.ask(ctx, prompt); err != nil {
			return 0, false, err
		}
	}

	id, perr := strconv.ParseInt(arg, 10, 64)
	if perr != nil || id <= 0 {
		l.failure("Invalid task id.")
		return 0, false, nil
	}
	return id, true, nil
}

func (l *Loop) reportTaskError(err error) {
	if errors.Is(err, errors.ErrTaskNotFound) {
		l.failure("No task found.")
		return
	}
	l.failure(errors.UserMessage(err))
}

// formatTask renders "1. [x] buy milk (created 2024-01-02 15:04:05)".
// Tasks loaded from files without a creation time omit the suffix.
func (l *Loop) formatTask(t task.Task) string {
	line := fmt.Sprintf("%d. %s", t.ID, l.theme.Status(t.Done).Render(styles.CheckBox(t.Done)+" "+t.Title))
	if !t.CreatedAt.IsZero() {
		line += " " + l.theme.Muted().Render("(created "+t.CreatedAt.Local().Format(createdLayout)+")")
	}
	return line
}
