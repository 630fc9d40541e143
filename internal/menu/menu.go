// Package menu implements tasker's line-oriented text menu.
//
// The loop has a single state, awaiting a command. Each line read from the
// input is parsed as a command (a menu number or a word, with an optional
// inline argument), executed against a [Tasks] implementation, and answered
// on the output. Bad input is reported and never changes state. The loop
// ends on the quit command, at end of input, or when its context is
// canceled; only a read error other than end of input is returned.
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/Iron-Ham/tasker/internal/logging"
	"github.com/Iron-Ham/tasker/internal/task"
	"github.com/Iron-Ham/tasker/internal/tui/styles"
)

// Tasks is what the menu needs from a session.
type Tasks interface {
	Add(title string) (int64, error)
	List() iter.Seq[task.Task]
	Toggle(id int64) (task.Task, error)
	Delete(id int64) (task.Task, error)
	Filter(pattern string) ([]task.Task, error)
	Save() error
}

// Loop runs the menu over an input and an output stream.
type Loop struct {
	tasks    Tasks
	in       io.Reader
	out      io.Writer
	theme    *styles.Theme
	logger   *logging.Logger
	commands map[string]commandFunc

	lines <-chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// Option configures a Loop.
type Option func(*Loop)

// WithTheme styles the output. Without it the output is plain text.
func WithTheme(theme *styles.Theme) Option {
	return func(l *Loop) { l.theme = theme }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Loop reading commands from in and writing to out.
func New(tasks Tasks, in io.Reader, out io.Writer, opts ...Option) *Loop {
	l := &Loop{
		tasks:  tasks,
		in:     in,
		out:    out,
		theme:  styles.NewTheme(false),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.WithComponent("menu")
	l.registerCommands()
	return l
}

// Run shows the menu and processes commands until quit, end of input, or
// ctx cancellation, all of which return nil. Any other read failure is
// returned. Run does not save on exit; the caller's shutdown path does.
func (l *Loop) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	l.lines = l.startReader(done)

	l.printMenu()
	for {
		l.prompt("Enter choice: ")
		line, err := l.readLine(ctx)
		if err != nil {
			return l.finish(err)
		}

		quit, err := l.dispatch(ctx, line)
		if err != nil {
			return l.finish(err)
		}
		if quit {
			return nil
		}
	}
}

// startReader feeds input lines to a channel so reads can be abandoned when
// ctx is canceled. The goroutine exits at end of input or once done is
// closed and it next tries to deliver a line.
func (l *Loop) startReader(done <-chan struct{}) <-chan lineResult {
	ch := make(chan lineResult)
	go func() {
		defer close(ch)
		r := bufio.NewReader(l.in)
		for {
			line, err := r.ReadString('\n')
			if line != "" || err == nil {
				select {
				case ch <- lineResult{line: strings.TrimRight(line, "\r\n")}:
				case <-done:
					return
				}
			}
			if err != nil {
				select {
				case ch <- lineResult{err: err}:
				case <-done:
				}
				return
			}
		}
	}()
	return ch
}

func (l *Loop) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

// finish maps the error that ended the loop to Run's result.
func (l *Loop) finish(err error) error {
	switch {
	case errors.Is(err, io.EOF):
		l.println("")
		l.println("Exiting...")
		l.logger.Info("input closed")
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		l.println("")
		l.println("Interrupted. Saving and exiting...")
		l.logger.Info("interrupted")
		return nil
	default:
		l.logger.Error("read failed", "error", err.Error())
		return errors.Wrap(err, "read input")
	}
}

// ask prompts and reads one line for a command that needs an argument.
func (l *Loop) ask(ctx context.Context, prompt string) (string, error) {
	l.prompt(prompt)
	line, err := l.readLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (l *Loop) printMenu() {
	l.println("")
	l.println(l.theme.Title().Render("==== Task Manager ===="))
	for _, item := range menuItems {
		l.println(l.theme.HelpKey().Render(item.key) + ". " + item.label)
	}
	l.println(l.theme.Muted().Render("Words work too: add <title>, toggle <id>, delete <id>, find <pattern>, help, quit."))
}

func (l *Loop) prompt(s string) {
	fmt.Fprint(l.out, s)
}

func (l *Loop) println(s string) {
	fmt.Fprintln(l.out, s)
}

func (l *Loop) success(s string) {
	l.println(l.theme.Success().Render(s))
}

func (l *Loop) failure(s string) {
	l.println(l.theme.Error().Render(s))
}
