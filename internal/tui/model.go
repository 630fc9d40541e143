package tui

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/Iron-Ham/tasker/internal/errors"
	"github.com/Iron-Ham/tasker/internal/event"
	"github.com/Iron-Ham/tasker/internal/task"
	"github.com/Iron-Ham/tasker/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Tasks is the part of a session the full-screen UI drives.
type Tasks interface {
	Add(title string) (int64, error)
	List() iter.Seq[task.Task]
	Toggle(id int64) (task.Task, error)
	Delete(id int64) (task.Task, error)
	Status() task.Status
	Save() error
}

// autosaveMsg reports a background save that finished while the UI runs.
type autosaveMsg struct {
	at    time.Time
	count int
	err   string
}

// Model is the Bubbletea model for the task list.
type Model struct {
	tasks    Tasks
	theme    *styles.Theme
	items    []task.Task
	cursor   int
	width    int
	height   int
	adding   bool
	input    textinput.Model
	errorMsg string
	infoMsg  string
	lastSave string
	quitting bool
}

// NewModel creates a model showing the current tasks.
func NewModel(tasks Tasks, theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "task title"
	ti.CharLimit = 200
	ti.Width = 50

	if theme == nil {
		theme = styles.NewTheme(false)
	}

	m := Model{
		tasks: tasks,
		theme: theme,
		input: ti,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case autosaveMsg:
		if msg.err != "" {
			m.lastSave = "Autosave failed: " + msg.err
		} else {
			m.lastSave = fmt.Sprintf("Autosaved %d tasks at %s", msg.count, msg.at.Format("15:04:05"))
		}
		return m, nil

	case tea.KeyMsg:
		m.errorMsg = ""
		m.infoMsg = ""

		if m.adding {
			return m.handleAddingKeypress(msg)
		}
		return m.handleKeypress(msg)
	}

	return m, nil
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "home", "g":
		m.cursor = 0

	case "end", "G":
		m.cursor = max(len(m.items)-1, 0)

	case "a":
		m.adding = true
		m.input.Reset()
		return m, m.input.Focus()

	case " ", "x", "enter":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		updated, err := m.tasks.Toggle(t.ID)
		if err != nil {
			m.errorMsg = m.taskError(err)
		} else {
			m.infoMsg = fmt.Sprintf("Toggled task %d -> %t", updated.ID, updated.Done)
		}
		m.refresh()

	case "d", "delete":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if _, err := m.tasks.Delete(t.ID); err != nil {
			m.errorMsg = m.taskError(err)
		} else {
			m.infoMsg = fmt.Sprintf("Deleted task %d", t.ID)
		}
		m.refresh()

	case "s":
		if err := m.tasks.Save(); err != nil {
			m.errorMsg = "Failed to save tasks: " + errors.UserMessage(err)
			if errors.IsRetryable(err) {
				m.errorMsg += " (press s to try again)"
			}
		} else {
			m.infoMsg = "Tasks saved."
		}

	case "r":
		m.refresh()
	}

	return m, nil
}

func (m Model) handleAddingKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "enter":
		id, err := m.tasks.Add(m.input.Value())
		if err != nil {
			if strings.TrimSpace(m.input.Value()) == "" {
				m.errorMsg = "Task title cannot be empty."
			} else {
				m.errorMsg = "Could not add task: " + errors.UserMessage(err)
			}
			return m, nil
		}
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		m.infoMsg = fmt.Sprintf("Added task %d", id)
		m.refresh()
		if i := slices.IndexFunc(m.items, func(t task.Task) bool { return t.ID == id }); i >= 0 {
			m.cursor = i
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// refresh reloads the visible rows and keeps the cursor in range.
func (m *Model) refresh() {
	m.items = slices.Collect(m.tasks.List())
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
}

func (m Model) selected() (task.Task, bool) {
	if len(m.items) == 0 {
		return task.Task{}, false
	}
	return m.items[m.cursor], true
}

func (m Model) taskError(err error) string {
	if errors.Is(err, errors.ErrTaskNotFound) {
		return "No task found."
	}
	return errors.UserMessage(err)
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool { return m.quitting }

func autosaveFromEvent(e event.Event) (autosaveMsg, bool) {
	switch e := e.(type) {
	case event.StoreSavedEvent:
		if e.Reason != event.SaveAutosave {
			return autosaveMsg{}, false
		}
		return autosaveMsg{at: e.Timestamp(), count: e.Count}, true
	case event.StoreSaveFailedEvent:
		if e.Reason != event.SaveAutosave {
			return autosaveMsg{}, false
		}
		return autosaveMsg{at: e.Timestamp(), err: e.Error}, true
	}
	return autosaveMsg{}, false
}
