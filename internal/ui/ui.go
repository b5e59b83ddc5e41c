package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"moku/internal/config"
	"moku/internal/storage"
)

type mode int

const (
	modeList mode = iota
	modeAddTitle
	modeAddDescription
	modeEditTitle
	modeEditDescription
)

// Store is the slice of the storage API the editor needs. Tests inject an
// in-memory implementation.
type Store interface {
	Save(tasks []storage.Task) error
	NextID() int
}

type Model struct {
	store  Store
	cfg    config.Config
	tasks  []storage.Task
	cursor int
	mode   mode
	input  textinput.Model
	status string
	// pendingID is the id of the task created by the add flow while its
	// description step is still open.
	pendingID int
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("7"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	descStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func Run(st *storage.Store, cfg config.Config) error {
	tasks, err := st.Load()
	if err != nil {
		if !errors.Is(err, storage.ErrCorrupt) {
			return err
		}
		log.Warn("task file is corrupt, starting with an empty list", "path", st.Path())
		tasks = nil
	}

	program := tea.NewProgram(New(st, cfg, tasks))
	_, err = program.Run()
	return err
}

func New(store Store, cfg config.Config, tasks []storage.Task) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		store:  store,
		cfg:    cfg,
		tasks:  tasks,
		cursor: clampCursor(0, len(tasks)),
		mode:   modeList,
		input:  ti,
		status: "Press 'a' to add, space to toggle, 'e'/'d' to edit.",
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeList {
			return m.updateListMode(msg.String())
		}
		return m.updateEntryMode(msg.String(), msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		m = m.save("")
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.tasks))
		}
	case m.cfg.Keys.Toggle:
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.tasks[m.cursor].Completed = !m.tasks[m.cursor].Completed
		m = m.save("Toggled task")
	case m.cfg.Keys.Add:
		m.mode = modeAddTitle
		m.input.SetValue("")
		m.input.Placeholder = "Task title"
		m.input.Focus()
		m.status = "New task: type a title and press Enter"
	case m.cfg.Keys.EditTitle:
		if len(m.tasks) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		m.mode = modeEditTitle
		m.input.SetValue(m.tasks[m.cursor].Title)
		m.input.Placeholder = "Task title"
		m.input.Focus()
		m.status = "Edit title: Enter to save, Esc to cancel"
	case m.cfg.Keys.EditDesc:
		if len(m.tasks) == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		m.mode = modeEditDescription
		m.input.SetValue(m.tasks[m.cursor].Description)
		m.input.Placeholder = "Description"
		m.input.Focus()
		m.status = "Edit description: Enter to save, Esc to cancel"
	case m.cfg.Keys.Delete:
		if len(m.tasks) == 0 {
			return m, nil
		}
		title := m.tasks[m.cursor].Title
		m.tasks = append(m.tasks[:m.cursor], m.tasks[m.cursor+1:]...)
		m.cursor = clampCursor(m.cursor, len(m.tasks))
		m = m.save(fmt.Sprintf("Deleted %q", title))
	}
	return m, nil
}

func (m Model) updateEntryMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		return m.cancelEntry(), nil
	case m.cfg.Keys.Confirm, "enter":
		return m.confirmEntry(), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) confirmEntry() Model {
	value := strings.TrimSpace(m.input.Value())
	switch m.mode {
	case modeAddTitle:
		if value == "" {
			return m.cancelEntry()
		}
		m.tasks = append(m.tasks, storage.Task{ID: m.store.NextID(), Title: value})
		m.pendingID = m.tasks[len(m.tasks)-1].ID
		m.mode = modeAddDescription
		m.input.SetValue("")
		m.input.Placeholder = "Description (optional)"
		m.status = "Describe the task, Enter to save, Esc to skip"
		return m
	case modeAddDescription:
		return m.finishAdd(value)
	case modeEditTitle:
		if value == "" {
			return m.leaveEntry("Title cannot be empty, edit discarded")
		}
		m.tasks[m.cursor].Title = value
		m = m.save("Title saved")
		return m.leaveEntry("")
	case modeEditDescription:
		m.tasks[m.cursor].Description = value
		m = m.save("Description saved")
		return m.leaveEntry("")
	}
	return m
}

func (m Model) cancelEntry() Model {
	switch m.mode {
	case modeAddDescription:
		// The task already exists; skipping just leaves its description empty.
		return m.finishAdd("")
	case modeAddTitle:
		return m.leaveEntry("Cancelled, no task added")
	default:
		return m.leaveEntry("Edit cancelled")
	}
}

func (m Model) finishAdd(description string) Model {
	for i := range m.tasks {
		if m.tasks[i].ID == m.pendingID {
			m.tasks[i].Description = description
			m.cursor = clampCursor(i, len(m.tasks))
			break
		}
	}
	m.pendingID = 0
	m = m.save("Added task")
	return m.leaveEntry("")
}

// leaveEntry returns to list mode. An empty status keeps whatever the last
// operation set (save errors included).
func (m Model) leaveEntry(status string) Model {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
	if status != "" {
		m.status = status
	}
	return m
}

// save persists the full list after every mutation. A failure is surfaced on
// the status line and never blocks the editor; memory stays authoritative
// until the next successful save.
func (m Model) save(okStatus string) Model {
	if err := m.store.Save(m.tasks); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m
	}
	if okStatus != "" {
		m.status = okStatus
	}
	return m
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("moku — task tracker"))
	b.WriteString("\n\n")

	if m.mode != modeList {
		b.WriteString(promptStyle.Render(m.entryPrompt()))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	if len(m.tasks) == 0 {
		b.WriteString(helpStyle.Render("No tasks yet. Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderTaskList() string {
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		line := fmt.Sprintf("%s %s %d %s", cursor, checkbox, t.ID, t.Title)
		switch {
		case m.cursor == i && m.mode == modeList:
			line = selectedStyle.Render(line)
		case t.Completed:
			line = doneStyle.Render(line)
		}
		if t.Description != "" {
			line += descStyle.Render(" - " + t.Description)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) entryPrompt() string {
	switch m.mode {
	case modeAddTitle:
		return "New task title (Enter to confirm, Esc to cancel):"
	case modeAddDescription:
		return "Description for the new task (Enter to save, Esc to skip):"
	case modeEditTitle:
		return "New title (Enter to save, Esc to cancel):"
	case modeEditDescription:
		return "New description (Enter to save, Esc to cancel):"
	}
	return ""
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s edit title • %s edit desc • %s delete • %s quit",
		k.Up, k.Down, k.Add, humanKey(k.Toggle), k.EditTitle, k.EditDesc, k.Delete, k.Quit)
}

func humanKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
