// Package tui is the interactive task browser started by the browse command.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/task-tracker/internal/model"
	"github.com/Makepad-fr/task-tracker/internal/tracker"
	"github.com/Makepad-fr/task-tracker/internal/ui"
)

// Service is the subset of tracker operations the browser drives.
type Service interface {
	List(status *model.Status) ([]model.Task, error)
	Add(title string, description *string) (model.Task, error)
	Update(id int, title *string, description *string) (model.Task, error)
	SetStatus(id int, status model.Status) (model.Task, error)
	Delete(id int) (tracker.DeleteResult, error)
}

// Options configure Run.
type Options struct {
	Input  io.Reader
	Output io.Writer
	Theme  string
}

// Run starts the browser and blocks until the user quits. Every change is
// saved as soon as it is made.
func Run(svc Service, opt Options) error {
	var r *lipgloss.Renderer
	if opt.Output != nil {
		r = lipgloss.NewRenderer(opt.Output)
	}
	m, err := New(svc, ui.NewTheme(opt.Theme, r))
	if err != nil {
		return err
	}

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opt.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opt.Input))
	}
	if opt.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opt.Output))
	}
	_, err = tea.NewProgram(m, progOpts...).Run()
	return err
}

type mode int

const (
	browsing mode = iota
	adding
	editing
)

var (
	statusTodo       = model.StatusTodo
	statusInProgress = model.StatusInProgress
	statusDone       = model.StatusDone

	// tab cycles through these
	filters = []*model.Status{nil, &statusTodo, &statusInProgress, &statusDone}
)

var (
	keyProgress = key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "in progress"))
	keyDone     = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "done"))
	keyDelete   = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete"))
	keyAdd      = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	keyEdit     = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	keyFilter   = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "status filter"))
	keyQuit     = key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit"))
)

func extraKeys() []key.Binding {
	return []key.Binding{keyProgress, keyDone, keyDelete, keyAdd, keyEdit, keyFilter}
}

// item adapts a task to bubbles/list.Item.
type item struct{ task model.Task }

func (i item) FilterValue() string { return i.task.Title + " " + i.task.DescriptionText() }

// single-line delegate
type delegate struct{ theme ui.Theme }

func (d delegate) Height() int                               { return 1 }
func (d delegate) Spacing() int                              { return 0 }
func (d delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d delegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	it, ok := li.(item)
	if !ok {
		return
	}
	t := d.theme
	task := it.task

	status := t.StatusStyle(task.Status).Render(fmt.Sprintf("%-15s", t.StatusText(task.Status)))
	line := fmt.Sprintf("%s %s %s", t.Muted.Render(fmt.Sprintf("#%-3d", task.ID)), status, task.Title)
	if task.Description != nil {
		line += "  " + t.Muted.Render(ui.Truncate(*task.Description, ui.DescriptionWidth))
	}

	prefix := "  "
	if index == m.Index() {
		prefix = t.Accent.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// Model is the bubbletea model behind the browser.
type Model struct {
	svc   Service
	theme ui.Theme

	list      list.Model
	filterIdx int

	mode     mode
	ti       textinput.Model
	editID   int
	inputErr string

	flash string // result of the last action
	total int
	done  int

	width, height int
}

// New loads the tasks and builds the initial model.
func New(svc Service, theme ui.Theme) (Model, error) {
	l := list.New(nil, delegate{theme: theme}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = theme.Title
	l.Styles.HelpStyle = theme.Muted
	l.Styles.PaginationStyle = theme.Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown", "f") // d marks done
	l.AdditionalShortHelpKeys = extraKeys
	l.AdditionalFullHelpKeys = extraKeys

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{
		svc:    svc,
		theme:  theme,
		list:   l,
		ti:     ti,
		width:  80,
		height: 24,
	}
	if err := m.reload(); err != nil {
		return Model{}, err
	}
	m.resize()
	return m, nil
}

// Filter is the active status filter, nil for all tasks.
func (m Model) Filter() *model.Status { return filters[m.filterIdx] }

// Flash is the message left by the last action.
func (m Model) Flash() string { return m.flash }

// Tasks are the tasks currently listed.
func (m Model) Tasks() []model.Task {
	out := make([]model.Task, 0, len(m.list.Items()))
	for _, li := range m.list.Items() {
		if it, ok := li.(item); ok {
			out = append(out, it.task)
		}
	}
	return out
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}

	if m.mode != browsing {
		return m.updateInput(msg)
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(kmsg, keyQuit):
		if m.list.FilterState() == list.FilterApplied && kmsg.String() == "esc" {
			break
		}
		return m, tea.Quit
	case key.Matches(kmsg, keyProgress):
		m.setStatus(model.StatusInProgress)
		return m, nil
	case key.Matches(kmsg, keyDone):
		m.setStatus(model.StatusDone)
		return m, nil
	case key.Matches(kmsg, keyDelete):
		m.delete()
		return m, nil
	case key.Matches(kmsg, keyAdd):
		return m, m.startInput(adding, 0, "", "New task title...")
	case key.Matches(kmsg, keyEdit):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.startInput(editing, task.ID, task.Title, "Edit task title...")
	case key.Matches(kmsg, keyFilter):
		m.filterIdx = (m.filterIdx + 1) % len(filters)
		m.list.ResetSelected()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter":
			title := strings.TrimSpace(m.ti.Value())
			if title == "" {
				m.inputErr = "Title cannot be empty"
				return *m, nil
			}
			m.submit(title)
			m.stopInput()
			return *m, nil
		case "esc":
			m.stopInput()
			return *m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return *m, cmd
}

func (m *Model) startInput(md mode, id int, value, placeholder string) tea.Cmd {
	m.mode = md
	m.editID = id
	m.inputErr = ""
	m.ti.Placeholder = placeholder
	m.ti.SetValue(value)
	m.ti.CursorEnd()
	m.resize()
	return m.ti.Focus()
}

func (m *Model) stopInput() {
	m.mode = browsing
	m.editID = 0
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *Model) submit(title string) {
	switch m.mode {
	case adding:
		task, err := m.svc.Add(title, nil)
		if m.report(err) {
			return
		}
		m.flash = fmt.Sprintf("Task added successfully (ID: %d)", task.ID)
	case editing:
		cur, ok := m.byID(m.editID)
		if !ok {
			return
		}
		// keep the description; Update always overwrites it
		if _, err := m.svc.Update(cur.ID, &title, cur.Description); m.report(err) {
			return
		}
		m.flash = fmt.Sprintf("Task %d updated successfully", cur.ID)
	}
	m.refresh()
}

func (m *Model) setStatus(s model.Status) {
	task, ok := m.selected()
	if !ok {
		return
	}
	if _, err := m.svc.SetStatus(task.ID, s); m.report(err) {
		return
	}
	m.flash = fmt.Sprintf("Task %d marked as %s", task.ID, s)
	m.refresh()
}

func (m *Model) delete() {
	task, ok := m.selected()
	if !ok {
		return
	}
	res, err := m.svc.Delete(task.ID)
	if m.report(err) {
		return
	}
	m.flash = fmt.Sprintf("Task %d deleted successfully", task.ID)
	if res.CounterReset {
		m.flash += " (ID counter reset)"
	}
	m.refresh()
}

// report shows err in the flash line and reports whether there was one.
func (m *Model) report(err error) bool {
	if err == nil {
		return false
	}
	m.flash = "Error: " + err.Error()
	return true
}

func (m *Model) refresh() {
	m.report(m.reload())
}

// reload re-reads the tasks for the active filter and keeps the cursor in
// range.
func (m *Model) reload() error {
	all, err := m.svc.List(nil)
	if err != nil {
		return err
	}
	m.total, m.done = len(all), 0
	for _, t := range all {
		if t.Status == model.StatusDone {
			m.done++
		}
	}

	tasks := all
	if f := m.Filter(); f != nil {
		if tasks, err = m.svc.List(f); err != nil {
			return err
		}
	}

	idx := m.list.Index()
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, item{task: t})
	}
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
	m.list.Title = m.header()
	return nil
}

func (m Model) header() string {
	t := m.theme
	return fmt.Sprintf("%s   %s %d/%d done",
		ui.ListHeader(m.Filter()),
		ui.ProgressBar(t, m.done, m.total, 10), m.done, m.total)
}

func (m Model) selected() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func (m Model) byID(id int) (model.Task, bool) {
	for _, t := range m.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (m *Model) resize() {
	h := m.height - 5
	if m.mode != browsing {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.list.SetSize(w, h)
}

func (m Model) View() string {
	t := m.theme
	content := m.list.View()

	if m.mode != browsing {
		title := "Add task"
		if m.mode == editing {
			title = fmt.Sprintf("Edit task %d", m.editID)
		}
		if m.inputErr != "" {
			title += ": " + t.Error.Render(m.inputErr)
		}
		box := t.Frame.Render(title + "\n" + m.ti.View())
		content += "\n" + box
	}
	if m.flash != "" {
		content += "\n" + t.Muted.Render(m.flash)
	}
	return ui.PanelString(t, content)
}
