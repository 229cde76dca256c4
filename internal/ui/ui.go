package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"calendo/internal/calendar"
	"calendo/internal/config"
	"calendo/internal/controller"
	"calendo/internal/filter"
	"calendo/internal/todo"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeForm
)

type focus int

const (
	focusCalendar focus = iota
	focusList
)

var statusCycle = []string{"all", "done", "open"}

type Model struct {
	ctrl       *controller.Controller
	board      *board
	cfg        config.Config
	today      todo.Date
	day        todo.Date
	cursor     int
	focus      focus
	mode       mode
	input      textinput.Model
	status     string
	filterDone string
	confirmDel bool
	pendingDel *todo.Todo
	form       *formState
}

// Run registers the TUI as both controller views and blocks until quit.
func Run(ctrl *controller.Controller, src calendar.Source, cfg config.Config, status string) error {
	m := NewModel(ctrl, src, cfg)
	if status != "" {
		m.status = status
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func NewModel(ctrl *controller.Controller, src calendar.Source, cfg config.Config) Model {
	return newModel(ctrl, src, cfg, todo.Today())
}

func newModel(ctrl *controller.Controller, src calendar.Source, cfg config.Config, today todo.Date) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	b := newBoard(calendar.NewAggregator(src), calendar.MonthOf(today))
	ctrl.SetListView(b)
	ctrl.SetCalendarView(b)

	m := Model{
		ctrl:       ctrl,
		board:      b,
		cfg:        cfg,
		today:      today,
		day:        today,
		input:      ti,
		mode:       modeBrowse,
		filterDone: normalizeStatus(cfg.DefaultFilter),
		status:     fmt.Sprintf("Press '%s' to add, enter to open a day, '%s' to search.", cfg.Keys.Add, cfg.Keys.Search),
	}
	if err := ctrl.OnDateSelected(today); err != nil {
		m.status = fmt.Sprintf("load failed: %v", err)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateFormMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode == modeSearch {
			return m.updateSearchMode(msg.String(), msg)
		}
		return m.updateBrowseMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
	}
	return m, nil
}

func (m Model) updateBrowseMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Focus:
		if m.focus == focusCalendar {
			m.focus = focusList
		} else {
			m.focus = focusCalendar
		}
		return m, nil
	case k.PrevMonth:
		return m.moveMonth(-1), nil
	case k.NextMonth:
		return m.moveMonth(1), nil
	case k.Today:
		m.day = m.today
		m.board.showMonth(calendar.MonthOf(m.day))
		return m.selectDay(), nil
	case k.Add:
		return m.startForm(todo.Todo{Date: m.day, Priority: todo.Medium}), nil
	case k.Search:
		m.mode = modeSearch
		m.input.SetValue("")
		m.input.Placeholder = "trip from:2024-03-01 to:2024-03-31 p:high status:open"
		m.input.Focus()
		m.status = "Search: enter to apply, esc to cancel"
		return m, nil
	case k.CycleStatus:
		return m.cycleStatus(), nil
	case k.ShowAll:
		m.filterDone = "all"
		return m.applyFilter(todo.FilterOptions{}), nil
	}

	if m.focus == focusCalendar {
		return m.updateCalendarKeys(key), nil
	}
	return m.updateListKeys(key)
}

func (m Model) updateCalendarKeys(key string) Model {
	k := m.cfg.Keys
	switch key {
	case k.Left, "left":
		return m.moveDay(-1)
	case k.Right, "right":
		return m.moveDay(1)
	case k.Up, "up":
		return m.moveDay(-7)
	case k.Down, "down":
		return m.moveDay(7)
	case k.Confirm, "enter":
		return m.selectDay()
	}
	return m
}

func (m Model) updateListKeys(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	todos := m.board.todos
	switch key {
	case k.Down, "down":
		m.cursor = clampCursor(m.cursor+1, len(todos))
	case k.Up, "up":
		m.cursor = clampCursor(m.cursor-1, len(todos))
	case k.Toggle:
		if len(todos) == 0 {
			return m, nil
		}
		return m.toggleSelected(), nil
	case k.Delete:
		if len(todos) == 0 {
			return m, nil
		}
		t := todos[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case k.Edit, k.Confirm, "enter":
		if len(todos) == 0 {
			m.status = "No todos to edit"
			return m, nil
		}
		return m.startForm(todos[m.cursor]), nil
	}
	return m, nil
}

func (m Model) moveDay(n int) Model {
	m.day = m.day.AddDays(n)
	m.board.showMonth(calendar.MonthOf(m.day))
	return m
}

// moveMonth keeps the day of month, clamped to the target month's length.
func (m Model) moveMonth(n int) Model {
	target := calendar.MonthOf(m.day)
	for ; n < 0; n++ {
		target = target.Prev()
	}
	for ; n > 0; n-- {
		target = target.Next()
	}
	day := min(m.day.Day, calendar.DaysInMonth(target))
	m.day = todo.NewDate(target.Year, target.Month, day)
	m.board.showMonth(target)
	return m
}

func (m Model) selectDay() Model {
	if err := m.ctrl.OnDateSelected(m.day); err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return m
	}
	m.cursor = 0
	m.status = fmt.Sprintf("%d todo(s) on %s", len(m.board.todos), m.day)
	return m
}

func (m Model) applyFilter(f todo.FilterOptions) Model {
	if err := m.ctrl.ApplyFilter(f); err != nil {
		m.status = fmt.Sprintf("search failed: %v", err)
		return m
	}
	m.cursor = 0
	m.focus = focusList
	m.status = fmt.Sprintf("%d todo(s) match %s", len(m.board.todos), f.String())
	return m
}

// cycleStatus steps all -> done -> open, narrowing the active search or
// starting a new one.
func (m Model) cycleStatus() Model {
	idx := 0
	for i, s := range statusCycle {
		if s == m.filterDone {
			idx = i
		}
	}
	m.filterDone = statusCycle[wrapIndex(idx+1, len(statusCycle))]

	var f todo.FilterOptions
	if fm, ok := m.ctrl.Mode().(controller.FilterMode); ok {
		f = fm.Filter
	}
	f.Completed, _ = filter.ParseStatus(m.filterDone)
	return m.applyFilter(f)
}

func (m Model) toggleSelected() Model {
	i := m.cursor
	t := m.board.todos[i]
	// The row flips before the store write and flips back on failure.
	m.board.todos[i].Completed = !t.Completed
	if _, err := m.ctrl.UpdateTodoCompleted(t, !t.Completed); err != nil {
		m.board.todos[i].Completed = t.Completed
		m.status = fmt.Sprintf("toggle failed: %v", err)
		return m
	}
	m.status = fmt.Sprintf("Marked \"%s\" %s", t.Title, humanDone(!t.Completed))
	return m
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeBrowse
		m.input.SetValue("")
		m.input.Blur()
		m.status = "Search cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		f, err := filter.ParseQuery(m.input.Value())
		if err != nil {
			m.status = fmt.Sprintf("search invalid: %v", err)
			return m, nil
		}
		if f.Completed == nil {
			f.Completed, _ = filter.ParseStatus(m.filterDone)
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m.applyFilter(f), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) startForm(t todo.Todo) Model {
	m.form = newForm(t)
	m.mode = modeForm
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.input.Focus()
	if t.Persisted() {
		m.status = "Edit todo: tab to move, enter to save/next, esc to cancel"
	} else {
		m.status = "New todo: tab to move, enter to save/next, esc to cancel"
	}
	return m
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeBrowse
		m.input.Blur()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "down":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index+1, len(formFields()))
		m.loadFormField()
		return m, nil
	case "shift+tab", "up":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index-1, len(formFields()))
		m.loadFormField()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(formFields())-1 {
			return m.saveForm(), nil
		}
		m.form.index++
		m.loadFormField()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) loadFormField() {
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.status = fmt.Sprintf("Editing %s (field %d of %d)", m.form.currentLabel(), m.form.index+1, len(formFields()))
}

func (m Model) saveForm() Model {
	t, err := m.form.build()
	if err != nil {
		m.status = fmt.Sprintf("invalid: %v", err)
		return m
	}
	saved, err := m.ctrl.SaveTodo(t)
	if err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
		return m
	}
	m.form = nil
	m.mode = modeBrowse
	m.input.Blur()
	m.focus = focusList
	if d, ok := m.ctrl.CurrentDate(); ok {
		m.day = d
		m.board.showMonth(calendar.MonthOf(d))
	}
	m.cursor = 0
	for i, t := range m.board.todos {
		if t.ID == saved.ID {
			m.cursor = i
			break
		}
	}
	m.status = fmt.Sprintf("Saved \"%s\"", saved.Title)
	return m
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		if err := m.ctrl.DeleteTodo(*m.pendingDel); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else {
			m.cursor = clampCursor(m.cursor, len(m.board.todos))
			m.status = fmt.Sprintf("Deleted \"%s\"", m.pendingDel.Title)
		}
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	var b strings.Builder

	cal := RenderCalendar(m.board.grid, m.day, m.today)
	if m.board.err != nil {
		cal = fmt.Sprintf("calendar unavailable:\n%v", m.board.err)
	}
	calPanel, listPanel := panelStyle, panelStyle
	if m.focus == focusCalendar {
		calPanel = focusedPanelStyle
	} else {
		listPanel = focusedPanelStyle
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		calPanel.Render(cal),
		listPanel.Render(m.renderList()),
	))
	b.WriteString("\n")

	switch {
	case m.form != nil:
		b.WriteString(m.form.render())
		b.WriteString("Field: " + m.form.currentLabel() + "\n")
		b.WriteString(m.input.View())
	case m.mode == modeSearch:
		b.WriteString("Search: " + m.input.View())
	default:
		b.WriteString(m.renderDetail())
	}

	b.WriteString("\n\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))
	return b.String()
}

func (m Model) heading() string {
	switch md := m.ctrl.Mode().(type) {
	case controller.DateMode:
		return md.Date.Time().Format("Monday, January 2 2006")
	case controller.FilterMode:
		return "Search: " + md.Filter.String()
	default:
		return "Todos"
	}
}

func (m Model) renderList() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.heading()))
	b.WriteString("\n")
	if len(m.board.todos) == 0 {
		b.WriteString(fmt.Sprintf("Nothing here. Press '%s' to add one.", m.cfg.Keys.Add))
		return b.String()
	}
	_, filtering := m.ctrl.Mode().(controller.FilterMode)
	for i, t := range m.board.todos {
		cursor := " "
		if m.cursor == i && m.focus == focusList {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}
		title := t.Title
		if t.Completed {
			title = doneStyle.Render(title)
		}
		line := fmt.Sprintf("%s %s %s %s", cursor, checkbox, PriorityStyle(t.Priority).Render(indicatorMark), title)
		if filtering {
			line += "  " + statusStyle.Render(t.Date.String())
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderDetail() string {
	if len(m.board.todos) == 0 || m.focus != focusList {
		return ""
	}
	t := m.board.todos[clampCursor(m.cursor, len(m.board.todos))]
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Title       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Date        : %s\n", t.Date))
	b.WriteString(fmt.Sprintf("Priority    : %s\n", PriorityStyle(t.Priority).Render(t.Priority.String())))
	b.WriteString(fmt.Sprintf("Status      : %s\n", humanDone(t.Completed)))
	b.WriteString(fmt.Sprintf("Description : %s", emptyPlaceholder(t.Description)))
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s/%s/%s move • %s day • %s/%s month • %s today • %s focus • %s add • %s edit • %s toggle • %s delete • %s search • %s status • %s all • %s quit",
		k.Left, k.Down, k.Up, k.Right, k.Confirm, k.PrevMonth, k.NextMonth, k.Today, k.Focus,
		k.Add, k.Edit, keyLabel(k.Toggle), k.Delete, k.Search, k.CycleStatus, k.ShowAll, k.Quit)
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func normalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range statusCycle {
		if v == s {
			return s
		}
	}
	return "all"
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
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

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "open"
}
