package ui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"calendo/internal/calendar"
	"calendo/internal/config"
	"calendo/internal/controller"
	"calendo/internal/storage"
	"calendo/internal/todo"
)

var mar5 = todo.NewDate(2024, 3, 5)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func newTestModel(t *testing.T, seed ...todo.Todo) (Model, *storage.Store) {
	t.Helper()
	store, err := storage.Open(storage.Options{Path: filepath.Join(t.TempDir(), "ui.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	for _, td := range seed {
		if _, err := store.Insert(td); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	cfg := config.Config{DefaultFilter: "all", Keys: config.DefaultKeymap()}
	return newModel(controller.New(store), store, cfg, mar5), store
}

func TestStartsOnToday(t *testing.T) {
	m, _ := newTestModel(t, todo.Todo{Title: "Dentist", Date: mar5, Priority: todo.High})
	if d, ok := m.ctrl.CurrentDate(); !ok || d != mar5 {
		t.Fatalf("expected today selected, got %v %v", d, ok)
	}
	if len(m.board.todos) != 1 || m.board.todos[0].Title != "Dentist" {
		t.Fatalf("unexpected list: %+v", m.board.todos)
	}
	day, _ := m.board.grid.Day(mar5)
	if !day.HasTodos || day.Indicator != todo.High {
		t.Fatalf("calendar not built: %+v", day)
	}
	if !strings.Contains(m.View(), "Dentist") {
		t.Fatalf("view missing todo:\n%s", m.View())
	}
}

func TestAddTodoThroughForm(t *testing.T) {
	m, store := newTestModel(t)

	m = press(m, runes("a"))
	if m.form == nil {
		t.Fatalf("expected form to open")
	}
	m = press(m, runes("Buy milk"), enter, runes("two litres"), enter, enter)
	if m.form.currentLabel() != formFields()[3] {
		t.Fatalf("expected priority field, got %q", m.form.currentLabel())
	}
	m = press(m, enter)
	if m.form != nil {
		t.Fatalf("form still open: %s", m.status)
	}

	got, err := store.FindByDate(mar5)
	if err != nil || len(got) != 1 {
		t.Fatalf("store: %+v %v", got, err)
	}
	if got[0].Title != "Buy milk" || got[0].Description != "two litres" || got[0].Priority != todo.Medium {
		t.Fatalf("unexpected todo: %+v", got[0])
	}
	if len(m.board.todos) != 1 {
		t.Fatalf("list not refreshed: %+v", m.board.todos)
	}
	if day, _ := m.board.grid.Day(mar5); !day.HasTodos {
		t.Fatalf("calendar not refreshed")
	}
}

func TestFormRejectsInvalidInput(t *testing.T) {
	m, store := newTestModel(t)
	m = press(m, runes("a"), enter, enter, enter, enter)
	if m.form == nil || !strings.Contains(m.status, "title") {
		t.Fatalf("expected title error, status %q", m.status)
	}
	m = press(m, esc)
	if m.form != nil {
		t.Fatalf("esc should close form")
	}
	if all, _ := store.FindByFilter(todo.FilterOptions{}); len(all) != 0 {
		t.Fatalf("nothing should be saved: %+v", all)
	}
}

func TestToggleIsOptimisticAndPersisted(t *testing.T) {
	m, store := newTestModel(t, todo.Todo{Title: "A", Date: mar5, Priority: todo.Low})
	m = press(m, tab, space)
	if !m.board.todos[0].Completed {
		t.Fatalf("row not flipped")
	}
	got, _ := store.FindByID(m.board.todos[0].ID)
	if !got.Completed {
		t.Fatalf("completion not persisted")
	}
	m = press(m, space)
	got, _ = store.FindByID(m.board.todos[0].ID)
	if got.Completed || m.board.todos[0].Completed {
		t.Fatalf("second toggle should clear the flag")
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	m, store := newTestModel(t,
		todo.Todo{Title: "A", Date: mar5, Priority: todo.Low},
		todo.Todo{Title: "B", Date: mar5, Priority: todo.High},
	)
	m = press(m, tab, runes("d"))
	if !m.confirmDel || m.pendingDel.Title != "B" {
		t.Fatalf("expected confirmation for B, got %+v", m.pendingDel)
	}
	m = press(m, runes("n"))
	if all, _ := store.FindByDate(mar5); len(all) != 2 {
		t.Fatalf("cancel should keep both todos")
	}

	m = press(m, runes("d"), runes("y"))
	if len(m.board.todos) != 1 || m.board.todos[0].Title != "A" {
		t.Fatalf("unexpected list after delete: %+v", m.board.todos)
	}
	day, _ := m.board.grid.Day(mar5)
	if day.Indicator != todo.Low {
		t.Fatalf("indicator not refreshed: %+v", day)
	}
}

func TestSearchEntersFilterMode(t *testing.T) {
	m, _ := newTestModel(t,
		todo.Todo{Title: "Road trip", Date: mar5.AddDays(3), Priority: todo.Medium},
		todo.Todo{Title: "Groceries", Date: mar5, Priority: todo.High},
	)
	m = press(m, runes("/"), runes("trip"), enter)
	fm, ok := m.ctrl.Mode().(controller.FilterMode)
	if !ok || fm.Filter.Keyword != "trip" {
		t.Fatalf("expected filter mode, got %v", m.ctrl.Mode())
	}
	if len(m.board.todos) != 1 || m.board.todos[0].Title != "Road trip" {
		t.Fatalf("unexpected results: %+v", m.board.todos)
	}

	m = press(m, runes("/"), runes("from:tomorrow"), enter)
	if !strings.Contains(m.status, "search invalid") {
		t.Fatalf("expected parse error, got %q", m.status)
	}
	m = press(m, esc)
	if m.mode != modeBrowse {
		t.Fatalf("esc should leave search")
	}
}

func TestCycleStatusNarrowsSearch(t *testing.T) {
	m, _ := newTestModel(t,
		todo.Todo{Title: "trip done", Date: mar5, Priority: todo.Medium, Completed: true},
		todo.Todo{Title: "trip open", Date: mar5, Priority: todo.Medium},
		todo.Todo{Title: "other", Date: mar5, Priority: todo.Medium},
	)
	m = press(m, runes("/"), runes("trip"), enter)
	if len(m.board.todos) != 2 {
		t.Fatalf("expected 2 results, got %d", len(m.board.todos))
	}
	m = press(m, runes("f"))
	if m.filterDone != "done" || len(m.board.todos) != 1 || m.board.todos[0].Title != "trip done" {
		t.Fatalf("done filter: %s %+v", m.filterDone, m.board.todos)
	}
	m = press(m, runes("f"))
	if m.filterDone != "open" || len(m.board.todos) != 1 || m.board.todos[0].Title != "trip open" {
		t.Fatalf("open filter: %s %+v", m.filterDone, m.board.todos)
	}
	m = press(m, runes("f"))
	if m.filterDone != "all" || len(m.board.todos) != 2 {
		t.Fatalf("all filter: %s %+v", m.filterDone, m.board.todos)
	}
	m = press(m, runes("A"))
	if len(m.board.todos) != 3 {
		t.Fatalf("show all: %+v", m.board.todos)
	}
}

func TestCalendarNavigation(t *testing.T) {
	m, _ := newTestModel(t, todo.Todo{Title: "April", Date: todo.NewDate(2024, 4, 12), Priority: todo.Low})

	m = press(m, runes("l"), runes("j"))
	if m.day != mar5.AddDays(8) {
		t.Fatalf("cursor at %s", m.day)
	}
	m = press(m, runes("]"))
	if m.day != todo.NewDate(2024, 4, 13) || m.board.month != (calendar.Month{Year: 2024, Month: time.April}) {
		t.Fatalf("next month: day %s month %v", m.day, m.board.month)
	}
	m = press(m, runes("h"), enter)
	if d, _ := m.ctrl.CurrentDate(); d != todo.NewDate(2024, 4, 12) {
		t.Fatalf("selected %s", d)
	}
	if len(m.board.todos) != 1 {
		t.Fatalf("expected the april todo: %+v", m.board.todos)
	}
	m = press(m, runes("t"))
	if m.day != mar5 || m.board.month != calendar.MonthOf(mar5) {
		t.Fatalf("today: %s %v", m.day, m.board.month)
	}
}

func TestMonthMoveClampsDay(t *testing.T) {
	m, _ := newTestModel(t)
	m.day = todo.NewDate(2024, 1, 31)
	m = press(m, runes("]"))
	if m.day != todo.NewDate(2024, 2, 29) {
		t.Fatalf("expected leap day, got %s", m.day)
	}
	m = press(m, runes("["), runes("["))
	if m.day != todo.NewDate(2023, 12, 29) {
		t.Fatalf("expected dec 29, got %s", m.day)
	}
}

func TestEditExistingTodo(t *testing.T) {
	m, store := newTestModel(t, todo.Todo{Title: "Draft", Date: mar5, Priority: todo.Low})
	m = press(m, tab, runes("e"))
	if m.form == nil || m.form.todoID == 0 {
		t.Fatalf("expected edit form for a persisted todo")
	}
	m = press(m, runes("!"), tab, tab, tab)
	m.input.SetValue("high")
	m = press(m, enter)
	if m.form != nil {
		t.Fatalf("form still open: %s", m.status)
	}
	got, _ := store.FindByID(m.board.todos[0].ID)
	if got.Title != "Draft!" || got.Priority != todo.High {
		t.Fatalf("edit not saved: %+v", got)
	}
}

func TestRenderCalendar(t *testing.T) {
	src := fakeDays{mar5: todo.High}
	g, err := calendar.NewAggregator(src).Build(calendar.MonthOf(mar5))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	out := RenderCalendar(g, todo.Date{}, todo.Date{})
	lines := strings.Split(out, "\n")
	if lines[0] != "March 2024" {
		t.Fatalf("title: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Su  Mo  Tu") {
		t.Fatalf("header: %q", lines[1])
	}
	if !strings.Contains(out, " 5"+indicatorMark) {
		t.Fatalf("missing indicator on the 5th:\n%s", out)
	}
	if strings.Contains(out, " 6"+indicatorMark) {
		t.Fatalf("unexpected indicator on the 6th:\n%s", out)
	}
}

type fakeDays map[todo.Date]todo.Priority

func (f fakeDays) ExistsByDate(d todo.Date) (bool, error) {
	_, ok := f[d]
	return ok, nil
}

func (f fakeDays) HighestPriorityForDate(d todo.Date) (todo.Priority, bool, error) {
	p, ok := f[d]
	return p, ok, nil
}
