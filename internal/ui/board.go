package ui

import (
	"calendo/internal/calendar"
	"calendo/internal/todo"
)

// board is the shared view state the controller pushes into. Model is
// copied on every update, so it holds a pointer to one board.
type board struct {
	agg   *calendar.Aggregator
	month calendar.Month
	grid  calendar.Grid
	err   error

	date  todo.Date
	todos []todo.Todo
}

func newBoard(agg *calendar.Aggregator, month calendar.Month) *board {
	b := &board{agg: agg, month: month}
	b.rebuild()
	return b
}

func (b *board) ShowTodosForDate(d todo.Date, todos []todo.Todo) {
	b.date = d
	b.todos = todos
}

func (b *board) ShowTodos(todos []todo.Todo) {
	b.date = todo.Date{}
	b.todos = todos
}

func (b *board) RefreshCalendar() {
	b.rebuild()
}

func (b *board) showMonth(m calendar.Month) {
	if m == b.month && b.err == nil && len(b.grid.Days) > 0 {
		return
	}
	b.month = m
	b.rebuild()
}

func (b *board) rebuild() {
	g, err := b.agg.Build(b.month)
	if err != nil {
		b.err = err
		return
	}
	b.grid = g
	b.err = nil
}
