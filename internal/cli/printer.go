package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"calendo/internal/todo"
	"calendo/internal/ui"
)

var (
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = cellStyle.Bold(true)
)

// printer is the list view for one-shot commands. It writes each update
// as a table.
type printer struct {
	w io.Writer
}

func (p printer) ShowTodosForDate(d todo.Date, todos []todo.Todo) {
	fmt.Fprintf(p.w, "%s (%d)\n", d.Time().Format("Monday, January 2 2006"), len(todos))
	p.table(todos)
}

func (p printer) ShowTodos(todos []todo.Todo) {
	fmt.Fprintf(p.w, "%d todo(s)\n", len(todos))
	p.table(todos)
}

func (p printer) table(todos []todo.Todo) {
	if len(todos) == 0 {
		return
	}
	fmt.Fprintln(p.w, renderTable(todos))
}

func renderTable(todos []todo.Todo) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DATE", "PRIORITY", "DONE", "TITLE")
	for _, td := range todos {
		done := " "
		if td.Completed {
			done = "x"
		}
		t.Row(strconv.FormatInt(td.ID, 10), td.Date.String(), td.Priority.String(), done, td.Title)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if col == 2 && row >= 0 && row < len(todos) {
			return ui.PriorityStyle(todos[row].Priority).Padding(0, 1)
		}
		return cellStyle
	})
	return t.String()
}
