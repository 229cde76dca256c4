// Package calendar builds the month grid: which days carry todos and the
// highest priority among them.
package calendar

import (
	"fmt"

	"calendo/internal/todo"
)

// Source is the slice of the store the grid needs.
type Source interface {
	ExistsByDate(d todo.Date) (bool, error)
	HighestPriorityForDate(d todo.Date) (todo.Priority, bool, error)
}

// Day is one cell of the grid. Indicator is zero when HasTodos is false.
type Day struct {
	Date      todo.Date
	HasTodos  bool
	Indicator todo.Priority
}

type Grid struct {
	Month  Month
	Offset int
	Days   []Day
}

type Aggregator struct {
	src Source
}

func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// Build queries every day of m. The priority query is skipped for empty days.
func (a *Aggregator) Build(m Month) (Grid, error) {
	n := DaysInMonth(m)
	g := Grid{Month: m, Offset: FirstDayOffset(m), Days: make([]Day, 0, n)}
	for i := 1; i <= n; i++ {
		day := Day{Date: todo.NewDate(m.Year, m.Month, i)}
		exists, err := a.src.ExistsByDate(day.Date)
		if err != nil {
			return Grid{}, fmt.Errorf("calendar %s: %w", day.Date, err)
		}
		if exists {
			p, ok, err := a.src.HighestPriorityForDate(day.Date)
			if err != nil {
				return Grid{}, fmt.Errorf("calendar %s: %w", day.Date, err)
			}
			day.HasTodos = true
			if ok {
				day.Indicator = p
			}
		}
		g.Days = append(g.Days, day)
	}
	return g, nil
}

// Day returns the cell for d, or false when d is outside the grid's month.
func (g Grid) Day(d todo.Date) (Day, bool) {
	if !g.Month.Contains(d) || d.Day < 1 || d.Day > len(g.Days) {
		return Day{}, false
	}
	return g.Days[d.Day-1], true
}

// Weeks lays the days out in Sunday-first rows of seven. Blank cells are
// nil.
func (g Grid) Weeks() [][]*Day {
	var weeks [][]*Day
	week := make([]*Day, 7)
	col := g.Offset
	for i := range g.Days {
		week[col] = &g.Days[i]
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = make([]*Day, 7)
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}
