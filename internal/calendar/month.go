package calendar

import (
	"fmt"
	"strings"
	"time"

	"calendo/internal/todo"
)

const MonthLayout = "2006-01"

// Month identifies one page of the calendar.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(d todo.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) First() todo.Date {
	return todo.NewDate(m.Year, m.Month, 1)
}

func (m Month) Next() Month {
	return MonthOf(todo.NewDate(m.Year, m.Month+1, 1))
}

func (m Month) Prev() Month {
	return MonthOf(todo.NewDate(m.Year, m.Month-1, 1))
}

func (m Month) Contains(d todo.Date) bool {
	return d.Year == m.Year && d.Month == m.Month
}

func (m Month) String() string {
	return m.First().Time().Format(MonthLayout)
}

// Title is the heading shown above a grid, e.g. "March 2024".
func (m Month) Title() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// FirstDayOffset is the number of blank cells before day 1 in a
// Sunday-first week.
func FirstDayOffset(m Month) int {
	return int(m.First().Weekday())
}

// DaysInMonth follows the Gregorian leap year rules.
func DaysInMonth(m Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
