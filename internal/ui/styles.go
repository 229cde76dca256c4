package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"calendo/internal/calendar"
	"calendo/internal/todo"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	sundayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d16d7a"))
	saturdayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5f9fb0"))
	todayStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	focusedPanelStyle = panelStyle.BorderForeground(lipgloss.Color("#f39c12"))

	priorityStyles = map[todo.Priority]lipgloss.Style{
		todo.High:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")).Bold(true),
		todo.Medium: lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12")),
		todo.Low:    lipgloss.NewStyle().Foreground(lipgloss.Color("#27ae60")),
	}
)

const indicatorMark = "•"

// PriorityStyle colours an indicator: high red, medium orange, low green.
func PriorityStyle(p todo.Priority) lipgloss.Style {
	if s, ok := priorityStyles[p]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// RenderCalendar draws g as a Sunday-first grid. Days with todos carry a
// mark coloured by their highest priority. A zero cursor or today is not
// highlighted.
func RenderCalendar(g calendar.Grid, cursor, today todo.Date) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(g.Month.Title()))
	b.WriteString("\n")
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		b.WriteString(weekdayStyle(wd).Render(wd.String()[:2]))
		if wd < time.Saturday {
			b.WriteString("  ")
		}
	}
	b.WriteString("\n")

	for _, week := range g.Weeks() {
		for col, day := range week {
			if day == nil {
				b.WriteString("    ")
				continue
			}
			b.WriteString(renderDay(*day, time.Weekday(col), cursor, today))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDay(d calendar.Day, wd time.Weekday, cursor, today todo.Date) string {
	num := fmt.Sprintf("%2d", d.Date.Day)
	style := weekdayStyle(wd)
	if d.Date == today {
		style = style.Inherit(todayStyle)
	}
	if d.Date == cursor {
		style = style.Inherit(cursorStyle)
	}
	mark := " "
	if d.HasTodos {
		mark = PriorityStyle(d.Indicator).Render(indicatorMark)
	}
	return style.Render(num) + mark + " "
}

func weekdayStyle(wd time.Weekday) lipgloss.Style {
	switch wd {
	case time.Sunday:
		return sundayStyle
	case time.Saturday:
		return saturdayStyle
	default:
		return lipgloss.NewStyle()
	}
}
