// Package todo holds the data definitions shared by the store, the filter
// composer, the calendar aggregator and the controller.
package todo

import (
	"fmt"
	"strconv"
	"strings"
)

type Priority int

const (
	High   Priority = 1
	Medium Priority = 2
	Low    Priority = 3
)

func (p Priority) Valid() bool {
	return p >= High && p <= Low
}

func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// ParsePriority accepts 1-3, h/m/l and high/medium/low.
func ParsePriority(s string) (Priority, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "h", "high":
		return High, nil
	case "m", "medium", "med":
		return Medium, nil
	case "l", "low":
		return Low, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !Priority(n).Valid() {
		return 0, &ValidationError{Field: "priority", Reason: fmt.Sprintf("%q is not one of 1-3 or high/medium/low", s)}
	}
	return Priority(n), nil
}

// Todo is a single dated task. ID 0 means it has not been persisted yet.
type Todo struct {
	ID          int64    `db:"id"`
	Title       string   `db:"title"`
	Description string   `db:"description"`
	Date        Date     `db:"date"`
	Priority    Priority `db:"priority"`
	Completed   bool     `db:"completed"`
}

func (t Todo) Persisted() bool {
	return t.ID > 0
}

// Validate performs the form-level checks done before a todo reaches the store.
func (t Todo) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if !t.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("%d is out of range", int(t.Priority))}
	}
	return nil
}
