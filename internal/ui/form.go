package ui

import (
	"fmt"
	"strings"

	"calendo/internal/todo"
)

// formState backs the add/edit editor, one field at a time.
type formState struct {
	todoID      int64
	completed   bool
	title       string
	description string
	date        string
	priority    string
	index       int
}

func newForm(t todo.Todo) *formState {
	f := &formState{
		todoID:      t.ID,
		completed:   t.Completed,
		title:       t.Title,
		description: t.Description,
		date:        t.Date.String(),
	}
	if t.Priority.Valid() {
		f.priority = t.Priority.String()
	}
	return f
}

func formFields() []string {
	return []string{"title", "description", "date (YYYY-MM-DD)", "priority (high/medium/low)"}
}

func (f formState) currentLabel() string {
	return formFields()[f.index]
}

func (f formState) currentValue() string {
	switch f.index {
	case 0:
		return f.title
	case 1:
		return f.description
	case 2:
		return f.date
	case 3:
		return f.priority
	default:
		return ""
	}
}

func (f *formState) setCurrentValue(v string) {
	switch f.index {
	case 0:
		f.title = v
	case 1:
		f.description = v
	case 2:
		f.date = v
	case 3:
		f.priority = v
	}
}

func (f formState) values() []string {
	return []string{f.title, f.description, f.date, f.priority}
}

// build converts the form into a validated Todo.
func (f formState) build() (todo.Todo, error) {
	t := todo.Todo{
		ID:          f.todoID,
		Title:       strings.TrimSpace(f.title),
		Description: strings.TrimSpace(f.description),
		Completed:   f.completed,
	}
	if strings.TrimSpace(f.date) != "" {
		d, err := todo.ParseDate(f.date)
		if err != nil {
			return t, &todo.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		t.Date = d
	}
	if strings.TrimSpace(f.priority) != "" {
		p, err := todo.ParsePriority(f.priority)
		if err != nil {
			return t, err
		}
		t.Priority = p
	}
	return t, t.Validate()
}

func (f formState) render() string {
	var b strings.Builder
	for i, name := range formFields() {
		prefix := " "
		if i == f.index {
			prefix = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-26s : %s\n", prefix, name, emptyPlaceholder(f.values()[i])))
	}
	return b.String()
}
