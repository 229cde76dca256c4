package filter

import (
	"fmt"
	"strings"

	"calendo/internal/todo"
)

// ParseQuery reads a search line such as
//
//	road trip from:2024-03-01 to:2024-03-31 p:high status:open
//
// Bare words form the keyword. Recognized keys are from, to, on, p/priority
// and status/is (done, open, all). Any other token, "10:30" included, is a
// keyword word.
func ParseQuery(q string) (todo.FilterOptions, error) {
	var f todo.FilterOptions
	var words []string
	for _, tok := range strings.Fields(q) {
		key, val, ok := strings.Cut(tok, ":")
		if !ok || key == "" {
			words = append(words, tok)
			continue
		}
		switch strings.ToLower(key) {
		case "from", "since":
			d, err := todo.ParseDate(val)
			if err != nil {
				return todo.FilterOptions{}, err
			}
			f.StartDate = &d
		case "to", "until":
			d, err := todo.ParseDate(val)
			if err != nil {
				return todo.FilterOptions{}, err
			}
			f.EndDate = &d
		case "on":
			d, err := todo.ParseDate(val)
			if err != nil {
				return todo.FilterOptions{}, err
			}
			start, end := d, d
			f.StartDate, f.EndDate = &start, &end
		case "p", "priority":
			p, err := todo.ParsePriority(val)
			if err != nil {
				return todo.FilterOptions{}, err
			}
			f.Priority = &p
		case "status", "is":
			c, err := ParseStatus(val)
			if err != nil {
				return todo.FilterOptions{}, err
			}
			f.Completed = c
		default:
			words = append(words, tok)
		}
	}
	f.Keyword = strings.Join(words, " ")
	return f, nil
}

// ParseStatus maps done/open/all onto the tri-state completed field.
func ParseStatus(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "any":
		return nil, nil
	case "done", "completed", "complete":
		v := true
		return &v, nil
	case "open", "todo", "pending", "undone":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("unknown status %q (want done, open or all)", s)
	}
}
