package todo

import (
	"fmt"
	"strings"
)

// FilterOptions is a sparse set of search criteria combined with AND.
// Nil pointers and a blank keyword mean the field is not applied.
type FilterOptions struct {
	Keyword   string
	StartDate *Date
	EndDate   *Date
	Completed *bool
	Priority  *Priority
}

func (f FilterOptions) IsEmpty() bool {
	return strings.TrimSpace(f.Keyword) == "" &&
		f.StartDate == nil && f.EndDate == nil &&
		f.Completed == nil && f.Priority == nil
}

// Normalized trims the keyword and copies the pointer fields so the result
// does not alias the caller's values.
func (f FilterOptions) Normalized() FilterOptions {
	out := FilterOptions{Keyword: strings.TrimSpace(f.Keyword)}
	if f.StartDate != nil {
		d := *f.StartDate
		out.StartDate = &d
	}
	if f.EndDate != nil {
		d := *f.EndDate
		out.EndDate = &d
	}
	if f.Completed != nil {
		c := *f.Completed
		out.Completed = &c
	}
	if f.Priority != nil {
		p := *f.Priority
		out.Priority = &p
	}
	return out
}

func (f FilterOptions) String() string {
	var parts []string
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		parts = append(parts, fmt.Sprintf("%q", kw))
	}
	if f.StartDate != nil {
		parts = append(parts, "from "+f.StartDate.String())
	}
	if f.EndDate != nil {
		parts = append(parts, "to "+f.EndDate.String())
	}
	if f.Completed != nil {
		if *f.Completed {
			parts = append(parts, "done")
		} else {
			parts = append(parts, "open")
		}
	}
	if f.Priority != nil {
		parts = append(parts, f.Priority.String()+" priority")
	}
	if len(parts) == 0 {
		return "all todos"
	}
	return strings.Join(parts, ", ")
}
