// Package filter turns a todo.FilterOptions into a single predicate that the
// store can evaluate in SQL and that tests and fakes can evaluate in memory.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"calendo/internal/todo"
)

// Result orderings. They never depend on which filter fields were set.
const (
	OrderByFilter = "priority, date, id"
	OrderByDate   = "priority, id"
)

// Condition is one AND-ed term. SQL uses ? placeholders.
type Condition struct {
	Field string
	SQL   string
	Args  []any
	Match func(todo.Todo) bool
}

type Predicate struct {
	Conditions []Condition
}

// DateArg converts a date into a driver argument; stores plug in their dialect.
type DateArg func(todo.Date) any

func isoDate(d todo.Date) any { return d.String() }

// Dialect is what a backend plugs into the SQL side. Lower names a SQL
// function that must lowercase the same way strings.ToLower does.
type Dialect struct {
	Date  DateArg
	Lower string
}

func (d Dialect) withDefaults() Dialect {
	if d.Date == nil {
		d.Date = isoDate
	}
	if d.Lower == "" {
		d.Lower = "LOWER"
	}
	return d
}

// criterion contributes at most one condition for a set field.
type criterion func(f todo.FilterOptions, d Dialect) (Condition, bool)

// criteria is the fixed fold order.
var criteria = []criterion{
	keywordCriterion,
	completedCriterion,
	startDateCriterion,
	endDateCriterion,
	priorityCriterion,
}

// Compose builds the predicate with ISO text date arguments.
func Compose(f todo.FilterOptions) Predicate {
	return ComposeWith(f, isoDate)
}

func ComposeWith(f todo.FilterOptions, date DateArg) Predicate {
	return ComposeFor(f, Dialect{Date: date})
}

// ComposeFor builds the predicate for a store's dialect. Zero fields fall
// back to ISO dates and LOWER.
func ComposeFor(f todo.FilterOptions, d Dialect) Predicate {
	d = d.withDefaults()
	var p Predicate
	for _, c := range criteria {
		if cond, ok := c(f, d); ok {
			p.Conditions = append(p.Conditions, cond)
		}
	}
	return p
}

// Where renders "WHERE a AND b", or "" when nothing is constrained.
func (p Predicate) Where() (string, []any) {
	if len(p.Conditions) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(p.Conditions))
	var args []any
	for _, c := range p.Conditions {
		parts = append(parts, c.SQL)
		args = append(args, c.Args...)
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}

func (p Predicate) Match(t todo.Todo) bool {
	for _, c := range p.Conditions {
		if !c.Match(t) {
			return false
		}
	}
	return true
}

func keywordCriterion(f todo.FilterOptions, d Dialect) (Condition, bool) {
	kw := strings.TrimSpace(f.Keyword)
	if kw == "" {
		return Condition{}, false
	}
	needle := strings.ToLower(kw)
	return Condition{
		Field: "keyword",
		SQL:   fmt.Sprintf(`%s(title) LIKE ? ESCAPE '\'`, d.Lower),
		Args:  []any{"%" + escapeLike(needle) + "%"},
		Match: func(t todo.Todo) bool {
			return strings.Contains(strings.ToLower(t.Title), needle)
		},
	}, true
}

func completedCriterion(f todo.FilterOptions, _ Dialect) (Condition, bool) {
	if f.Completed == nil {
		return Condition{}, false
	}
	want := *f.Completed
	return Condition{
		Field: "completed",
		SQL:   "completed = ?",
		Args:  []any{want},
		Match: func(t todo.Todo) bool { return t.Completed == want },
	}, true
}

func startDateCriterion(f todo.FilterOptions, d Dialect) (Condition, bool) {
	if f.StartDate == nil {
		return Condition{}, false
	}
	start := *f.StartDate
	return Condition{
		Field: "start_date",
		SQL:   "date >= ?",
		Args:  []any{d.Date(start)},
		Match: func(t todo.Todo) bool { return !t.Date.Before(start) },
	}, true
}

func endDateCriterion(f todo.FilterOptions, d Dialect) (Condition, bool) {
	if f.EndDate == nil {
		return Condition{}, false
	}
	end := *f.EndDate
	return Condition{
		Field: "end_date",
		SQL:   "date <= ?",
		Args:  []any{d.Date(end)},
		Match: func(t todo.Todo) bool { return !t.Date.After(end) },
	}, true
}

func priorityCriterion(f todo.FilterOptions, _ Dialect) (Condition, bool) {
	if f.Priority == nil {
		return Condition{}, false
	}
	want := *f.Priority
	return Condition{
		Field: "priority",
		SQL:   "priority = ?",
		Args:  []any{int(want)},
		Match: func(t todo.Todo) bool { return t.Priority == want },
	}, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SortForFilter orders todos by priority, date, id.
func SortForFilter(todos []todo.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
}

// SortForDate orders todos by priority, id.
func SortForDate(todos []todo.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.ID < b.ID
	})
}
