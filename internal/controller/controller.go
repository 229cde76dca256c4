// Package controller keeps the list view and the calendar in step with the
// store. The active Mode decides what the list shows after every mutation.
package controller

import (
	"github.com/charmbracelet/log"

	"calendo/internal/logging"
	"calendo/internal/todo"
)

// Store is the persistence contract the controller drives.
type Store interface {
	Insert(t todo.Todo) (int64, error)
	Update(t todo.Todo) error
	Delete(id int64) (int64, error)
	FindByDate(d todo.Date) ([]todo.Todo, error)
	FindByFilter(f todo.FilterOptions) ([]todo.Todo, error)
	ExistsByDate(d todo.Date) (bool, error)
	HighestPriorityForDate(d todo.Date) (todo.Priority, bool, error)
}

type ListView interface {
	ShowTodosForDate(d todo.Date, todos []todo.Todo)
	ShowTodos(todos []todo.Todo)
}

type CalendarView interface {
	RefreshCalendar()
}

// Mode is one of Uninitialized, DateMode or FilterMode.
type Mode interface {
	mode()
	String() string
}

type Uninitialized struct{}

type DateMode struct {
	Date todo.Date
}

type FilterMode struct {
	Filter todo.FilterOptions
}

func (Uninitialized) mode() {}
func (DateMode) mode()      {}
func (FilterMode) mode()    {}

func (Uninitialized) String() string { return "uninitialized" }
func (m DateMode) String() string    { return "date " + m.Date.String() }
func (m FilterMode) String() string  { return "filter " + m.Filter.String() }

type Option func(*Controller)

func WithListView(v ListView) Option {
	return func(c *Controller) { c.list = v }
}

func WithCalendarView(v CalendarView) Option {
	return func(c *Controller) { c.calendar = v }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller is not safe for concurrent use; callers serialize on the UI
// loop.
type Controller struct {
	store    Store
	list     ListView
	calendar CalendarView
	log      *log.Logger
	mode     Mode
}

func New(store Store, opts ...Option) *Controller {
	c := &Controller{store: store, mode: Uninitialized{}}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDiscard(c.log).WithPrefix("controller")
	return c
}

// SetListView and SetCalendarView let a renderer register itself after the
// controller exists.
func (c *Controller) SetListView(v ListView)         { c.list = v }
func (c *Controller) SetCalendarView(v CalendarView) { c.calendar = v }

func (c *Controller) Mode() Mode { return c.mode }

// CurrentDate reports the selected day; ok is false outside DateMode.
func (c *Controller) CurrentDate() (todo.Date, bool) {
	if m, ok := c.mode.(DateMode); ok {
		return m.Date, true
	}
	return todo.Date{}, false
}

// OnDateSelected enters DateMode once the day's todos are fetched. A failed
// fetch leaves the mode and the list untouched.
func (c *Controller) OnDateSelected(d todo.Date) error {
	return c.showDate(d, DateMode{Date: d})
}

func (c *Controller) ApplyFilter(f todo.FilterOptions) error {
	f = f.Normalized()
	return c.showFilter(f, FilterMode{Filter: f})
}

// SaveTodo inserts a new todo or updates a persisted one, refreshes the
// calendar and re-runs the fetch of the mode that was active on entry.
func (c *Controller) SaveTodo(t todo.Todo) (todo.Todo, error) {
	before := c.mode
	if t.Persisted() {
		if err := c.store.Update(t); err != nil {
			return t, err
		}
	} else {
		id, err := c.store.Insert(t)
		if err != nil {
			return t, err
		}
		t.ID = id
	}
	c.log.Debug("saved todo", "id", t.ID, "date", t.Date, "mode", before)
	c.refreshCalendar()

	switch m := before.(type) {
	case DateMode:
		return t, c.showDate(m.Date, m)
	case FilterMode:
		return t, c.showFilter(m.Filter, m)
	default:
		if t.Date.IsZero() {
			return t, nil
		}
		return t, c.showDate(t.Date, DateMode{Date: t.Date})
	}
}

// DeleteTodo ignores todos that were never persisted. With no active mode
// the list falls back to every todo without changing mode.
func (c *Controller) DeleteTodo(t todo.Todo) error {
	if !t.Persisted() {
		return nil
	}
	n, err := c.store.Delete(t.ID)
	if err != nil {
		return err
	}
	c.log.Debug("deleted todo", "id", t.ID, "rows", n, "mode", c.mode)
	c.refreshCalendar()

	switch m := c.mode.(type) {
	case DateMode:
		return c.showDate(m.Date, m)
	case FilterMode:
		return c.showFilter(m.Filter, m)
	default:
		return c.showFilter(todo.FilterOptions{}, nil)
	}
}

// UpdateTodoCompleted persists only the flag. The view is expected to have
// updated its row already, so nothing is re-fetched.
func (c *Controller) UpdateTodoCompleted(t todo.Todo, completed bool) (todo.Todo, error) {
	if !t.Persisted() {
		return t, nil
	}
	t.Completed = completed
	if err := c.store.Update(t); err != nil {
		return t, err
	}
	c.log.Debug("toggled todo", "id", t.ID, "completed", completed)
	return t, nil
}

func (c *Controller) HasTodoOn(d todo.Date) (bool, error) {
	return c.store.ExistsByDate(d)
}

func (c *Controller) HighestPriorityForDate(d todo.Date) (todo.Priority, bool, error) {
	return c.store.HighestPriorityForDate(d)
}

// showDate and showFilter fetch first. Only on success do they switch to
// next (nil keeps the current mode) and push to the list view.
func (c *Controller) showDate(d todo.Date, next Mode) error {
	todos, err := c.store.FindByDate(d)
	if err != nil {
		return err
	}
	c.enter(next)
	c.log.Debug("show date", "date", d, "count", len(todos))
	if c.list != nil {
		c.list.ShowTodosForDate(d, todos)
	}
	return nil
}

func (c *Controller) showFilter(f todo.FilterOptions, next Mode) error {
	todos, err := c.store.FindByFilter(f)
	if err != nil {
		return err
	}
	c.enter(next)
	c.log.Debug("show filter", "filter", f.String(), "count", len(todos))
	if c.list != nil {
		c.list.ShowTodos(todos)
	}
	return nil
}

func (c *Controller) enter(next Mode) {
	if next != nil {
		c.mode = next
	}
}

func (c *Controller) refreshCalendar() {
	if c.calendar != nil {
		c.calendar.RefreshCalendar()
	}
}
