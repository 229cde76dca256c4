package storage

import (
	"database/sql"
	"errors"

	"calendo/internal/filter"
	"calendo/internal/todo"
)

const selectTodos = `SELECT id, title, COALESCE(description, '') AS description, date, priority, completed FROM todos`

// Insert persists a new todo and returns its assigned id.
func (s *Store) Insert(t todo.Todo) (int64, error) {
	if t.ID != 0 {
		return 0, &todo.ValidationError{Field: "id", Reason: "must be 0 for a new todo"}
	}
	q := s.db.Rebind(`INSERT INTO todos (title, description, date, priority, completed) VALUES (?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := s.db.QueryRowx(q, t.Title, t.Description, s.dialect.dateArg(t.Date), int(t.Priority), t.Completed).Scan(&id)
	if err != nil {
		return 0, classify("insert todo", err)
	}
	s.log.Debug("inserted todo", "id", id, "date", t.Date)
	return id, nil
}

// Update replaces every mutable field of an existing todo.
func (s *Store) Update(t todo.Todo) error {
	if t.ID <= 0 {
		return &todo.NotFoundError{ID: t.ID}
	}
	q := s.db.Rebind(`UPDATE todos SET title = ?, description = ?, date = ?, priority = ?, completed = ? WHERE id = ?`)

	res, err := s.db.Exec(q, t.Title, t.Description, s.dialect.dateArg(t.Date), int(t.Priority), t.Completed, t.ID)
	if err != nil {
		return classify("update todo", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("update todo", err)
	}
	if n == 0 {
		return &todo.NotFoundError{ID: t.ID}
	}
	s.log.Debug("updated todo", "id", t.ID, "completed", t.Completed)
	return nil
}

// Delete is idempotent: a missing id reports zero affected rows, no error.
func (s *Store) Delete(id int64) (int64, error) {
	res, err := s.db.Exec(s.db.Rebind(`DELETE FROM todos WHERE id = ?`), id)
	if err != nil {
		return 0, classify("delete todo", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify("delete todo", err)
	}
	s.log.Debug("deleted todo", "id", id, "rows", n)
	return n, nil
}

func (s *Store) FindByID(id int64) (todo.Todo, error) {
	var t todo.Todo
	err := s.db.Get(&t, s.db.Rebind(selectTodos+` WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return todo.Todo{}, &todo.NotFoundError{ID: id}
	}
	if err != nil {
		return todo.Todo{}, classify("find todo", err)
	}
	return t, nil
}

// FindByDate returns the todos of one day ordered by priority, id.
func (s *Store) FindByDate(d todo.Date) ([]todo.Todo, error) {
	var out []todo.Todo
	q := s.db.Rebind(selectTodos + ` WHERE date = ? ORDER BY ` + filter.OrderByDate)
	if err := s.db.Select(&out, q, s.dialect.dateArg(d)); err != nil {
		return nil, classify("find todos by date", err)
	}
	return out, nil
}

// FindByFilter returns the todos matching every set field of f, ordered by
// priority, date, id.
func (s *Store) FindByFilter(f todo.FilterOptions) ([]todo.Todo, error) {
	where, args := filter.ComposeFor(f, s.dialect.filterDialect()).Where()
	q := selectTodos
	if where != "" {
		q += " " + where
	}
	q += " ORDER BY " + filter.OrderByFilter

	var out []todo.Todo
	if err := s.db.Select(&out, s.db.Rebind(q), args...); err != nil {
		return nil, classify("find todos by filter", err)
	}
	s.log.Debug("filtered todos", "filter", f.String(), "count", len(out))
	return out, nil
}

// ExistsByDate checks for at least one todo without loading any rows.
func (s *Store) ExistsByDate(d todo.Date) (bool, error) {
	var one int
	err := s.db.QueryRowx(s.db.Rebind(`SELECT 1 FROM todos WHERE date = ? LIMIT 1`), s.dialect.dateArg(d)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify("exists by date", err)
	}
	return true, nil
}

// HighestPriorityForDate returns the numerically smallest priority on d.
// Completed todos count too. ok is false when the day is empty.
func (s *Store) HighestPriorityForDate(d todo.Date) (todo.Priority, bool, error) {
	var p sql.NullInt64
	err := s.db.QueryRowx(s.db.Rebind(`SELECT MIN(priority) FROM todos WHERE date = ?`), s.dialect.dateArg(d)).Scan(&p)
	if err != nil {
		return 0, false, classify("highest priority for date", err)
	}
	if !p.Valid {
		return 0, false, nil
	}
	return todo.Priority(p.Int64), true, nil
}
