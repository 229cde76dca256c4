package storage

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"calendo/internal/todo"
)

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	return &todo.PersistenceError{Op: op, Constraint: isConstraintViolation(err), Err: err}
}

// isConstraintViolation recognises NOT NULL, CHECK, UNIQUE and FK failures
// from every supported driver.
func isConstraintViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "23")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23"
	}
	return false
}
