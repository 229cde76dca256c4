package storage

import (
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"modernc.org/sqlite"

	"calendo/internal/filter"
	"calendo/internal/logging"
	"calendo/internal/todo"
)

//go:embed migrations/sqlite.sql
var sqliteSchema string

//go:embed migrations/postgres.sql
var postgresSchema string

func init() {
	// sqlx only knows "sqlite3"; modernc registers itself as "sqlite".
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	// SQLite's LOWER only folds ASCII.
	sqlite.MustRegisterDeterministicScalarFunction(unicodeLower, 1, lowerFunc)
}

const unicodeLower = "calendo_lower"

// lowerFunc folds case with strings.ToLower so SQL keyword matches agree
// with filter.Predicate.Match.
func lowerFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

type dialect struct {
	name    string
	schema  string
	lower   string
	dateArg func(todo.Date) any
}

func (d dialect) filterDialect() filter.Dialect {
	return filter.Dialect{Date: d.dateArg, Lower: d.lower}
}

var (
	sqliteDialect = dialect{
		name:   "sqlite",
		schema: sqliteSchema,
		lower:  unicodeLower,
		dateArg: func(d todo.Date) any {
			if d.IsZero() {
				return nil
			}
			return d.String()
		},
	}
	postgresDialect = dialect{
		name:   "postgres",
		schema: postgresSchema,
		lower:  "LOWER",
		dateArg: func(d todo.Date) any {
			if d.IsZero() {
				return nil
			}
			return d.Time()
		},
	}
)

// drivers maps the accepted driver names onto their SQL dialect.
var drivers = map[string]dialect{
	"sqlite":   sqliteDialect,
	"pgx":      postgresDialect,
	"postgres": postgresDialect,
}

// Options selects the driver and where the data lives. Path is used by the
// sqlite driver; DSN by the postgres drivers (or a raw sqlite DSN).
type Options struct {
	Driver string
	Path   string
	DSN    string
	Logger *log.Logger
}

// Store is the durable collection of todos. It owns its connection.
type Store struct {
	db      *sqlx.DB
	dialect dialect
	log     *log.Logger
}

func Open(opts Options) (*Store, error) {
	driver := strings.TrimSpace(opts.Driver)
	if driver == "" {
		driver = "sqlite"
	}
	d, ok := drivers[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q (want sqlite, pgx or postgres)", driver)
	}

	dsn := strings.TrimSpace(opts.DSN)
	if d.name == "sqlite" && dsn == "" {
		if opts.Path == "" {
			return nil, errors.New("db path is empty")
		}
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
		dsn = sqliteDSN(opts.Path)
	}
	if dsn == "" {
		return nil, fmt.Errorf("driver %s needs a dsn", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, &todo.PersistenceError{Op: "open", Err: err}
	}
	if d.name == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &todo.PersistenceError{Op: "connect", Err: err}
	}

	s := &Store{db: db, dialect: d, log: logging.OrDiscard(opts.Logger).WithPrefix("store")}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Debug("store ready", "driver", driver)
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ensureSchema is safe to run on every startup.
func (s *Store) ensureSchema() error {
	for _, stmt := range splitStatements(s.dialect.schema) {
		if _, err := s.db.Exec(stmt); err != nil {
			return &todo.PersistenceError{Op: "bootstrap schema", Err: err}
		}
	}
	if s.dialect.name == "sqlite" {
		return s.ensureTodoColumns()
	}
	return nil
}

// ensureTodoColumns upgrades sqlite files created before description and
// completed existed.
func (s *Store) ensureTodoColumns() error {
	required := map[string]string{
		"description": "ALTER TABLE todos ADD COLUMN description TEXT;",
		"completed":   "ALTER TABLE todos ADD COLUMN completed INTEGER NOT NULL DEFAULT 0;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(todos);`)
	if err != nil {
		return &todo.PersistenceError{Op: "inspect schema", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return &todo.PersistenceError{Op: "inspect schema", Err: err}
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return &todo.PersistenceError{Op: "inspect schema", Err: err}
	}
	// Release the single sqlite connection before altering.
	rows.Close()

	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		s.log.Info("adding missing column", "column", col)
		if _, err := s.db.Exec(alter); err != nil {
			return &todo.PersistenceError{Op: "add column " + col, Err: err}
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) != "" {
			out = append(out, strings.TrimSpace(stmt))
		}
	}
	return out
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
