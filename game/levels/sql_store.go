package levels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const createLevelsTable = `
CREATE TABLE IF NOT EXISTS levels (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// SQLStore keeps levels in a single table through database/sql
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore opens the database, checks the connection and creates the
// levels table. driver is DriverSQLite or DriverPostgres.
func NewSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "open", Err: err}
	}

	store := &SQLStore{db: db, driver: driver}
	if _, err := db.ExecContext(ctx, createLevelsTable); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "open", Err: fmt.Errorf("failed to initialize schema: %w", err)}
	}
	return store, nil
}

// rebind turns ? placeholders into $n for PostgreSQL
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Load reads a level's text
func (s *SQLStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, &PersistenceError{Op: "load", Name: name, Err: err}
	}

	var body string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT body FROM levels WHERE name = ?`), name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &PersistenceError{Op: "load", Name: name, Err: ErrLevelNotFound}
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load", Name: name, Err: err}
	}
	return []byte(body), nil
}

// Save inserts or replaces a level's text
func (s *SQLStore) Save(ctx context.Context, name string, text []byte) error {
	if err := ValidateName(name); err != nil {
		return &PersistenceError{Op: "save", Name: name, Err: err}
	}

	query := `
	INSERT INTO levels (name, body, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT (name)
	DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, s.rebind(query), name, string(text), time.Now().UTC()); err != nil {
		return &PersistenceError{Op: "save", Name: name, Err: err}
	}
	return nil
}

// List returns all level names, sorted
func (s *SQLStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM levels ORDER BY name`)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return names, nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
