package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// timeLayout is the on-disk format of every timestamp column (UTC).
const timeLayout = "2006-01-02 15:04:05"

var _ Repos = (*Store)(nil)

// Store holds the SQL driver and provides access to repositories.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Pragmas are per connection; a single connection keeps them in force.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &Store{db: db, drv: entsql.OpenDB(dialect.SQLite, db)}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Users() UserRepo         { return &userRepo{drv: s.drv} }
func (s *Store) Subjects() SubjectRepo   { return &subjectRepo{drv: s.drv} }
func (s *Store) Questions() QuestionRepo { return &questionRepo{drv: s.drv} }
func (s *Store) Answers() AnswerRepo     { return &answerRepo{drv: s.drv} }
func (s *Store) Stats() StatsRepo        { return &statsRepo{drv: s.drv} }

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{drv: s.drv}
}

// applyPragmas configures SQLite for a single-process web server.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ADAPTIQ_DB environment variable
// 2. $XDG_DATA_HOME/adaptiq/adaptiq.db
// 3. ~/.local/share/adaptiq/adaptiq.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ADAPTIQ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "adaptiq", "adaptiq.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// mapInsertErr turns unique constraint violations into ErrConflict.
func mapInsertErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// insert executes an insert and returns the new row id.
func insert(ctx context.Context, drv *entsql.Driver, q string, args []any) (int64, error) {
	var res sql.Result
	if err := drv.Exec(ctx, q, args, &res); err != nil {
		return 0, mapInsertErr(err)
	}
	return res.LastInsertId()
}

// queryOne runs q and scans the first row with scan. It returns ErrNotFound
// if the result is empty.
func queryOne(ctx context.Context, drv *entsql.Driver, q string, args []any, scan func(*entsql.Rows) error) error {
	rows := &entsql.Rows{}
	if err := drv.Query(ctx, q, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return ErrNotFound
	}
	return scan(rows)
}

// queryAll runs q and calls scan for every row.
func queryAll(ctx context.Context, drv *entsql.Driver, q string, args []any, scan func(*entsql.Rows) error) error {
	rows := &entsql.Rows{}
	if err := drv.Query(ctx, q, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
