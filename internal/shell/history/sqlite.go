package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeFormat is fixed width so created_at sorts as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "failed to open database", ErrConnectionFailed)
	}
	// One connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Entry Operations
// =============================================================================

// entryRow represents a command_history row in the database.
type entryRow struct {
	ID         string `db:"id"`
	Tool       string `db:"tool"`
	Phrase     string `db:"phrase"`
	Command    string `db:"command"`
	Host       string `db:"host"`
	ExitCode   int    `db:"exit_code"`
	Output     string `db:"output"`
	Error      string `db:"error"`
	DurationMS int64  `db:"duration_ms"`
	CreatedAt  string `db:"created_at"`
}

// Record inserts entry.
func (s *SQLiteStore) Record(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.ID == "" || entry.Tool == "" {
		return NewStoreError("Record", "", "entry needs an id and a tool", ErrInvalidEntry)
	}

	query := `
		INSERT INTO command_history (
			id, tool, phrase, command, host, exit_code, output, error, duration_ms, created_at
		) VALUES (
			:id, :tool, :phrase, :command, :host, :exit_code, :output, :error, :duration_ms, :created_at
		)`

	row := entryRow{
		ID:         entry.ID,
		Tool:       entry.Tool,
		Phrase:     entry.Phrase,
		Command:    entry.Command,
		Host:       entry.Host,
		ExitCode:   entry.ExitCode,
		Output:     entry.Output,
		Error:      entry.Error,
		DurationMS: entry.Duration.Milliseconds(),
		CreatedAt:  entry.CreatedAt.UTC().Format(timeFormat),
	}

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return NewStoreError("Record", entry.ID, err.Error(), err)
	}
	return nil
}

// List returns entries newest first.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	opts = opts.Normalize()

	var rows []entryRow
	var err error
	if opts.Tool != "" {
		err = s.db.SelectContext(ctx, &rows,
			`SELECT * FROM command_history WHERE tool = ? ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
			opts.Tool, opts.Limit, opts.Offset)
	} else {
		err = s.db.SelectContext(ctx, &rows,
			`SELECT * FROM command_history ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
			opts.Limit, opts.Offset)
	}
	if err != nil {
		return nil, NewStoreError("List", "", err.Error(), err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry, err := rowToEntry(&row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func rowToEntry(row *entryRow) (*Entry, error) {
	createdAt, err := time.Parse(timeFormat, row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("List", row.ID, "invalid created_at", err)
	}
	return &Entry{
		ID:        row.ID,
		Tool:      row.Tool,
		Phrase:    row.Phrase,
		Command:   row.Command,
		Host:      row.Host,
		ExitCode:  row.ExitCode,
		Output:    row.Output,
		Error:     row.Error,
		Duration:  time.Duration(row.DurationMS) * time.Millisecond,
		CreatedAt: createdAt,
	}, nil
}
