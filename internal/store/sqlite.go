package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"nutri-go/internal/nutri"
	"nutri-go/internal/store/migrations"
)

// SQLiteFileName is the database file created under the data directory.
const SQLiteFileName = "nutri.db"

// SQLiteRecords stores records as rows of the records table.
type SQLiteRecords struct {
	db    *sql.DB
	clock nutri.Clock
}

var _ RecordStore = (*SQLiteRecords)(nil)

// NewSQLiteRecords opens the database at path (or ":memory:"), applies
// pending migrations and verifies the schema version.
func NewSQLiteRecords(path string, clock nutri.Clock) (*SQLiteRecords, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	if err := migrations.CheckDBMigrationStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("checking schema of %s: %w", path, err)
	}
	return &SQLiteRecords{db: db, clock: clock}, nil
}

// OpenConnection opens a SQLite database limited to one connection. The
// store has a single writer, and ":memory:" databases are per-connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

func (s *SQLiteRecords) Get(name string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM records WHERE name = ?", name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading record %s: %w", name, err)
	}
	return value, nil
}

func (s *SQLiteRecords) Put(name string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO records (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		name, data, s.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing record %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteRecords) Delete(name string) error {
	if _, err := s.db.Exec("DELETE FROM records WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting record %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteRecords) Close() error {
	return s.db.Close()
}
