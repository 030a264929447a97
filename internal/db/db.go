package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverCGO  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPure = "sqlite"  // modernc.org/sqlite
)

// Options selects the driver and file for Open.
type Options struct {
	Driver string
	Path   string
}

// DefaultPath returns ~/.levelup/levelup.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".levelup", "levelup.db"), nil
}

// DSN builds the driver-specific connection string enabling foreign keys and
// a busy timeout.
func DSN(driver, path string) (string, error) {
	switch driver {
	case DriverCGO, "":
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path), nil
	case DriverPure:
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open opens the database file, creating its directory, and brings the schema
// up to date.
func Open(opts Options) (*sql.DB, error) {
	if opts.Driver == "" {
		opts.Driver = DriverCGO
	}
	if opts.Path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		opts.Path = p
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn, err := DSN(opts.Driver, opts.Path)
	if err != nil {
		return nil, err
	}

	database, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection keeps transactions and
	// plain statements from contending for the file lock.
	database.SetMaxOpenConns(1)

	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// OpenMemory opens a private in-memory database with the current schema.
// Used by tests across packages.
func OpenMemory(driver string) (*sql.DB, error) {
	if driver == "" {
		driver = DriverCGO
	}
	dsn, err := DSN(driver, ":memory:")
	if err != nil {
		return nil, err
	}

	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	database.SetMaxOpenConns(1)

	if _, err := database.Exec(GetSchemaSQL()); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return database, nil
}

// IsUniqueViolation reports whether err is a SQLite uniqueness failure.
// Both drivers surface the engine message verbatim.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
