// Package kvstore is the durable key/value store backing layout
// proportions, theme and session state. It is a single SQLite table managed
// with embedded migrations.
package kvstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/lineage/internal/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Well-known keys.
const (
	KeyThemeMode    = "theme.mode"
	KeySelectedRepo = "session.selected_repo"
	KeyViewMode     = "session.view_mode"
)

// Store is a SQLite-backed string map.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates the database at path, creating parent directories
// with mode 0700. An existing database is copied to path+".bak" before
// pending migrations run.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	_, statErr := os.Stat(path)
	existed := statErr == nil

	dsn := "file:" + filepath.ToSlash(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		log.ErrorErr(log.CatDB, "Failed to ping database", err, "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrateUp(conn, path, existed); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info(log.CatDB, "Opened key/value store", "path", path)
	return &Store{conn: conn, path: path}, nil
}

func migrateUp(conn *sql.DB, path string, existed bool) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	drv, err := newMigrateDriver(conn)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}

	if existed && pending(m, src) {
		if err := backup(path); err != nil {
			return fmt.Errorf("failed to back up database: %w", err)
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// pending reports whether the source has a migration newer than the
// database version.
func pending(m *migrate.Migrate, src interface {
	Next(uint) (uint, error)
	First() (uint, error)
}) bool {
	version, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		_, err := src.First()
		return err == nil
	}
	if err != nil {
		return true
	}
	_, err = src.Next(version)
	return err == nil
}

func backup(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	log.Info(log.CatDB, "Backed up database before migration", "path", path+".bak")
	return out.Close()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}
