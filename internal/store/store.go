// Package store persists icon resolutions to sqlite so a process restart
// skips the XDG icon directory walk. The database is a cache: dropping it
// is always safe and the resolver repopulates it lazily.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// IconStore wraps the sqlite icon snapshot database.
type IconStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path and applies
// pending migrations.
func Open(path string) (*IconStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open icon store: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate icon store: %w", err)
	}
	return &IconStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Close closes the underlying database.
func (s *IconStore) Close() error { return s.db.Close() }

// Get returns the snapshotted resolution for name. found=false with ok=true
// means a negative resolution was recorded; ok=false means no row exists.
func (s *IconStore) Get(ctx context.Context, name string) (path string, found bool, ok bool, err error) {
	var f int
	row := s.db.QueryRowContext(ctx, `SELECT path, found FROM icon_cache WHERE name = ?`, name)
	if err := row.Scan(&path, &f); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, false, nil
		}
		return "", false, false, err
	}
	return path, f != 0, true, nil
}

// Put records a resolution (positive or negative) for name.
func (s *IconStore) Put(ctx context.Context, name, path string, found bool) error {
	f := 0
	if found {
		f = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO icon_cache (name, path, found, resolved_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET path = excluded.path, found = excluded.found, resolved_at = excluded.resolved_at`,
		name, path, f)
	return err
}

// Clear drops every snapshotted resolution.
func (s *IconStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM icon_cache`)
	return err
}
