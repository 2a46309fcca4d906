// Package state keeps the small amount of state that outlives a session:
// the last used units folder and document, and the write history of each
// document.
package state

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file inside the data directory.
const FileName = "state.sqlite"

type DB struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// Open opens (and creates) the database under dataDir and applies the
// schema.
func Open(ctx context.Context, dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return OpenPath(ctx, filepath.Join(dataDir, FileName))
}

func OpenPath(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	d := &DB{db: db, lockTimeout: 2 * time.Second}
	if err := d.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) init(ctx context.Context) error {
	if _, err := d.execContext(ctx, schemaSQL); err != nil {
		return err
	}
	v, err := d.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if v == schemaVersion {
		return nil
	}
	if _, err := d.execContext(ctx, "DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err = d.execContext(ctx, "INSERT INTO schema_version(version) VALUES(?)", schemaVersion)
	return err
}

func (d *DB) schemaVersion(ctx context.Context) (int, error) {
	var v int
	err := d.queryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}
