package state

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

const (
	keyUnitsPath = "last_units_path"
	keyDocument  = "last_document"
)

// LastUsed is what the viewer had open the last time it ran.
type LastUsed struct {
	UnitsPath string
	Document  string
}

func (d *DB) LastUsed(ctx context.Context) (LastUsed, error) {
	var out LastUsed
	var err error
	if out.UnitsPath, err = d.setting(ctx, keyUnitsPath); err != nil {
		return LastUsed{}, err
	}
	if out.Document, err = d.setting(ctx, keyDocument); err != nil {
		return LastUsed{}, err
	}
	return out, nil
}

// SetLastUsed stores the non-empty fields of lu.
func (d *DB) SetLastUsed(ctx context.Context, lu LastUsed) error {
	if p := strings.TrimSpace(lu.UnitsPath); p != "" {
		if err := d.setSetting(ctx, keyUnitsPath, p); err != nil {
			return err
		}
	}
	if doc := strings.TrimSpace(lu.Document); doc != "" {
		if err := d.setSetting(ctx, keyDocument, doc); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) setting(ctx context.Context, key string) (string, error) {
	var v string
	err := d.queryRowContext(ctx, "SELECT value FROM settings WHERE key=?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (d *DB) setSetting(ctx context.Context, key, value string) error {
	_, err := d.execContext(ctx, `
		INSERT INTO settings(key, value, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
	`, key, value, time.Now().Unix())
	return err
}
