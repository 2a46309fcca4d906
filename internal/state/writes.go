package state

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type WriteStatus string

const (
	WriteOK     WriteStatus = "ok"
	WriteFailed WriteStatus = "failed"
)

type WriteRecord struct {
	Document  string
	Version   int64
	Status    WriteStatus
	Message   string
	WrittenAt time.Time
}

// Version is the highest committed write version of doc, 0 if none.
func (d *DB) Version(ctx context.Context, doc string) (int64, error) {
	var v int64
	err := d.queryRowContext(ctx, "SELECT version FROM documents WHERE name=?", doc).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

// CommitVersion raises the committed version of doc. Lower versions are
// ignored.
func (d *DB) CommitVersion(ctx context.Context, doc string, version int64) error {
	_, err := d.execContext(ctx, `
		INSERT INTO documents(name, version, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version=MAX(documents.version, excluded.version),
			updated_at=excluded.updated_at
	`, doc, version, time.Now().Unix())
	return err
}

// RecordWrite journals a write attempt and commits its version when it
// succeeded.
func (d *DB) RecordWrite(ctx context.Context, doc string, version int64, writeErr error) error {
	status, msg := WriteOK, ""
	if writeErr != nil {
		status, msg = WriteFailed, writeErr.Error()
	}
	if _, err := d.execContext(ctx, `
		INSERT INTO writes(document, version, status, message, written_at) VALUES(?, ?, ?, ?, ?)
	`, doc, version, string(status), msg, time.Now().UnixMilli()); err != nil {
		return err
	}
	if writeErr != nil {
		return nil
	}
	return d.CommitVersion(ctx, doc, version)
}

// RecentWrites returns the latest journal entries of doc, newest first.
func (d *DB) RecentWrites(ctx context.Context, doc string, limit int) ([]WriteRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.queryContext(ctx, `
		SELECT document, version, status, message, written_at
		FROM writes
		WHERE document=?
		ORDER BY id DESC
		LIMIT ?
	`, doc, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WriteRecord
	for rows.Next() {
		var (
			rec    WriteRecord
			status string
			ms     int64
		)
		if err := rows.Scan(&rec.Document, &rec.Version, &status, &rec.Message, &ms); err != nil {
			return nil, err
		}
		rec.Status = WriteStatus(status)
		rec.WrittenAt = time.UnixMilli(ms)
		out = append(out, rec)
	}
	return out, rows.Err()
}
