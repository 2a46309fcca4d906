package state

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// The server and the command line tool share the database, so a write can
// briefly see SQLITE_BUSY. Statements are retried until lockTimeout.

func isSQLiteBusy(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_BUSY
	}
	return false
}

func retryDelay(attempt int) time.Duration {
	delay := time.Duration(attempt+1) * 40 * time.Millisecond
	if delay > 300*time.Millisecond {
		delay = 300 * time.Millisecond
	}
	return delay
}

func (d *DB) retry(ctx context.Context, op string, fn func() error) error {
	start := time.Now()
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		slog.Debug("sql busy", "op", op, "attempt", attempt+1, "err", err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.lockTimeout <= 0 || time.Since(start) >= d.lockTimeout {
			return err
		}
		time.Sleep(retryDelay(attempt))
	}
}

func (d *DB) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	slog.Debug("sql exec", "query", query, "args", args)
	var res sql.Result
	err := d.retry(ctx, "exec", func() error {
		var err error
		res, err = d.db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

func (d *DB) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	slog.Debug("sql query", "query", query, "args", args)
	var rows *sql.Rows
	err := d.retry(ctx, "query", func() error {
		var err error
		rows, err = d.db.QueryContext(ctx, query, args...)
		return err
	})
	return rows, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

type retryRow struct {
	d     *DB
	ctx   context.Context
	query string
	args  []any
}

func (r retryRow) Scan(dest ...any) error {
	return r.d.retry(r.ctx, "query row", func() error {
		return r.d.db.QueryRowContext(r.ctx, r.query, r.args...).Scan(dest...)
	})
}

func (d *DB) queryRowContext(ctx context.Context, query string, args ...any) rowScanner {
	slog.Debug("sql query row", "query", query, "args", args)
	return retryRow{d: d, ctx: ctx, query: query, args: args}
}
