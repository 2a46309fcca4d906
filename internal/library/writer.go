package library

import (
	"context"
	"log/slog"

	"unitview/internal/labels"
)

// Journal records the outcome of every versioned write.
type Journal interface {
	RecordWrite(ctx context.Context, doc string, version int64, writeErr error) error
}

// Writer persists session mutations into the library and journals them.
type Writer struct {
	lib     *Library
	journal Journal
}

func (l *Library) Writer(j Journal) *Writer {
	return &Writer{lib: l, journal: j}
}

func (w *Writer) Save(ctx context.Context, doc string, store labels.Store, version int64) error {
	err := w.lib.Save(ctx, doc, store)
	if w.journal != nil {
		if jerr := w.journal.RecordWrite(ctx, doc, version, err); jerr != nil {
			slog.Warn("write journal", "doc", doc, "version", version, "err", jerr)
		}
	}
	return err
}
