package commands

import (
	"context"
	"fmt"
	"os"

	"unitview/internal/config"
	"unitview/internal/library"
	"unitview/internal/printers"
	"unitview/internal/session"
	"unitview/internal/state"
)

// workspace is what a command runs against: the units folder, the state
// database and, once opened, a session over one document.
type workspace struct {
	cfg  config.Config
	db   *state.DB
	lib  *library.Library
	sess *session.Session
}

func (r *root) printer() *printers.Printer {
	return printers.New(r.oo.Format, r.oo.Writer())
}

// openWorkspace resolves the units folder from the flags, then the
// configuration, then the folder used last.
func (r *root) openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := state.Open(ctx, cfg.DataPath)
	if err != nil {
		return nil, err
	}
	ws := &workspace{cfg: cfg, db: db}

	units := r.lo.Units
	if units == "" {
		units = cfg.UnitsPath
	}
	if units == "" {
		last, err := db.LastUsed(ctx)
		if err != nil {
			ws.close()
			return nil, err
		}
		units = last.UnitsPath
	}
	if units == "" {
		ws.close()
		return nil, fmt.Errorf("no units folder: pass --units or set units_path")
	}
	units, err = config.ExpandPath(units)
	if err != nil {
		ws.close()
		return nil, err
	}
	ws.lib, err = library.Open(units, library.WithLockTimeout(cfg.WriteTimeout))
	if err != nil {
		ws.close()
		return nil, err
	}
	return ws, nil
}

// openSession loads the selected document into a session that persists
// through the library and journals into the state database.
func (r *root) openSession(ctx context.Context) (*workspace, error) {
	ws, err := r.openWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	doc := r.lo.Doc
	if doc == "" {
		doc = ws.cfg.Document
	}
	if doc == "" {
		last, err := ws.db.LastUsed(ctx)
		if err == nil && last.UnitsPath == ws.lib.Root() {
			doc = last.Document
		}
	}
	if doc == "" {
		ws.close()
		return nil, fmt.Errorf("no label document: pass --doc or set document")
	}
	if doc, err = library.DocumentName(doc); err != nil {
		ws.close()
		return nil, err
	}
	store, err := ws.lib.Load(ctx, doc)
	if err != nil {
		ws.close()
		return nil, err
	}
	base, err := ws.db.Version(ctx, doc)
	if err != nil {
		ws.close()
		return nil, err
	}
	ws.sess = session.New(doc, store, ws.lib.Writer(ws.db), base)
	if err := ws.db.SetLastUsed(ctx, state.LastUsed{UnitsPath: ws.lib.Root(), Document: doc}); err != nil {
		ws.close()
		return nil, err
	}
	return ws, nil
}

func (ws *workspace) close() {
	if ws.db != nil {
		_ = ws.db.Close()
	}
}
