package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"unitview/internal/config"
	"unitview/internal/labels"
	"unitview/internal/library"
	"unitview/internal/session"
	"unitview/internal/state"
)

var (
	errNoLibrary  = fmt.Errorf("no units folder selected: %w", library.ErrNotFound)
	errNoDocument = fmt.Errorf("no document open: %w", library.ErrNotFound)
)

type Server struct {
	cfg    config.Config
	db     *state.DB
	mux    *http.ServeMux
	views  *Templates
	toasts *toastStore
	events *sseHub

	// ctx bounds background work such as document watchers.
	ctx context.Context

	mu        sync.Mutex
	lib       *library.Library
	sess      *session.Session
	stopWatch context.CancelFunc
}

func NewServer(ctx context.Context, cfg config.Config, db *state.DB) *Server {
	s := &Server{
		cfg:    cfg,
		db:     db,
		mux:    http.NewServeMux(),
		views:  MustParseTemplates(),
		toasts: newToastStore(),
		events: newSSEHub(),
		ctx:    ctx,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.withClientCookie(s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	s.mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	s.mux.HandleFunc("POST /api/documents", s.handleCreateDocument)
	s.mux.HandleFunc("POST /api/documents/open", s.handleOpenDocument)
	s.mux.HandleFunc("GET /api/documents/raw", s.handleRawDocument)
	s.mux.HandleFunc("GET /api/writes", s.handleWrites)

	s.mux.HandleFunc("GET /api/session", s.handleSession)
	s.mux.HandleFunc("POST /api/query", s.handleQuery)
	s.mux.HandleFunc("POST /api/next", s.handleNext)
	s.mux.HandleFunc("POST /api/previous", s.handlePrevious)
	s.mux.HandleFunc("POST /api/select", s.handleSelect)
	s.mux.HandleFunc("POST /api/tags", s.handleAddTag)
	s.mux.HandleFunc("POST /api/remove", s.handleRemove)
	s.mux.HandleFunc("POST /api/notes", s.handleAddNote)
	s.mux.HandleFunc("POST /api/fill", s.handleFill)
	s.mux.HandleFunc("POST /api/track", s.handleTrack)

	s.mux.HandleFunc("GET /api/paths", s.handleGetPaths)
	s.mux.HandleFunc("POST /api/paths", s.handleSetPaths)
	s.mux.HandleFunc("GET /api/items", s.handleItems)

	s.mux.HandleFunc("GET /api/toasts", s.handleToasts)
	s.mux.HandleFunc("POST /api/toasts/dismiss", s.handleDismissToast)

	s.mux.HandleFunc("GET /units/{id}", s.handleUnitImages)
	s.mux.HandleFunc("GET /units/{id}/{image}", s.handleUnitImage)
	s.mux.HandleFunc("GET /events", s.handleEvents)
}

// Start opens the configured units folder and document, falling back to
// the ones used last. Missing pieces leave the server running without them.
func (s *Server) Start(ctx context.Context) error {
	unitsPath := s.cfg.UnitsPath
	doc := s.cfg.Document
	if s.db != nil && (unitsPath == "" || doc == "") {
		last, err := s.db.LastUsed(ctx)
		if err != nil {
			return fmt.Errorf("load last used: %w", err)
		}
		if unitsPath == "" {
			unitsPath = last.UnitsPath
		}
		if doc == "" && unitsPath == last.UnitsPath {
			doc = last.Document
		}
	}
	if unitsPath == "" {
		slog.Info("no units folder configured")
		return nil
	}
	if err := s.setLibrary(ctx, unitsPath); err != nil {
		slog.Warn("open units folder", "path", unitsPath, "err", err)
		return nil
	}
	if doc == "" {
		docs, err := s.library().Documents()
		if err != nil || len(docs) == 0 {
			return nil
		}
		doc = docs[0]
	}
	if _, err := s.openDocument(ctx, doc); err != nil {
		slog.Warn("open document", "doc", doc, "err", err)
	}
	return nil
}

func (s *Server) library() *library.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lib
}

func (s *Server) session() (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil, errNoDocument
	}
	return s.sess, nil
}

// setLibrary switches the units folder and closes the open document.
func (s *Server) setLibrary(ctx context.Context, path string) error {
	lib, err := library.Open(path,
		library.WithLockTimeout(s.cfg.WriteTimeout),
		library.WithDebounce(s.cfg.WatchDebounce),
	)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lib = lib
	s.sess = nil
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.SetLastUsed(ctx, state.LastUsed{UnitsPath: lib.Root()}); err != nil {
			slog.Warn("remember units folder", "err", err)
		}
	}
	slog.Info("units folder", "path", lib.Root())
	return nil
}

// openDocument loads doc into a fresh session. The previous session is
// discarded.
func (s *Server) openDocument(ctx context.Context, doc string) (*session.Session, error) {
	lib := s.library()
	if lib == nil {
		return nil, errNoLibrary
	}
	doc, err := library.DocumentName(doc)
	if err != nil {
		return nil, err
	}
	store, err := lib.Load(ctx, doc)
	if err != nil {
		return nil, err
	}
	var base int64
	var journal library.Journal
	if s.db != nil {
		if base, err = s.db.Version(ctx, doc); err != nil {
			return nil, err
		}
		journal = s.db
	}
	sess := session.New(doc, store, lib.Writer(journal), base)

	s.mu.Lock()
	s.sess = sess
	if s.stopWatch != nil {
		s.stopWatch()
		s.stopWatch = nil
	}
	if s.cfg.Watch && s.ctx != nil {
		wctx, cancel := context.WithCancel(s.ctx)
		s.stopWatch = cancel
		go s.watch(wctx, lib, sess, doc)
	}
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.SetLastUsed(ctx, state.LastUsed{UnitsPath: lib.Root(), Document: doc}); err != nil {
			slog.Warn("remember document", "err", err)
		}
	}
	slog.Info("document opened", "doc", doc, "items", store.Len(), "version", base)
	return sess, nil
}

func (s *Server) watch(ctx context.Context, lib *library.Library, sess *session.Session, doc string) {
	err := lib.Watch(ctx, doc, func() { s.documentChanged(ctx, lib, sess, doc) })
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("watch document", "doc", doc, "err", err)
	}
}

// documentChanged reloads a document edited outside this process. Our own
// writes produce the same bytes and are ignored.
func (s *Server) documentChanged(ctx context.Context, lib *library.Library, sess *session.Session, doc string) {
	store, err := lib.Load(ctx, doc)
	if err != nil {
		slog.Warn("reload document", "doc", doc, "err", err)
		return
	}
	onDisk, err := labels.Encode(store)
	if err != nil {
		return
	}
	inMemory, err := labels.Encode(sess.State().Store())
	if err != nil || string(onDisk) == string(inMemory) {
		return
	}
	sess.Reload(store)
	slog.Info("document reloaded", "doc", doc, "items", store.Len())
	s.events.broadcastAll("reload", eventPayload(map[string]string{"document": doc}))
}

// writeContext detaches persistence from the request so a closed
// connection does not abort a half-issued write.
func (s *Server) writeContext(r *http.Request) (context.Context, context.CancelFunc) {
	timeout := s.cfg.WriteTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(context.WithoutCancel(r.Context()), 2*timeout)
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
