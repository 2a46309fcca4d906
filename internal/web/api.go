package web

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"unitview/internal/labels"
	"unitview/internal/library"
	"unitview/internal/query"
	"unitview/internal/session"
	storagefs "unitview/internal/storage/fs"
)

const invalidQueryMessage = "Invalid search format"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response", "err", err)
	}
}

// decodeJSON reads the request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("request body: %v: %w", err, session.ErrInvalidArgument)
}

func eventPayload(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidQuery),
		errors.Is(err, session.ErrInvalidArgument),
		errors.Is(err, storagefs.ErrUnsafePath):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound), errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrExists):
		return http.StatusConflict
	case errors.Is(err, labels.ErrParse):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch {
	case errors.Is(err, query.ErrInvalidQuery):
		msg = invalidQueryMessage
		s.addToast(r, toastError, msg)
	case status == http.StatusInternalServerError:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	default:
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) buildView(sess *session.Session) *unitView {
	v := &unitView{View: sess.View(), NotesHTML: []template.HTML{}, Images: []string{}}
	for _, n := range v.Notes {
		h, err := renderMarkdown(n.Text)
		if err != nil {
			h = template.HTML(template.HTMLEscapeString(n.Text))
		}
		v.NotesHTML = append(v.NotesHTML, h)
	}
	if lib := s.library(); lib != nil && v.ItemID != "" {
		images, err := lib.Images(v.ItemID)
		if err == nil {
			v.Images = images
			v.ImagesExist = true
		}
	}
	return v
}

func (s *Server) respondView(w http.ResponseWriter, sess *session.Session) {
	writeJSON(w, http.StatusOK, s.buildView(sess))
}

// respondMutation reports a mutation. A failed write still answers with the
// new view; the failure rides along in persistError and as a toast.
func (s *Server) respondMutation(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	var perr *session.PersistError
	if err != nil && !errors.As(err, &perr) {
		s.writeError(w, r, err)
		return
	}
	v := s.buildView(sess)
	if perr != nil {
		v.PersistError = perr.Error()
		s.addToast(r, toastError, fmt.Sprintf("Could not save %s: %v", perr.Document, perr.Err))
	}
	writeJSON(w, http.StatusOK, v)
}

// target resolves the item a mutation applies to, defaulting to the cursor.
func target(sess *session.Session, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id != "" {
		return id, nil
	}
	if cur := sess.State().Cursor().ItemID; cur != "" {
		return cur, nil
	}
	return "", fmt.Errorf("no item selected: %w", session.ErrNotFound)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondView(w, sess)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := sess.ApplyQuery(req.Query); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondView(w, sess)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Next()
	s.respondView(w, sess)
}

func (s *Server) handlePrevious(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Previous()
	s.respondView(w, sess)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := sess.Select(strings.TrimSpace(req.ID)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondView(w, sess)
}

func (s *Server) handleAddTag(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID  string `json:"id"`
		Tag string `json:"tag"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := target(sess, req.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.writeContext(r)
	defer cancel()
	_, err = sess.AddTag(ctx, id, req.Tag)
	s.respondMutation(w, r, sess, err)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := target(sess, req.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.writeContext(r)
	defer cancel()
	_, err = sess.AddNote(ctx, id, req.Text)
	s.respondMutation(w, r, sess, err)
}

// handleRemove takes a tag or the "%N" form naming the N-th note.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := target(sess, req.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.writeContext(r)
	defer cancel()
	_, err = sess.Remove(ctx, id, req.Value)
	s.respondMutation(w, r, sess, err)
}

func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ids, err := s.library().ItemIDs()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.writeContext(r)
	defer cancel()
	_, added, err := sess.Fill(ctx, ids)
	var perr *session.PersistError
	if err != nil && !errors.As(err, &perr) {
		s.writeError(w, r, err)
		return
	}
	resp := fillResponse{unitView: s.buildView(sess), Added: added}
	if perr != nil {
		resp.PersistError = perr.Error()
		s.addToast(r, toastError, fmt.Sprintf("Could not save %s: %v", perr.Document, perr.Err))
	} else if added > 0 {
		s.addToast(r, toastInfo, fmt.Sprintf("Added %d units", added))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tags string `json:"tags"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.Track(req.Tags)
	s.respondView(w, sess)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	resp := documentsResponse{Documents: []string{}}
	lib := s.library()
	if lib == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	docs, err := lib.Documents()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs != nil {
		resp.Documents = docs
	}
	if sess, err := s.session(); err == nil {
		resp.Current = sess.State().Document()
	}
	writeJSON(w, http.StatusOK, resp)
}

type documentRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	lib := s.library()
	if lib == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}
	name, err := lib.Create(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.openDocument(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.addToast(r, toastInfo, "Created "+name)
	s.respondView(w, sess)
}

func (s *Server) handleOpenDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.openDocument(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondView(w, sess)
}

func (s *Server) handleRawDocument(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := labels.Encode(sess.State().Store())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := highlightJSON(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleWrites(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := []writeRecord{}
	if s.db == nil {
		writeJSON(w, http.StatusOK, out)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := s.db.RecentWrites(r.Context(), sess.State().Document(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, rec := range recs {
		out = append(out, writeRecord{
			Version:   rec.Version,
			Status:    string(rec.Status),
			Message:   rec.Message,
			WrittenAt: rec.WrittenAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func displayPath(p string) string {
	if p == "" {
		return ""
	}
	return "../" + filepath.Base(filepath.Dir(p)) + "/" + filepath.Base(p)
}

func (s *Server) pathsResponse() (pathsResponse, error) {
	resp := pathsResponse{Documents: []string{}}
	lib := s.library()
	if lib == nil {
		return resp, nil
	}
	docs, err := lib.Documents()
	if err != nil {
		return resp, err
	}
	resp.UnitsPath = lib.Root()
	resp.DisplayPath = displayPath(lib.Root())
	resp.HasDocuments = len(docs) > 0
	if docs != nil {
		resp.Documents = docs
	}
	return resp, nil
}

func (s *Server) handleGetPaths(w http.ResponseWriter, r *http.Request) {
	resp, err := s.pathsResponse()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetPaths(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	resolved, err := library.ResolvePath(workingDir(), req.Path)
	if err != nil {
		s.addToast(r, toastError, "Selected folder does not exist")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.setLibrary(r.Context(), resolved); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.pathsResponse()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	lib := s.library()
	if lib == nil {
		s.writeError(w, r, errNoLibrary)
		return
	}
	ids, err := lib.ItemIDs()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleToasts(w http.ResponseWriter, r *http.Request) {
	toasts := s.toasts.List(clientKey(r))
	if toasts == nil {
		toasts = []Toast{}
	}
	writeJSON(w, http.StatusOK, toasts)
}

func (s *Server) handleDismissToast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.toasts.Remove(clientKey(r), req.ID)
	w.WriteHeader(http.StatusNoContent)
}
