package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitview/internal/config"
	"unitview/internal/labels"
	"unitview/internal/state"
)

type testEnv struct {
	srv   *Server
	ts    *httptest.Server
	units string
	db    *state.DB
}

func newTestEnv(t *testing.T, doc string) *testEnv {
	t.Helper()
	units := t.TempDir()
	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, os.MkdirAll(filepath.Join(units, id), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(units, "u1", "a.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(units, "u1", "notes.txt"), []byte("x"), 0o644))
	if doc != "" {
		require.NoError(t, os.WriteFile(filepath.Join(units, "labels.json"), []byte(doc), 0o644))
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	db, err := state.Open(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		UnitsPath:     units,
		WriteTimeout:  time.Second,
		WatchDebounce: 20 * time.Millisecond,
	}
	srv := NewServer(ctx, cfg, db)
	require.NoError(t, srv.Start(ctx))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{srv: srv, ts: ts, units: units, db: db}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: clientCookie, Value: "test-client"})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func decodeView(t *testing.T, data []byte) unitView {
	t.Helper()
	var v unitView
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

const sampleDoc = `{"u1": ["red", "%first note"], "u2": ["blue"], "u3": ["red", "blue"]}`

func TestSessionEndpoint(t *testing.T) {
	env := newTestEnv(t, sampleDoc)

	resp, body := env.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, body)
	assert.Equal(t, "labels.json", v.Document)
	assert.Equal(t, "u1", v.ItemID)
	assert.Equal(t, "u1 (1/3)", v.Label)
	assert.Equal(t, []string{"a.png"}, v.Images)
	assert.True(t, v.ImagesExist)
	require.Len(t, v.NotesHTML, 1)
	assert.Contains(t, string(v.NotesHTML[0]), "first note")
}

func TestNoDocumentOpen(t *testing.T) {
	env := newTestEnv(t, "")

	resp, _ := env.do(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Choose a units folder")
}

func TestQueryAndNavigation(t *testing.T) {
	env := newTestEnv(t, sampleDoc)

	resp, body := env.do(t, http.MethodPost, "/api/query", map[string]string{"query": "red"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, body)
	assert.Equal(t, 2, v.Total)
	assert.Equal(t, "u1", v.ItemID)

	_, body = env.do(t, http.MethodPost, "/api/next", nil)
	assert.Equal(t, "u3", decodeView(t, body).ItemID)
	_, body = env.do(t, http.MethodPost, "/api/next", nil)
	assert.Equal(t, "u1", decodeView(t, body).ItemID)
	_, body = env.do(t, http.MethodPost, "/api/previous", nil)
	assert.Equal(t, "u3", decodeView(t, body).ItemID)

	_, body = env.do(t, http.MethodPost, "/api/select", map[string]string{"id": "u1"})
	assert.Equal(t, "u1", decodeView(t, body).ItemID)
	resp, _ = env.do(t, http.MethodPost, "/api/select", map[string]string{"id": "u2"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvalidQueryKeepsStateAndToasts(t *testing.T) {
	env := newTestEnv(t, sampleDoc)
	env.do(t, http.MethodPost, "/api/query", map[string]string{"query": "blue"})

	resp, body := env.do(t, http.MethodPost, "/api/query", map[string]string{"query": "red &&"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), invalidQueryMessage)

	_, body = env.do(t, http.MethodGet, "/api/session", nil)
	v := decodeView(t, body)
	assert.Equal(t, "blue", v.Query)
	assert.Equal(t, 2, v.Total)

	_, body = env.do(t, http.MethodGet, "/api/toasts", nil)
	var toasts []Toast
	require.NoError(t, json.Unmarshal(body, &toasts))
	require.Len(t, toasts, 1)
	assert.Equal(t, toastError, toasts[0].Kind)

	resp, _ = env.do(t, http.MethodPost, "/api/toasts/dismiss", map[string]string{"id": toasts[0].ID})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	_, body = env.do(t, http.MethodGet, "/api/toasts", nil)
	assert.JSONEq(t, "[]", string(body))
}

func loadDoc(t *testing.T, env *testEnv) labels.Store {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(env.units, "labels.json"))
	require.NoError(t, err)
	store, err := labels.Decode(data)
	require.NoError(t, err)
	return store
}

func TestMutationsPersist(t *testing.T) {
	env := newTestEnv(t, sampleDoc)

	resp, body := env.do(t, http.MethodPost, "/api/tags", map[string]string{"tag": " green "})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, body)
	assert.Equal(t, []string{"red", "%first note", "green"}, v.Entries)
	assert.Empty(t, v.PersistError)

	_, body = env.do(t, http.MethodPost, "/api/notes", map[string]string{"id": "u2", "text": "second"})
	v = decodeView(t, body)
	assert.Equal(t, "u1", v.ItemID)

	entries, _ := loadDoc(t, env).Entries("u2")
	assert.Equal(t, []string{"blue", "%second"}, entries)

	_, _ = env.do(t, http.MethodPost, "/api/remove", map[string]string{"value": "%1"})
	_, body = env.do(t, http.MethodPost, "/api/remove", map[string]string{"value": "green"})
	v = decodeView(t, body)
	assert.Equal(t, []string{"red"}, v.Entries)

	entries, _ = loadDoc(t, env).Entries("u1")
	assert.Equal(t, []string{"red"}, entries)

	_, body = env.do(t, http.MethodGet, "/api/writes", nil)
	var writes []writeRecord
	require.NoError(t, json.Unmarshal(body, &writes))
	require.Len(t, writes, 4)
	assert.Equal(t, int64(4), writes[0].Version)
	assert.Equal(t, "ok", writes[0].Status)
}

func TestMutationErrors(t *testing.T) {
	env := newTestEnv(t, sampleDoc)

	resp, _ := env.do(t, http.MethodPost, "/api/tags", map[string]string{"tag": "%sneaky"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/remove", map[string]string{"value": "%5"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/tags", map[string]string{"id": "nope", "tag": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	entries, _ := loadDoc(t, env).Entries("u1")
	assert.Equal(t, []string{"red", "%first note"}, entries)
}

func TestFillAddsFolders(t *testing.T) {
	env := newTestEnv(t, `{"u2": []}`)
	require.NoError(t, os.MkdirAll(filepath.Join(env.units, "u4"), 0o755))

	resp, body := env.do(t, http.MethodPost, "/api/fill", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fill struct {
		Added int `json:"added"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &fill))
	assert.Equal(t, 3, fill.Added)
	assert.Equal(t, 4, fill.Total)
	assert.Equal(t, []string{"u2", "u1", "u3", "u4"}, loadDoc(t, env).Keys())
}

func TestDocumentsCreateAndOpen(t *testing.T) {
	env := newTestEnv(t, sampleDoc)

	resp, body := env.do(t, http.MethodPost, "/api/documents", map[string]string{"name": "second"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v := decodeView(t, body)
	assert.Equal(t, "second.json", v.Document)
	assert.Equal(t, 0, v.Items)

	resp, _ = env.do(t, http.MethodPost, "/api/documents", map[string]string{"name": "second.json"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = env.do(t, http.MethodPost, "/api/documents", map[string]string{"name": "../escape"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = env.do(t, http.MethodGet, "/api/documents", nil)
	var docs documentsResponse
	require.NoError(t, json.Unmarshal(body, &docs))
	assert.Equal(t, []string{"labels.json", "second.json"}, docs.Documents)
	assert.Equal(t, "second.json", docs.Current)

	_, body = env.do(t, http.MethodPost, "/api/documents/open", map[string]string{"name": "labels"})
	assert.Equal(t, 3, decodeView(t, body).Items)

	resp, _ = env.do(t, http.MethodPost, "/api/documents/open", map[string]string{"name": "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	last, err := env.db.LastUsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "labels.json", last.Document)
}

func TestMalformedDocument(t *testing.T) {
	env := newTestEnv(t, sampleDoc)
	require.NoError(t, os.WriteFile(filepath.Join(env.units, "broken.json"), []byte(`{"u1": [`), 0o644))

	resp, _ := env.do(t, http.MethodPost, "/api/documents/open", map[string]string{"name": "broken.json"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRawDocumentHighlighted(t *testing.T) {
	env := newTestEnv(t, sampleDoc)
	resp, body := env.do(t, http.MethodGet, "/api/documents/raw", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	assert.Contains(t, string(body), "first note")
}

func TestUnitImages(t *testing.T) {
	env := newTestEnv(t, sampleDoc)

	resp, body := env.do(t, http.MethodGet, "/units/u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"exists": true, "images": ["a.png"]}`, string(body))

	resp, body = env.do(t, http.MethodGet, "/units/u9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"exists": false, "images": []}`, string(body))

	resp, body = env.do(t, http.MethodGet, "/units/u1/a.png", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png", string(body))

	resp, _ = env.do(t, http.MethodGet, "/units/u1/notes.txt", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/units/u1/b.png", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPaths(t *testing.T) {
	env := newTestEnv(t, sampleDoc)

	_, body := env.do(t, http.MethodGet, "/api/paths", nil)
	var paths pathsResponse
	require.NoError(t, json.Unmarshal(body, &paths))
	assert.Equal(t, env.units, paths.UnitsPath)
	assert.True(t, paths.HasDocuments)
	assert.Equal(t, "../"+filepath.Base(filepath.Dir(env.units))+"/"+filepath.Base(env.units), paths.DisplayPath)

	other := t.TempDir()
	resp, body := env.do(t, http.MethodPost, "/api/paths", map[string]string{"path": other})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &paths))
	assert.Equal(t, other, paths.UnitsPath)
	assert.False(t, paths.HasDocuments)

	resp, _ = env.do(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/paths", map[string]string{"path": filepath.Join(other, "missing")})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItems(t *testing.T) {
	env := newTestEnv(t, sampleDoc)
	_, body := env.do(t, http.MethodGet, "/api/items", nil)
	assert.JSONEq(t, `["u1", "u2", "u3"]`, string(body))
}

func TestTrack(t *testing.T) {
	env := newTestEnv(t, sampleDoc)
	_, body := env.do(t, http.MethodPost, "/api/track", map[string]string{"tags": "blue, , red"})
	v := decodeView(t, body)
	assert.Equal(t, []string{"blue", "red"}, v.Tracking)
	for _, c := range v.Cloud {
		assert.True(t, c.Tracked, c.Name)
	}
}

func TestHomeRendersUnit(t *testing.T) {
	env := newTestEnv(t, sampleDoc)
	resp, body := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := string(body)
	assert.Contains(t, page, "u1 (1/3)")
	assert.Contains(t, page, `/units/u1/a.png`)
	assert.Contains(t, page, "labels.json")

	resp, _ = env.do(t, http.MethodGet, "/static/app.js", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientCookieIssued(t *testing.T) {
	env := newTestEnv(t, sampleDoc)
	resp, err := http.Get(env.ts.URL + "/api/session")
	require.NoError(t, err)
	resp.Body.Close()
	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == clientCookie && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestExternalEditReloads(t *testing.T) {
	units := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(units, "labels.json"), []byte(sampleDoc), 0o644))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Config{UnitsPath: units, Document: "labels.json", Watch: true, WatchDebounce: 20 * time.Millisecond, WriteTimeout: time.Second}
	srv := NewServer(ctx, cfg, nil)
	require.NoError(t, srv.Start(ctx))

	sess, err := srv.session()
	require.NoError(t, err)
	require.Equal(t, 3, sess.State().Store().Len())

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(units, "labels.json"), []byte(`{"z": ["x"]}`), 0o644))

	require.Eventually(t, func() bool {
		return sess.State().Store().Len() == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, "z", sess.State().Cursor().ItemID)
}
