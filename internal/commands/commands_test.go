package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitview/internal/labels"
)

type fixture struct {
	units string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	units := t.TempDir()
	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, os.MkdirAll(filepath.Join(units, id), 0o755))
	}
	doc := `{"u1": ["red", "%first"], "u2": ["blue", "red"]}`
	require.NoError(t, os.WriteFile(filepath.Join(units, "labels.json"), []byte(doc), 0o644))

	t.Setenv("UNITVIEW_DATA_PATH", t.TempDir())
	t.Setenv("UNITVIEW_CONFIG_PATH", t.TempDir())
	t.Setenv("UNITVIEW_UNITS_PATH", "")
	t.Setenv("UNITVIEW_DOCUMENT", "")
	return fixture{units: units}
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--units", f.units, "--doc", "labels", "-o", "json"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (f fixture) doc(t *testing.T) labels.Store {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.units, "labels.json"))
	require.NoError(t, err)
	store, err := labels.Decode(data)
	require.NoError(t, err)
	return store
}

func TestQuery(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "query", "red", "^^", "blue")
	require.NoError(t, err)
	var res struct {
		Query string   `json:"query"`
		Items []string `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"u1"}, res.Items)
	assert.Equal(t, "red ^^ blue", res.Query)
}

func TestQueryErrorAsJSON(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "query", "red &&")
	require.NoError(t, err)
	assert.Contains(t, out, `"error"`)
}

func TestTags(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "tags")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name": "red", "count": 2}, {"name": "blue", "count": 1}]`, out)
}

func TestTagAndNoteRoundTrip(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "tag", "add", "u3", "green")
	require.NoError(t, err)
	_, err = f.run(t, "note", "add", "u3", "looks", "fine")
	require.NoError(t, err)
	entries, _ := f.doc(t).Entries("u3")
	assert.Equal(t, []string{"green", "%looks fine"}, entries)

	out, err := f.run(t, "show", "u3")
	require.NoError(t, err)
	assert.Contains(t, out, `"itemId": "u3"`)

	_, err = f.run(t, "note", "rm", "u3", "%1")
	require.NoError(t, err)
	_, err = f.run(t, "tag", "rm", "u3", "green")
	require.NoError(t, err)
	entries, _ = f.doc(t).Entries("u3")
	assert.Empty(t, entries)
}

func TestNoteRemoveOutOfRange(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "note", "rm", "u1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "invalid argument")
	entries, _ := f.doc(t).Entries("u1")
	assert.Equal(t, []string{"red", "%first"}, entries)
}

func TestFill(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "fill")
	require.NoError(t, err)
	assert.Contains(t, out, `"added": 1`)
	assert.Equal(t, []string{"u1", "u2", "u3"}, f.doc(t).Keys())
}

func TestDocsAndNew(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, "new", "second")
	require.NoError(t, err)
	out, err := f.run(t, "docs")
	require.NoError(t, err)
	var res struct {
		Documents []string `json:"documents"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"labels.json", "second.json"}, res.Documents)
}

func TestPrettyErrorReturned(t *testing.T) {
	f := newFixture(t)
	cmd := New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--units", f.units, "--doc", "missing", "show", "u1"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestNoteOrdinal(t *testing.T) {
	n, err := noteOrdinal("2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = noteOrdinal("%3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	_, err = noteOrdinal("x")
	assert.Error(t, err)
}
