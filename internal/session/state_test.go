package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unitview/internal/labels"
	"unitview/internal/query"
)

func exampleState() State {
	return NewState("labels.json", labels.FromPairs(
		labels.Pair{ID: "u1", Entries: []string{"red", "%first note", "blue"}},
		labels.Pair{ID: "u2", Entries: []string{"red"}},
	))
}

func TestApplyQueryExample(t *testing.T) {
	st, err := exampleState().ApplyQuery("red")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, st.Active())
	assert.Equal(t, 2, st.Index().Count("red"))
	assert.Equal(t, []string{"u1", "u2"}, st.Index().Items("red"))
	assert.Equal(t, 1, st.Index().Count("blue"))
	assert.Equal(t, []string{"u1"}, st.Index().Items("blue"))

	st, err = st.ApplyQuery("red ^^ blue")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, st.Active())
	assert.Equal(t, Cursor{ItemID: "u2"}, st.Cursor())
	assert.False(t, st.Index().Has("blue"))
}

func TestApplyInvalidQueryKeepsState(t *testing.T) {
	st, err := exampleState().ApplyQuery("red")
	require.NoError(t, err)
	st = st.Next()

	got, err := st.ApplyQuery("red && ")
	require.ErrorIs(t, err, query.ErrInvalidQuery)
	assert.Equal(t, st.Active(), got.Active())
	assert.Equal(t, st.Cursor(), got.Cursor())
	assert.Equal(t, "red", got.Query().String())
}

func TestEmptyQueryRestoresAll(t *testing.T) {
	st, err := exampleState().ApplyQuery("blue")
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, st.Active())
	st, err = st.ApplyQuery("  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, st.Active())
}

func TestNavigationWraps(t *testing.T) {
	st := exampleState()
	assert.Equal(t, "u2", st.Next().Cursor().ItemID)
	assert.Equal(t, "u1", st.Next().Next().Cursor().ItemID)
	assert.Equal(t, Cursor{ItemID: "u2", Position: 1}, st.Previous().Cursor())

	empty := NewState("empty.json", labels.NewStore())
	assert.Equal(t, Cursor{}, empty.Next().Cursor())
	assert.Equal(t, Cursor{}, empty.Previous().Cursor())
}

func TestSelect(t *testing.T) {
	st, err := exampleState().Select("u2")
	require.NoError(t, err)
	assert.Equal(t, Cursor{ItemID: "u2", Position: 1}, st.Cursor())

	filtered, err := st.ApplyQuery("blue")
	require.NoError(t, err)
	_, err = filtered.Select("u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddTag(t *testing.T) {
	st := exampleState().Next()
	next, changed, err := st.AddTag("u2", "green")
	require.NoError(t, err)
	assert.True(t, changed)
	entries, _ := next.Store().Entries("u2")
	assert.Equal(t, []string{"red", "green"}, entries)
	assert.Equal(t, 1, next.Index().Count("green"))
	assert.Equal(t, Cursor{ItemID: "u1"}, next.Cursor())

	old, _ := st.Store().Entries("u2")
	assert.Equal(t, []string{"red"}, old)

	same, changed, err := next.AddTag("u2", "green")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, next.Store().Keys(), same.Store().Keys())

	_, _, err = st.AddTag("nope", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = st.AddTag("u1", "  ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, _, err = st.AddTag("u1", "%sneaky")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMutationRerunsQuery(t *testing.T) {
	st, err := exampleState().ApplyQuery("blue")
	require.NoError(t, err)
	st, _, err = st.AddTag("u2", "blue")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, st.Active())

	st, _, err = st.RemoveTag("u1", "blue")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, st.Active())
	assert.Equal(t, Cursor{ItemID: "u2"}, st.Cursor())
}

func TestRemoveTagFirstOccurrence(t *testing.T) {
	st := NewState("d.json", labels.FromPairs(labels.Pair{ID: "u1", Entries: []string{"a", "b", "a"}}))
	st, changed, err := st.RemoveTag("u1", "a")
	require.NoError(t, err)
	assert.True(t, changed)
	entries, _ := st.Store().Entries("u1")
	assert.Equal(t, []string{"b", "a"}, entries)

	_, changed, err = st.RemoveTag("u1", "zzz")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestNotes(t *testing.T) {
	st := NewState("d.json", labels.FromPairs(labels.Pair{ID: "u1", Entries: []string{"%one", "red", "%two", "blue", "%three"}}))

	next, changed, err := st.RemoveNoteByOrdinal("u1", 2)
	require.NoError(t, err)
	assert.True(t, changed)
	entries, _ := next.Store().Entries("u1")
	assert.Equal(t, []string{"%one", "red", "blue", "%three"}, entries)

	same, changed, err := st.RemoveNoteByOrdinal("u1", 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.False(t, changed)
	entries, _ = same.Store().Entries("u1")
	assert.Equal(t, []string{"%one", "red", "%two", "blue", "%three"}, entries)

	added, _, err := st.AddNote("u1", " four ")
	require.NoError(t, err)
	entries, _ = added.Store().Entries("u1")
	assert.Equal(t, "%four", entries[len(entries)-1])

	_, _, err = st.AddNote("u1", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRemoveDispatch(t *testing.T) {
	st := NewState("d.json", labels.FromPairs(labels.Pair{ID: "u1", Entries: []string{"red", "%one", "%two"}}))

	next, _, err := st.Remove("u1", "%1")
	require.NoError(t, err)
	entries, _ := next.Store().Entries("u1")
	assert.Equal(t, []string{"red", "%two"}, entries)

	next, _, err = st.Remove("u1", " red ")
	require.NoError(t, err)
	entries, _ = next.Store().Entries("u1")
	assert.Equal(t, []string{"%one", "%two"}, entries)

	_, _, err = st.Remove("u1", "%x")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseNoteOrdinal(t *testing.T) {
	n, err := ParseNoteOrdinal("%2")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, bad := range []string{"2", "%", "%0", "%-1", "%two"} {
		_, err := ParseNoteOrdinal(bad)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument for %q, got %v", bad, err)
		}
	}
}

func TestFill(t *testing.T) {
	st := exampleState()
	next, added := st.Fill([]string{"u0", "u1", "u3"})
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"u1", "u2", "u0", "u3"}, next.Active())

	same, added := next.Fill([]string{"u0"})
	assert.Equal(t, 0, added)
	assert.Equal(t, next.Active(), same.Active())
}

func TestViewAndTracking(t *testing.T) {
	st := exampleState().Track(" blue, ,green ")
	assert.Equal(t, []string{"blue", "green"}, st.Tracking())

	v := st.View()
	assert.Equal(t, "u1 (1/2)", v.Label)
	assert.Equal(t, []Note{{Ordinal: 1, Text: "first note"}}, v.Notes)
	assert.Equal(t, []CloudTag{
		{Name: "red", Count: 2, OnItem: true},
		{Name: "blue", Count: 1, OnItem: true, Tracked: true},
	}, v.Cloud)

	v = st.Next().View()
	assert.Equal(t, "u2 (2/2)", v.Label)
	assert.False(t, v.Cloud[1].OnItem)

	empty, err := st.ApplyQuery("nothing")
	require.NoError(t, err)
	v = empty.View()
	assert.Equal(t, "No Unit Selected", v.Label)
	assert.Empty(t, v.Cloud)
}

func TestReloadKeepsQuery(t *testing.T) {
	st, err := exampleState().ApplyQuery("blue")
	require.NoError(t, err)
	st = st.Reload(labels.FromPairs(
		labels.Pair{ID: "u7", Entries: []string{"blue"}},
		labels.Pair{ID: "u8"},
	))
	assert.Equal(t, []string{"u7"}, st.Active())
	assert.Equal(t, "blue", st.Query().String())
}
