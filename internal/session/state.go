// Package session holds the browsing state of one open label document: the
// store, the active set picked by the last query, the tag index over that
// set and the cursor.
package session

import (
	"fmt"
	"strconv"
	"strings"

	"unitview/internal/labels"
	"unitview/internal/query"
	"unitview/internal/tagindex"
)

type Cursor struct {
	ItemID   string
	Position int
}

// State is an immutable snapshot. Every operation returns a new State and
// leaves the receiver untouched.
type State struct {
	doc      string
	store    labels.Store
	query    query.Query
	active   []string
	index    *tagindex.Index
	cursor   Cursor
	tracking []string
}

func NewState(doc string, store labels.Store) State {
	return State{doc: doc, store: store}.recompute()
}

func (s State) Document() string      { return s.doc }
func (s State) Store() labels.Store    { return s.store }
func (s State) Query() query.Query     { return s.query }
func (s State) Index() *tagindex.Index { return s.index }
func (s State) Cursor() Cursor         { return s.cursor }

func (s State) Active() []string {
	out := make([]string, len(s.active))
	copy(out, s.active)
	return out
}

func (s State) Tracking() []string {
	out := make([]string, len(s.tracking))
	copy(out, s.tracking)
	return out
}

// recompute re-runs the query over the store, rebuilds the index and puts
// the cursor on the first active item.
func (s State) recompute() State {
	s.active = s.query.Evaluate(s.store)
	s.index = tagindex.Build(s.active, s.store)
	s.cursor = Cursor{}
	if len(s.active) > 0 {
		s.cursor = Cursor{ItemID: s.active[0]}
	}
	return s
}

// ApplyQuery filters the store with raw. On a parse error the receiver is
// returned unchanged together with the error.
func (s State) ApplyQuery(raw string) (State, error) {
	q, err := query.Parse(raw)
	if err != nil {
		return s, err
	}
	s.query = q
	return s.recompute(), nil
}

func (s State) Next() State {
	return s.step(1)
}

func (s State) Previous() State {
	return s.step(-1)
}

func (s State) step(delta int) State {
	n := len(s.active)
	if n == 0 {
		return s
	}
	i := (s.cursor.Position + delta + n) % n
	s.cursor = Cursor{ItemID: s.active[i], Position: i}
	return s
}

// Select moves the cursor to id, which must be in the active set.
func (s State) Select(id string) (State, error) {
	for i, a := range s.active {
		if a == id {
			s.cursor = Cursor{ItemID: id, Position: i}
			return s, nil
		}
	}
	return s, fmt.Errorf("select %q: %w", id, ErrNotFound)
}

func (s State) entries(id string) ([]string, error) {
	entries, ok := s.store.Entries(id)
	if !ok {
		return nil, fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return entries, nil
}

func (s State) replace(id string, entries []string) State {
	s.store = s.store.With(id, entries)
	return s.recompute()
}

// AddTag appends tag to the item. The bool reports whether the store changed.
func (s State) AddTag(id, tag string) (State, bool, error) {
	entries, err := s.entries(id)
	if err != nil {
		return s, false, err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return s, false, fmt.Errorf("empty tag: %w", ErrInvalidArgument)
	}
	if labels.IsNote(tag) {
		return s, false, fmt.Errorf("tag %q starts with %q: %w", tag, labels.NotePrefix, ErrInvalidArgument)
	}
	if labels.Contains(entries, tag) {
		return s, false, nil
	}
	return s.replace(id, append(entries, tag)), true, nil
}

func (s State) AddNote(id, text string) (State, bool, error) {
	entries, err := s.entries(id)
	if err != nil {
		return s, false, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return s, false, fmt.Errorf("empty note: %w", ErrInvalidArgument)
	}
	return s.replace(id, append(entries, labels.MakeNote(text))), true, nil
}

// RemoveTag drops the first exact occurrence of tag.
func (s State) RemoveTag(id, tag string) (State, bool, error) {
	entries, err := s.entries(id)
	if err != nil {
		return s, false, err
	}
	for i, e := range entries {
		if e == tag {
			next := append(entries[:i:i], entries[i+1:]...)
			return s.replace(id, next), true, nil
		}
	}
	return s, false, nil
}

// RemoveNoteByOrdinal removes the ordinal-th note (1-based, counting notes
// only).
func (s State) RemoveNoteByOrdinal(id string, ordinal int) (State, bool, error) {
	entries, err := s.entries(id)
	if err != nil {
		return s, false, err
	}
	i := labels.NoteIndex(entries, ordinal)
	if i < 0 {
		return s, false, fmt.Errorf("note %d of %q: %w", ordinal, id, ErrInvalidArgument)
	}
	next := append(entries[:i:i], entries[i+1:]...)
	return s.replace(id, next), true, nil
}

// ParseNoteOrdinal reads the "%N" form used to remove a note.
func ParseNoteOrdinal(input string) (int, error) {
	input = strings.TrimSpace(input)
	if !labels.IsNote(input) {
		return 0, fmt.Errorf("note ordinal %q: %w", input, ErrInvalidArgument)
	}
	n, err := strconv.Atoi(strings.TrimSpace(labels.NoteText(input)))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("note ordinal %q: %w", input, ErrInvalidArgument)
	}
	return n, nil
}

// Remove removes a note when input has the "%N" form and a tag otherwise.
func (s State) Remove(id, input string) (State, bool, error) {
	if labels.IsNote(strings.TrimSpace(input)) {
		n, err := ParseNoteOrdinal(input)
		if err != nil {
			return s, false, err
		}
		return s.RemoveNoteByOrdinal(id, n)
	}
	return s.RemoveTag(id, strings.TrimSpace(input))
}

// Fill adds an empty list for every id that is not yet in the store.
func (s State) Fill(ids []string) (State, int) {
	store, added := s.store.Ensure(ids)
	if added == 0 {
		return s, 0
	}
	s.store = store
	return s.recompute(), added
}

// Track sets the comma separated list of tags highlighted in the cloud.
func (s State) Track(raw string) State {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	s.tracking = tags
	return s
}

// Reload swaps in a store read from disk, keeping the query and tracking.
func (s State) Reload(store labels.Store) State {
	s.store = store
	return s.recompute()
}
