package session

import (
	"context"
	"log/slog"
	"sync"

	"unitview/internal/labels"
)

// Persister writes a whole document. version increases with every mutation
// of the document.
type Persister interface {
	Save(ctx context.Context, doc string, store labels.Store, version int64) error
}

// Session is the shared, mutable holder of a State. Readers always see a
// State whose active set and index match its store.
type Session struct {
	mu      sync.Mutex
	state   State
	version int64

	writeMu   sync.Mutex
	committed int64
	persister Persister
}

// New opens a session on store. base is the last version known to be on
// disk; new mutations continue from there.
func New(doc string, store labels.Store, p Persister, base int64) *Session {
	return &Session{
		state:     NewState(doc, store),
		version:   base,
		committed: base,
		persister: p,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.state.View()
	v.Version = s.version
	return v
}

func (s *Session) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Committed is the highest version written successfully.
func (s *Session) Committed() int64 {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.committed
}

func (s *Session) swap(fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	return s.state
}

func (s *Session) ApplyQuery(raw string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.ApplyQuery(raw)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

func (s *Session) Next() State {
	return s.swap(State.Next)
}

func (s *Session) Previous() State {
	return s.swap(State.Previous)
}

func (s *Session) Select(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.Select(id)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

func (s *Session) Track(raw string) State {
	return s.swap(func(st State) State { return st.Track(raw) })
}

// Reload replaces the store after the document changed on disk. The
// external content becomes the committed state.
func (s *Session) Reload(store labels.Store) State {
	return s.swap(func(st State) State { return st.Reload(store) })
}

func (s *Session) AddTag(ctx context.Context, id, tag string) (State, error) {
	return s.mutate(ctx, func(st State) (State, bool, error) { return st.AddTag(id, tag) })
}

func (s *Session) AddNote(ctx context.Context, id, text string) (State, error) {
	return s.mutate(ctx, func(st State) (State, bool, error) { return st.AddNote(id, text) })
}

func (s *Session) RemoveTag(ctx context.Context, id, tag string) (State, error) {
	return s.mutate(ctx, func(st State) (State, bool, error) { return st.RemoveTag(id, tag) })
}

func (s *Session) RemoveNoteByOrdinal(ctx context.Context, id string, ordinal int) (State, error) {
	return s.mutate(ctx, func(st State) (State, bool, error) { return st.RemoveNoteByOrdinal(id, ordinal) })
}

func (s *Session) Remove(ctx context.Context, id, input string) (State, error) {
	return s.mutate(ctx, func(st State) (State, bool, error) { return st.Remove(id, input) })
}

// Fill adds empty entries for ids missing from the store and returns how
// many were added.
func (s *Session) Fill(ctx context.Context, ids []string) (State, int, error) {
	added := 0
	st, err := s.mutate(ctx, func(st State) (State, bool, error) {
		next, n := st.Fill(ids)
		added = n
		return next, n > 0, nil
	})
	return st, added, err
}

// mutate applies fn, publishes the result and then persists it. A failed
// write keeps the new state and returns a *PersistError.
func (s *Session) mutate(ctx context.Context, fn func(State) (State, bool, error)) (State, error) {
	s.mu.Lock()
	next, changed, err := fn(s.state)
	if err != nil || !changed {
		cur := s.state
		s.mu.Unlock()
		return cur, err
	}
	s.version++
	s.state = next
	s.mu.Unlock()

	return next, s.flush(ctx)
}

// flush writes the newest state. Writers queue on writeMu; a writer that
// finds its version already covered by a later commit has nothing to do.
func (s *Session) flush(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	version := s.version
	doc := s.state.doc
	store := s.state.store
	s.mu.Unlock()

	if version <= s.committed {
		slog.Debug("session write superseded", "doc", doc, "version", version, "committed", s.committed)
		return nil
	}
	if err := s.persister.Save(ctx, doc, store, version); err != nil {
		slog.Warn("session write failed", "doc", doc, "version", version, "err", err)
		return &PersistError{Document: doc, Version: version, Err: err}
	}
	s.committed = version
	return nil
}
