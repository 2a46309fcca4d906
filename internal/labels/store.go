package labels

// Store maps item IDs to their entry lists and remembers the order in which
// IDs were first seen. A Store is not modified in place once built; With and
// Ensure return a new value that shares the untouched entry slices.
type Store struct {
	keys    []string
	entries map[string][]string
}

func NewStore() Store {
	return Store{entries: make(map[string][]string)}
}

// FromPairs builds a store from ids and lists given in order. It is mostly a
// convenience for tests and for callers that already hold ordered data.
func FromPairs(pairs ...Pair) Store {
	s := NewStore()
	for _, p := range pairs {
		s = s.set(p.ID, append([]string(nil), p.Entries...))
	}
	return s
}

type Pair struct {
	ID      string
	Entries []string
}

func (s Store) Len() int {
	return len(s.keys)
}

// Keys returns a copy of the item IDs in store order.
func (s Store) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s Store) Has(id string) bool {
	_, ok := s.entries[id]
	return ok
}

// Entries returns a copy of the item's entry list.
func (s Store) Entries(id string) ([]string, bool) {
	list, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	out := make([]string, len(list))
	copy(out, list)
	return out, true
}

// Range calls fn for every item in store order until fn returns false.
// The entries slice must not be modified by fn.
func (s Store) Range(fn func(id string, entries []string) bool) {
	for _, id := range s.keys {
		if !fn(id, s.entries[id]) {
			return
		}
	}
}

// With returns a store where id holds entries. New IDs are appended.
func (s Store) With(id string, entries []string) Store {
	out := s.clone()
	list := make([]string, len(entries))
	copy(list, entries)
	return out.set(id, list)
}

// Ensure returns a store where every id in ids is present, adding empty
// lists for the missing ones in the given order, and the number added.
func (s Store) Ensure(ids []string) (Store, int) {
	added := 0
	out := s.clone()
	for _, id := range ids {
		if out.Has(id) {
			continue
		}
		out = out.set(id, []string{})
		added++
	}
	if added == 0 {
		return s, 0
	}
	return out, added
}

func (s Store) clone() Store {
	out := Store{
		keys:    make([]string, len(s.keys), len(s.keys)+1),
		entries: make(map[string][]string, len(s.entries)+1),
	}
	copy(out.keys, s.keys)
	for k, v := range s.entries {
		out.entries[k] = v
	}
	return out
}

func (s Store) set(id string, entries []string) Store {
	if s.entries == nil {
		s.entries = make(map[string][]string)
	}
	if _, ok := s.entries[id]; !ok {
		s.keys = append(s.keys, id)
	}
	if entries == nil {
		entries = []string{}
	}
	s.entries[id] = entries
	return s
}
