package tagindex

import (
	"sort"

	"unitview/internal/labels"
)

// TagSummary is one row of the tag cloud.
type TagSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Index maps each tag to the items carrying it within one item subset.
// It is built once and never patched; callers rebuild it after any change.
type Index struct {
	items map[string][]string
	order []string
}

// Build indexes the tags of ids. An item contributes at most once per tag
// even when its list repeats the tag. Notes are skipped.
func Build(ids []string, store labels.Store) *Index {
	idx := &Index{items: make(map[string][]string)}
	for _, id := range ids {
		entries, ok := store.Entries(id)
		if !ok {
			continue
		}
		seen := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			if labels.IsNote(e) {
				continue
			}
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			if _, ok := idx.items[e]; !ok {
				idx.order = append(idx.order, e)
			}
			idx.items[e] = append(idx.items[e], id)
		}
	}
	return idx
}

// Items returns the items tagged with tag, in the order they were indexed.
func (idx *Index) Items(tag string) []string {
	if idx == nil {
		return nil
	}
	list, ok := idx.items[tag]
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

func (idx *Index) Count(tag string) int {
	if idx == nil {
		return 0
	}
	return len(idx.items[tag])
}

func (idx *Index) Has(tag string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.items[tag]
	return ok
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.items)
}

// Tags returns the indexed tags in first-seen order.
func (idx *Index) Tags() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, len(idx.order))
	copy(out, idx.order)
	return out
}

// Summary lists tags by descending count, then by name.
func (idx *Index) Summary() []TagSummary {
	if idx == nil {
		return nil
	}
	out := make([]TagSummary, 0, len(idx.items))
	for name, list := range idx.items {
		out = append(out, TagSummary{Name: name, Count: len(list)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
