package query

import (
	"strings"

	"unitview/internal/labels"
	"unitview/internal/tagindex"
)

const notePrefix = labels.NotePrefix

// Env is what a clause is evaluated against. Tags indexes the full store.
type Env struct {
	Store labels.Store
	Tags  *tagindex.Index
}

// Clause selects a set of items.
type Clause interface {
	Items(env Env) []string
	String() string
}

// IDClause matches items whose ID contains Substr, ignoring case.
type IDClause struct {
	Substr string
}

func (c IDClause) Items(env Env) []string {
	needle := strings.ToLower(c.Substr)
	var out []string
	env.Store.Range(func(id string, _ []string) bool {
		if strings.Contains(strings.ToLower(id), needle) {
			out = append(out, id)
		}
		return true
	})
	return out
}

func (c IDClause) String() string {
	if strings.Contains(c.Substr, `"`) {
		return "'" + c.Substr + "'"
	}
	return `"` + c.Substr + `"`
}

// NoteClause matches items with at least one note containing Substr,
// ignoring case.
type NoteClause struct {
	Substr string
}

func (c NoteClause) Items(env Env) []string {
	needle := strings.ToLower(c.Substr)
	var out []string
	env.Store.Range(func(id string, entries []string) bool {
		for _, e := range entries {
			if !labels.IsNote(e) {
				continue
			}
			if strings.Contains(strings.ToLower(labels.NoteText(e)), needle) {
				out = append(out, id)
				break
			}
		}
		return true
	})
	return out
}

func (c NoteClause) String() string {
	return notePrefix + c.Substr
}

// TagClause matches items carrying exactly Tag.
type TagClause struct {
	Tag string
}

func (c TagClause) Items(env Env) []string {
	return env.Tags.Items(c.Tag)
}

func (c TagClause) String() string {
	return c.Tag
}
