// Package query implements the label filter language: clauses joined by
// AND (&&, &), OR (++, ||, |) and NOT (^^, !), applied strictly left to right
// starting from the full item set.
package query

import (
	"strings"

	"unitview/internal/labels"
	"unitview/internal/tagindex"
)

type Op int

const (
	And Op = iota
	Or
	Not
)

func (o Op) String() string {
	switch o {
	case And:
		return "&&"
	case Or:
		return "++"
	case Not:
		return "^^"
	}
	return "?"
}

// Step is one operator with the clause it applies.
type Step struct {
	Op     Op
	Clause Clause
}

// Query is a parsed filter. The zero value is the empty query and selects
// every item.
type Query struct {
	steps []Step
}

// Parse turns raw into a Query. Failures wrap ErrInvalidQuery and carry a
// *SyntaxError.
func Parse(raw string) (Query, error) {
	toks, err := lex(raw)
	if err != nil {
		return Query{}, err
	}
	if len(toks) == 0 {
		return Query{}, nil
	}

	var steps []Step
	pending := And
	wantClause := true
	for i, tok := range toks {
		switch tok.kind {
		case tokOp:
			if !wantClause {
				pending = tok.op
				wantClause = true
				continue
			}
			if i > 0 {
				return Query{}, &SyntaxError{Pos: tok.pos, Token: tok.text, Msg: "operator without a clause"}
			}
			// A leading OR has nothing to widen and acts as AND.
			pending = tok.op
			if pending == Or {
				pending = And
			}
		case tokClause:
			if !wantClause {
				return Query{}, &SyntaxError{Pos: tok.pos, Token: tok.text, Msg: "missing operator between clauses"}
			}
			steps = append(steps, Step{Op: pending, Clause: tok.clause})
			wantClause = false
		}
	}
	if wantClause {
		last := toks[len(toks)-1]
		return Query{}, &SyntaxError{Pos: last.pos, Token: last.text, Msg: "trailing operator"}
	}
	return Query{steps: steps}, nil
}

func (q Query) IsEmpty() bool {
	return len(q.steps) == 0
}

func (q Query) Steps() []Step {
	out := make([]Step, len(q.steps))
	copy(out, q.steps)
	return out
}

// String renders the canonical spelling of q.
func (q Query) String() string {
	var b strings.Builder
	for i, st := range q.steps {
		if i > 0 {
			b.WriteString(" ")
		}
		if i > 0 || st.Op != And {
			b.WriteString(st.Op.String())
			b.WriteString(" ")
		}
		b.WriteString(st.Clause.String())
	}
	return b.String()
}

func (q Query) needsTags() bool {
	for _, st := range q.steps {
		if _, ok := st.Clause.(TagClause); ok {
			return true
		}
	}
	return false
}

// Evaluate returns the matching item IDs in store order.
func (q Query) Evaluate(store labels.Store) []string {
	keys := store.Keys()
	if q.IsEmpty() {
		return keys
	}
	env := Env{Store: store}
	if q.needsTags() {
		env.Tags = tagindex.Build(keys, store)
	}

	current := make(map[string]struct{}, len(keys))
	for _, id := range keys {
		current[id] = struct{}{}
	}
	for _, st := range q.steps {
		matched := st.Clause.Items(env)
		switch st.Op {
		case And:
			keep := make(map[string]struct{}, len(matched))
			for _, id := range matched {
				if _, ok := current[id]; ok {
					keep[id] = struct{}{}
				}
			}
			current = keep
		case Or:
			for _, id := range matched {
				current[id] = struct{}{}
			}
		case Not:
			for _, id := range matched {
				delete(current, id)
			}
		}
	}

	out := make([]string, 0, len(current))
	for _, id := range keys {
		if _, ok := current[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
