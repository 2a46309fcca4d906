package query

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokOp tokenKind = iota
	tokClause
)

type token struct {
	kind   tokenKind
	op     Op
	clause Clause
	text   string
	pos    int
}

// opAt reports the operator starting at s[i] and its width in bytes.
func opAt(s string, i int) (Op, int, bool) {
	switch s[i] {
	case '&':
		if strings.HasPrefix(s[i:], "&&") {
			return And, 2, true
		}
		return And, 1, true
	case '|':
		if strings.HasPrefix(s[i:], "||") {
			return Or, 2, true
		}
		return Or, 1, true
	case '!':
		return Not, 1, true
	case '+':
		if strings.HasPrefix(s[i:], "++") {
			return Or, 2, true
		}
	case '^':
		if strings.HasPrefix(s[i:], "^^") {
			return Not, 2, true
		}
	}
	return 0, 0, false
}

func lex(raw string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(raw) {
		r := rune(raw[i])
		if r < 0x80 && unicode.IsSpace(r) {
			i++
			continue
		}
		if op, w, ok := opAt(raw, i); ok {
			toks = append(toks, token{kind: tokOp, op: op, text: raw[i : i+w], pos: i})
			i += w
			continue
		}
		if raw[i] == '"' || raw[i] == '\'' {
			quote := raw[i]
			end := strings.IndexByte(raw[i+1:], quote)
			if end < 0 {
				return nil, &SyntaxError{Pos: i, Token: raw[i:], Msg: "unterminated quote"}
			}
			lit := raw[i+1 : i+1+end]
			toks = append(toks, token{kind: tokClause, clause: IDClause{Substr: lit}, text: raw[i : i+end+2], pos: i})
			i += end + 2
			continue
		}
		start := i
		for i < len(raw) {
			if _, _, ok := opAt(raw, i); ok {
				break
			}
			i++
		}
		text := strings.TrimSpace(raw[start:i])
		if text == "" {
			continue
		}
		toks = append(toks, token{kind: tokClause, clause: bareClause(text), text: text, pos: start})
	}
	return toks, nil
}

func bareClause(text string) Clause {
	if strings.HasPrefix(text, notePrefix) {
		return NoteClause{Substr: strings.TrimSpace(strings.TrimPrefix(text, notePrefix))}
	}
	return TagClause{Tag: text}
}
