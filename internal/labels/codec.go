package labels

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

var ErrParse = errors.New("labels: malformed document")

// Decode parses a label document: a JSON object mapping item IDs to arrays
// of strings. Key order is preserved. Empty input is an empty store.
func Decode(data []byte) (Store, error) {
	s := NewStore()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return Store{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Store{}, fmt.Errorf("%w: expected object, got %v", ErrParse, tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Store{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		id, ok := tok.(string)
		if !ok {
			return Store{}, fmt.Errorf("%w: expected item id, got %v", ErrParse, tok)
		}
		var entries []string
		if err := dec.Decode(&entries); err != nil {
			return Store{}, fmt.Errorf("%w: item %q: %v", ErrParse, id, err)
		}
		s = s.set(id, entries)
	}
	tok, err = dec.Token()
	if err != nil {
		return Store{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '}' {
		return Store{}, fmt.Errorf("%w: unterminated object", ErrParse)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Store{}, fmt.Errorf("%w: trailing data after object", ErrParse)
	}
	return s, nil
}

// Encode writes the store with two-space indentation and one entry per line,
// the layout the label files have always used.
func Encode(s Store) ([]byte, error) {
	if s.Len() == 0 {
		return []byte("{}"), nil
	}
	var b bytes.Buffer
	b.WriteString("{\n")
	for i, id := range s.keys {
		key, err := json.MarshalNoEscape(id)
		if err != nil {
			return nil, err
		}
		b.WriteString("  ")
		b.Write(key)
		b.WriteString(": ")
		entries := s.entries[id]
		if len(entries) == 0 {
			b.WriteString("[]")
		} else {
			b.WriteString("[\n")
			for j, e := range entries {
				val, err := json.MarshalNoEscape(e)
				if err != nil {
					return nil, err
				}
				b.WriteString("    ")
				b.Write(val)
				if j < len(entries)-1 {
					b.WriteString(",")
				}
				b.WriteString("\n")
			}
			b.WriteString("  ]")
		}
		if i < len(s.keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.Bytes(), nil
}
