package labels

import "strings"

// NotePrefix marks an entry as a free-text note rather than a tag.
const NotePrefix = "%"

func IsNote(entry string) bool {
	return strings.HasPrefix(entry, NotePrefix)
}

func NoteText(entry string) string {
	return strings.TrimPrefix(entry, NotePrefix)
}

func MakeNote(text string) string {
	return NotePrefix + text
}

// Notes returns the display text of every note in entries, in list order.
func Notes(entries []string) []string {
	out := make([]string, 0)
	for _, e := range entries {
		if IsNote(e) {
			out = append(out, NoteText(e))
		}
	}
	return out
}

func Tags(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !IsNote(e) {
			out = append(out, e)
		}
	}
	return out
}

func Contains(entries []string, entry string) bool {
	for _, e := range entries {
		if e == entry {
			return true
		}
	}
	return false
}

// NoteIndex maps a 1-based note ordinal to its position in entries.
// It returns -1 when the ordinal does not name an existing note.
func NoteIndex(entries []string, ordinal int) int {
	if ordinal < 1 {
		return -1
	}
	seen := 0
	for i, e := range entries {
		if !IsNote(e) {
			continue
		}
		seen++
		if seen == ordinal {
			return i
		}
	}
	return -1
}
