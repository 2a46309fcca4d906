package fs

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrUnsafePath = errors.New("unsafe path")

// CleanName checks that name is a single path element: no separators, no
// dot segments, no NUL. Surrounding whitespace is trimmed.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", ErrUnsafePath
	}
	if strings.ContainsRune(name, 0) || strings.ContainsAny(name, `/\`) {
		return "", ErrUnsafePath
	}
	return name, nil
}

// Join resolves name under root and refuses anything that escapes it.
func Join(root string, names ...string) (string, error) {
	parts := []string{root}
	for _, n := range names {
		clean, err := CleanName(n)
		if err != nil {
			return "", err
		}
		parts = append(parts, clean)
	}
	full := filepath.Join(parts...)
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrUnsafePath
	}
	return full, nil
}

func EnsureJSONExt(p string) string {
	if strings.HasSuffix(strings.ToLower(p), ".json") {
		return p
	}
	return p + ".json"
}

func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
