package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath finds the units folder named by p. Relative names are tried
// as a sibling of base, then as a child of base, then against the working
// directory. The first existing directory wins.
func ResolvePath(base, p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", fmt.Errorf("units folder: empty path: %w", ErrNotFound)
	}
	var candidates []string
	if filepath.IsAbs(p) {
		candidates = []string{filepath.Clean(p)}
	} else {
		candidates = []string{
			filepath.Join(base, "..", p),
			filepath.Join(base, p),
		}
		if abs, err := filepath.Abs(p); err == nil {
			candidates = append(candidates, abs)
		}
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("units folder %q: %w", p, ErrNotFound)
}
