package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	storagefs "unitview/internal/storage/fs"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".webp": true, ".tiff": true, ".svg": true, ".pdf": true, ".eps": true,
}

func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

func (l *Library) itemDir(id string) (string, error) {
	dir, err := storagefs.Join(l.root, id)
	if err != nil {
		return "", fmt.Errorf("item %q: %w", id, err)
	}
	if storagefs.IsHidden(filepath.Base(dir)) {
		return "", fmt.Errorf("item %q: %w", id, ErrNotFound)
	}
	return dir, nil
}

// Images lists the image files of an item, sorted by name.
func (l *Library) Images(id string) ([]string, error) {
	dir, err := l.itemDir(id)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("item folder %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	out := []string{}
	for _, e := range entries {
		if !e.IsDir() && IsImage(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// ImagePath resolves an image of an item for serving.
func (l *Library) ImagePath(id, name string) (string, error) {
	if _, err := l.itemDir(id); err != nil {
		return "", err
	}
	path, err := storagefs.Join(l.root, id, name)
	if err != nil {
		return "", fmt.Errorf("image %q: %w", name, err)
	}
	if !IsImage(name) {
		return "", fmt.Errorf("image %q: %w", name, ErrNotFound)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("image %s/%s: %w", id, name, ErrNotFound)
	}
	return path, nil
}
