// Package library gives access to a units folder: label documents in its
// root and one image folder per item.
package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"

	"unitview/internal/labels"
	storagefs "unitview/internal/storage/fs"
)

var (
	ErrNotFound = errors.New("not found")
	ErrWrite    = errors.New("write failed")
	ErrExists   = errors.New("already exists")
)

// metaDir holds temp files and lock files. It is hidden so it never shows
// up as an item folder.
const metaDir = ".unitview"

const (
	defaultLockTimeout = 5 * time.Second
	defaultDebounce    = 200 * time.Millisecond
)

type Option func(*Library)

func WithLockTimeout(d time.Duration) Option {
	return func(l *Library) {
		l.lockTimeout = d
	}
}

func WithDebounce(d time.Duration) Option {
	return func(l *Library) {
		l.debounce = d
	}
}

type Library struct {
	root        string
	kv          *diskv.Diskv
	locker      *storagefs.Locker
	lockTimeout time.Duration
	debounce    time.Duration
}

// Open returns a Library over root, which must be an existing directory.
func Open(root string, opts ...Option) (*Library, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("units folder %s: %w", abs, ErrNotFound)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("units folder %s is not a directory: %w", abs, ErrNotFound)
	}
	l := &Library{
		root: abs,
		kv: diskv.New(diskv.Options{
			BasePath:     abs,
			TempDir:      filepath.Join(abs, metaDir, "tmp"),
			CacheSizeMax: 0,
		}),
		locker:      storagefs.NewLocker(),
		lockTimeout: defaultLockTimeout,
		debounce:    defaultDebounce,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Library) Root() string {
	return l.root
}

// DocumentName validates a document name and adds the .json extension.
func DocumentName(name string) (string, error) {
	clean, err := storagefs.CleanName(name)
	if err != nil {
		return "", fmt.Errorf("document %q: %w", name, err)
	}
	return storagefs.EnsureJSONExt(clean), nil
}

// Documents lists the label documents in the folder root, sorted.
func (l *Library) Documents() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || storagefs.IsHidden(e.Name()) {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (l *Library) Has(name string) bool {
	doc, err := DocumentName(name)
	if err != nil {
		return false
	}
	return l.kv.Has(doc)
}

// Load reads and decodes a document.
func (l *Library) Load(ctx context.Context, name string) (labels.Store, error) {
	if err := ctx.Err(); err != nil {
		return labels.Store{}, err
	}
	doc, err := DocumentName(name)
	if err != nil {
		return labels.Store{}, err
	}
	data, err := l.kv.Read(doc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return labels.Store{}, fmt.Errorf("document %s: %w", doc, ErrNotFound)
		}
		return labels.Store{}, fmt.Errorf("read %s: %w", doc, err)
	}
	store, err := labels.Decode(data)
	if err != nil {
		return labels.Store{}, fmt.Errorf("document %s: %w", doc, err)
	}
	return store, nil
}

// Save replaces the document with store.
func (l *Library) Save(ctx context.Context, name string, store labels.Store) error {
	data, err := labels.Encode(store)
	if err != nil {
		return fmt.Errorf("encode %s: %w: %v", name, ErrWrite, err)
	}
	return l.write(ctx, name, data, false)
}

// Create writes an empty document. The .json extension is added when
// missing.
func (l *Library) Create(ctx context.Context, name string) (string, error) {
	doc, err := DocumentName(name)
	if err != nil {
		return "", err
	}
	if err := l.write(ctx, doc, []byte("{}"), true); err != nil {
		return "", err
	}
	return doc, nil
}

func (l *Library) write(ctx context.Context, name string, data []byte, exclusive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := DocumentName(name)
	if err != nil {
		return err
	}

	unlock := l.locker.Lock(doc)
	defer unlock()
	lock, err := storagefs.AcquireFileLockWithTimeout(filepath.Join(l.root, metaDir, "locks", doc+".lock"), l.lockTimeout)
	if err != nil {
		return fmt.Errorf("lock %s: %w: %v", doc, ErrWrite, err)
	}
	defer lock.Release()

	if err := os.MkdirAll(l.kv.TempDir, 0o755); err != nil {
		return fmt.Errorf("write %s: %w: %v", doc, ErrWrite, err)
	}
	if exclusive && l.kv.Has(doc) {
		return fmt.Errorf("document %s: %w", doc, ErrExists)
	}
	if err := l.kv.WriteStream(doc, bytes.NewReader(data), true); err != nil {
		return fmt.Errorf("write %s: %w: %v", doc, ErrWrite, err)
	}
	slog.Debug("document written", "doc", doc, "bytes", len(data))
	return nil
}

// ItemIDs lists the item folders, skipping hidden ones.
func (l *Library) ItemIDs() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && !storagefs.IsHidden(e.Name()) {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
