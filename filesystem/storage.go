// server/filesystem/storage.go
package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

const (
	filePerms = 0o644
	dirPerms  = 0o755
)

var errInvalidKey = errors.New("invalid storage key")

// Storage is a flat key/value namespace of documents. Missing keys report
// fs.ErrNotExist.
type Storage interface {
	Read(key string) ([]byte, error)
	WriteAtomic(key string, data []byte) error
	Remove(key string) error
	Exists(key string) (bool, error)
	List() ([]string, error)
}

// ValidKey reports whether key names a single file inside a storage root.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." || strings.HasPrefix(key, ".") {
		return false
	}
	return !strings.ContainsAny(key, `/\`) && filepath.Base(key) == key
}

// DirStorage keeps each key as a file directly under Root.
type DirStorage struct {
	Root string
}

func NewDirStorage(root string) *DirStorage {
	return &DirStorage{Root: root}
}

func (d *DirStorage) path(key string) (string, error) {
	if !ValidKey(key) {
		return "", fmt.Errorf("%w: %q", errInvalidKey, key)
	}
	return filepath.Join(d.Root, key), nil
}

func (d *DirStorage) Read(key string) ([]byte, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// WriteAtomic replaces key via a temp file and rename, so readers never see
// a partially written document.
func (d *DirStorage) WriteAtomic(key string, data []byte) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.Root, dirPerms); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.Root, err)
	}
	if err := atomic.WriteFile(p, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	// atomic.WriteFile leaves the temp file's mode on new files
	if err := os.Chmod(p, filePerms); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", key, err)
	}
	return nil
}

func (d *DirStorage) Remove(key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

func (d *DirStorage) Exists(key string) (bool, error) {
	p, err := d.path(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// List returns the regular files under Root; a missing Root is empty.
func (d *DirStorage) List() ([]string, error) {
	entries, err := os.ReadDir(d.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !ValidKey(entry.Name()) {
			continue
		}
		keys = append(keys, entry.Name())
	}
	return keys, nil
}

// MemStorage is an in-memory Storage for tests.
type MemStorage struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{docs: make(map[string][]byte)}
}

func (m *MemStorage) Read(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: key, Err: fs.ErrNotExist}
	}
	return bytes.Clone(data), nil
}

func (m *MemStorage) WriteAtomic(key string, data []byte) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", errInvalidKey, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = bytes.Clone(data)
	return nil
}

func (m *MemStorage) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; !ok {
		return &fs.PathError{Op: "remove", Path: key, Err: fs.ErrNotExist}
	}
	delete(m.docs, key)
	return nil
}

func (m *MemStorage) Exists(key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.docs[key]
	return ok, nil
}

func (m *MemStorage) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.docs))
	for k := range m.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// KeyedMutex serializes read-modify-write cycles per storage key.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until key is free and returns its unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
