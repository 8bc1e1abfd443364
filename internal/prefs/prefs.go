// Package prefs persists the small amount of client-side state VidAdmin keeps
// between runs: the access token and the chosen interface language.
package prefs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Keys of the values VidAdmin persists.
const (
	TokenKey  = "auth_token"
	LocaleKey = "i18nextLng"
)

// Store is a persistent string key-value store.
type Store interface {
	// Get returns the value stored for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores value under key, replacing any existing value.
	Set(key, value string) error

	// Delete removes key. Deleting a key that is not present is not an error.
	Delete(key string) error
}

// MemoryStore is a Store that keeps values only for the life of the process.
type MemoryStore struct {
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (ms *MemoryStore) Get(key string) (string, bool) {
	v, ok := ms.values[key]
	return v, ok
}

func (ms *MemoryStore) Set(key, value string) error {
	ms.values[key] = value
	return nil
}

func (ms *MemoryStore) Delete(key string) error {
	delete(ms.values, key)
	return nil
}

// FileStore is a Store backed by a TOML file. Every Set and Delete rewrites
// the file.
type FileStore struct {
	path   string
	values map[string]string
}

// OpenFileStore loads the store at path. A missing file is treated as an
// empty store and will be created, along with its parent directories, on the
// first write.
func OpenFileStore(path string) (*FileStore, error) {
	fst := &FileStore{path: path, values: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fst, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	if _, err := toml.Decode(string(data), &fst.values); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", path, err)
	}

	return fst, nil
}

// Path returns the path of the file backing the store.
func (fst *FileStore) Path() string {
	return fst.path
}

func (fst *FileStore) Get(key string) (string, bool) {
	v, ok := fst.values[key]
	return v, ok
}

func (fst *FileStore) Set(key, value string) error {
	old, had := fst.values[key]
	fst.values[key] = value
	if err := fst.flush(); err != nil {
		if had {
			fst.values[key] = old
		} else {
			delete(fst.values, key)
		}
		return err
	}
	return nil
}

func (fst *FileStore) Delete(key string) error {
	old, had := fst.values[key]
	if !had {
		return nil
	}
	delete(fst.values, key)
	if err := fst.flush(); err != nil {
		fst.values[key] = old
		return err
	}
	return nil
}

// Keys returns the stored keys in sorted order.
func (fst *FileStore) Keys() []string {
	keys := make([]string, 0, len(fst.values))
	for k := range fst.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flush writes all values to a temp file next to the store and renames it over
// the store so a crash never leaves a half-written file. The file holds a
// token, so it is only readable by the owner.
func (fst *FileStore) flush() error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fst.values); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(fst.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.toml")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("set state file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, fst.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
