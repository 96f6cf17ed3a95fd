package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store persisted as a single JSON object on disk.
// The whole map is rewritten on every change via a temp file and rename.
type File struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// OpenFile loads the store at path, creating parent directories as needed.
// A missing file is treated as an empty store.
func OpenFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	f := &File{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(raw) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(raw, &f.data); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}
	if f.data == nil {
		f.data = make(map[string]string)
	}
	return f, nil
}

// Path returns the backing file path
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(_ context.Context, entries map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]string, len(f.data)+len(entries))
	for k, v := range f.data {
		next[k] = v
	}
	for k, v := range entries {
		next[k] = v
	}
	if err := f.flush(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *File) Remove(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string]string, len(f.data))
	for k, v := range f.data {
		next[k] = v
	}
	changed := false
	for _, k := range keys {
		if _, ok := next[k]; ok {
			delete(next, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := f.flush(next); err != nil {
		return err
	}
	f.data = next
	return nil
}

func (f *File) Close() error { return nil }

// flush writes data to a temp file next to the store and renames it into place
func (f *File) flush(data map[string]string) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
