package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File keeps all items in a single JSON object on disk. Every mutation
// rewrites the file.
type File struct {
	path string

	mu    sync.RWMutex
	items map[string]string
}

func NewFile(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage file path is required")
	}

	f := &File{
		path:  path,
		items: make(map[string]string),
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) Path() string { return f.path }

func (f *File) GetItem(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.items[key]
	return v, ok
}

func (f *File) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.items[key]
	f.items[key] = value
	if err := f.persistLocked(); err != nil {
		if had {
			f.items[key] = prev
		} else {
			delete(f.items, key)
		}
		return err
	}
	return nil
}

func (f *File) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.items[key]
	if !had {
		return nil
	}
	delete(f.items, key)
	if err := f.persistLocked(); err != nil {
		f.items[key] = prev
		return err
	}
	return nil
}

func (f *File) load() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read storage file: %w", err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, &f.items); err != nil {
		return fmt.Errorf("decode storage file: %w", err)
	}
	if f.items == nil {
		f.items = make(map[string]string)
	}
	return nil
}

func (f *File) persistLocked() error {
	b, err := json.MarshalIndent(f.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("mkdir storage dir: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	return nil
}
