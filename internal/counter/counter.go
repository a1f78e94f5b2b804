// Package counter persists the export number used to name mixes.
package counter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"hdxmix/pkg/spec"
)

// Store loads and saves the export counter. Load always returns a usable
// value; a non-nil error only explains why the default was used.
type Store interface {
	Load() (uint64, error)
	Commit(value uint64) error
}

// FileStore keeps the counter as decimal text in one file. It assumes a
// single writer.
type FileStore struct {
	Path string
}

// NewFileStore returns a store at path, or at spec.CounterFile in the
// working directory when path is empty.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = spec.CounterFile
	}
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (uint64, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return spec.DefaultCounter, nil
	}
	if err != nil {
		return spec.DefaultCounter, fmt.Errorf("read export counter: %w", err)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return spec.DefaultCounter, fmt.Errorf("parse export counter %s: %w", s.Path, err)
	}
	if v == 0 {
		return spec.DefaultCounter, fmt.Errorf("export counter %s holds 0", s.Path)
	}
	return v, nil
}

// Commit replaces the stored value atomically: the new value is written to
// a temporary file in the same directory and renamed over the old one.
func (s *FileStore) Commit(value uint64) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".export_counter-*")
	if err != nil {
		return fmt.Errorf("save export counter: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.FormatUint(value, 10)); err != nil {
		tmp.Close()
		return fmt.Errorf("save export counter: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("save export counter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save export counter: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("save export counter: %w", err)
	}
	return nil
}

// MemStore keeps the counter in memory.
type MemStore struct {
	mu      sync.Mutex
	value   uint64
	set     bool
	Commits int
	FailErr error // returned by Commit when set
}

// NewMemStore returns a store holding v; v == 0 behaves like no saved state.
func NewMemStore(v uint64) *MemStore {
	return &MemStore{value: v, set: v != 0}
}

func (m *MemStore) Load() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return spec.DefaultCounter, nil
	}
	return m.value, nil
}

func (m *MemStore) Commit(v uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailErr != nil {
		return m.FailErr
	}
	m.value, m.set = v, true
	m.Commits++
	return nil
}

// Value returns the last committed value.
func (m *MemStore) Value() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}
