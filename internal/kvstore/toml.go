package kvstore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

type tomlState struct {
	Entries map[string]string `toml:"entries"`
}

// TOMLStore keeps the key space in memory and rewrites a TOML file on every
// write. Suited to small state; every Set costs a full file rewrite.
type TOMLStore struct {
	path string

	mu      sync.RWMutex
	entries map[string]string
	closed  bool
}

// NewTOMLStore loads the state file at path, treating a missing file as empty
func NewTOMLStore(path string) (*TOMLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("toml store: empty state file path")
	}

	s := &TOMLStore{path: path, entries: make(map[string]string)}

	var state tomlState
	if _, err := toml.DecodeFile(path, &state); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to decode TOML from file %s: %w", path, err)
		}
	}
	for k, v := range state.Entries {
		s.entries[k] = v
	}

	log.Debug("state store initialized", "backend", BackendTOML, "path", path, "keys", len(s.entries))
	return s, nil
}

func (s *TOMLStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *TOMLStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	prev, had := s.entries[key]
	s.entries[key] = value
	if err := s.save(); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return err
	}
	return nil
}

func (s *TOMLStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	prev, had := s.entries[key]
	if !had {
		return nil
	}
	delete(s.entries, key)
	if err := s.save(); err != nil {
		s.entries[key] = prev
		return err
	}
	return nil
}

func (s *TOMLStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	var keys []string
	for k := range s.entries {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *TOMLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// save writes the state through a temp file and renames it into place.
// Must be called with lock held
func (s *TOMLStore) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	writer := bufio.NewWriter(tmp)
	if err := toml.NewEncoder(writer).Encode(tomlState{Entries: s.entries}); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode state to TOML file %s: %w", s.path, err)
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush writer for state file %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", s.path, err)
	}
	return nil
}
