// Package recent persists the recently viewed tables as YAML.
package recent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MaxStored caps the persisted list.
	MaxStored = 20
	// MaxShown caps what the sidebar displays.
	MaxShown = 5
)

// Entry is one viewed table.
type Entry struct {
	Name        string    `yaml:"name"`
	ComponentID string    `yaml:"componentId,omitempty"`
	ViewedAt    time.Time `yaml:"viewedAt"`
}

type file struct {
	Tables []Entry `yaml:"tables"`
}

// Store is a newest-first list of viewed tables backed by a file. An empty
// path keeps the list in memory only.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []Entry
	now     func() time.Time
}

// Load reads path. A missing file is an empty list.
func Load(path string) (*Store, error) {
	s := &Store{path: path, now: time.Now}
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading recent tables: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parsing recent tables %s: %w", path, err)
	}
	s.entries = f.Tables
	if len(s.entries) > MaxStored {
		s.entries = s.entries[:MaxStored]
	}
	return s, nil
}

// Record moves name to the front and saves.
func (s *Store) Record(name, componentID string) error {
	if name == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := []Entry{{Name: name, ComponentID: componentID, ViewedAt: s.now().UTC()}}
	for _, e := range s.entries {
		if e.Name == name && e.ComponentID == componentID {
			continue
		}
		next = append(next, e)
	}
	if len(next) > MaxStored {
		next = next[:MaxStored]
	}
	s.entries = next
	return s.saveLocked()
}

// Entries returns a copy of the stored list, newest first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}

// Names lists the tables viewed in componentID, newest first.
func (s *Store) Names(componentID string) []string {
	var names []string
	for _, e := range s.Entries() {
		if e.ComponentID == componentID {
			names = append(names, e.Name)
		}
	}
	return names
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	b, err := yaml.Marshal(file{Tables: s.entries})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("saving recent tables: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("saving recent tables: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Filter keeps the names that exist, in order, up to limit.
func Filter(names []string, exists func(string) bool, limit int) []string {
	out := make([]string, 0, min(len(names), limit))
	seen := map[string]bool{}
	for _, n := range names {
		if len(out) == limit {
			break
		}
		if seen[n] || !exists(n) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
