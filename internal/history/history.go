// Package history persists the transcription history as a JSON document.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

// Store reads and writes history.json. It implements session.HistoryStore.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store writes to.
func (s *Store) Path() string { return s.path }

// Load returns the saved transcriptions, most recent first. A missing file
// yields an empty history.
func (s *Store) Load() ([]session.Transcription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	var items []session.Transcription
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if len(items) > session.HistoryLimit {
		items = items[:session.HistoryLimit]
	}
	return items, nil
}

// Save replaces the file atomically.
func (s *Store) Save(items []session.Transcription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []session.Transcription{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
