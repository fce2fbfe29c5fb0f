// Package file persists records as whole JSON documents: every mutation
// loads the full document, applies the change, and rewrites the file. A
// per-store writer lock serializes concurrent writers so the last full
// write cannot drop a concurrent update.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type documentStore struct {
	path string
	mu   sync.Mutex
}

func newDocumentStore(dir, name string) *documentStore {
	return &documentStore{path: filepath.Join(dir, name)}
}

// load unmarshals the document into out. A missing or empty file leaves
// out untouched (callers start from their zero document).
func (s *documentStore) load(out interface{}) error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", s.path, err)
	}
	return nil
}

// save rewrites the whole document. Written via a temp file + rename so a
// crash mid-write never leaves a truncated store behind.
func (s *documentStore) save(doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
