// SPDX-License-Identifier: MIT

package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/renameio/v2"
)

// FileStore keeps all records in one JSON document on disk. Every write
// replaces the file atomically, so a crash never leaves a torn document.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// OpenFile loads the JSON document at path, creating an empty store when
// the file does not exist yet.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path, data: make(map[string]string)}
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read store file %s: %w", path, err)
	}
	if len(buf) > 0 {
		if err := json.Unmarshal(buf, &s.data); err != nil {
			return nil, fmt.Errorf("parse store file %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flushLocked()
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flushLocked()
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) flushLocked() error {
	buf, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	return renameio.WriteFile(s.path, buf, 0o600)
}

var _ Store = (*FileStore)(nil)
