// internal/store/store.go
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the name of the store file inside the data directory
const FileName = "crontab.json"

// Entry is the cron block declared for one container
type Entry struct {
	Container string
	Crontab   string
}

// Store persists container cron blocks as a JSON object. Key order in the
// file is the declaration order used when merging.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a store backed by the file at path
func New(path string) *Store {
	return &Store{path: path}
}

// NewInDir creates a store backed by FileName inside dir
func NewInDir(dir string) *Store {
	return New(filepath.Join(dir, FileName))
}

// Path returns the backing file path
func (s *Store) Path() string {
	return s.path
}

// Entries returns every container block in declaration order. A missing
// file is an empty store.
func (s *Store) Entries() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the block declared for container, "" when there is none
func (s *Store) Get(container string) (string, error) {
	entries, err := s.Entries()
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.Container == container {
			return e.Crontab, nil
		}
	}
	return "", nil
}

// Set stores the block of container. Existing containers keep their
// position, new ones are appended.
func (s *Store) Set(container, crontab string) error {
	if container == "" {
		return errors.New("container name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	found := false
	for i := range entries {
		if entries[i].Container == container {
			entries[i].Crontab = crontab
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, Entry{Container: container, Crontab: crontab})
	}

	return s.save(entries)
}

func (s *Store) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read store %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	entries, err := decodeOrdered(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode store %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *Store) save(entries []Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := encodeOrdered(entries)
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write store %s: %w", s.path, err)
	}
	return nil
}

// decodeOrdered reads a flat {"name": "block"} object keeping key order.
// Later duplicates override earlier values in place.
func decodeOrdered(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var entries []Entry
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}

		if i, seen := index[key]; seen {
			entries[i].Crontab = value
			continue
		}
		index[key] = len(entries)
		entries = append(entries, Entry{Container: key, Crontab: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

func encodeOrdered(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Container)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Crontab)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
