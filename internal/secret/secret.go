// Package secret holds the operator credential for the current login session.
//
// Nothing in this package writes to durable storage: the file-backed store
// lives under $XDG_RUNTIME_DIR, which the OS removes when the session ends,
// and the memory store dies with the process.
package secret

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/lydakis/cmdconsole/internal/paths"
)

const credentialFile = "session-credential"

// Store is the ephemeral credential storage primitive.
type Store interface {
	// Get returns the stored credential. ok is false when nothing is stored.
	Get() (value string, ok bool, err error)
	Put(value string) error
	Remove() error
}

// Default returns the file store under the session directory, or a memory
// store when the platform has no runtime directory.
func Default() Store {
	if dir, ok := paths.SessionDir(); ok {
		return NewFileStore(dir)
	}
	return NewMemoryStore()
}

// FileStore keeps the credential in a 0600 file inside dir.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, credentialFile)
}

// Get reads the credential file.
func (s *FileStore) Get() (string, bool, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading session credential: %w", err)
	}
	value := strings.TrimRight(string(data), "\r\n")
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// Put writes the credential, replacing any previous value.
func (s *FileStore) Put(value string) error {
	if err := paths.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("creating session directory %s: %w", s.dir, err)
	}
	if err := renameio.WriteFile(s.path(), []byte(value), 0o600); err != nil {
		return fmt.Errorf("writing session credential: %w", err)
	}
	return nil
}

// Remove deletes the credential file. Removing a missing file is not an error.
func (s *FileStore) Remove() error {
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session credential: %w", err)
	}
	return nil
}

// MemoryStore keeps the credential for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex
	value string
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.value != "", nil
}

func (s *MemoryStore) Put(value string) error {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove() error {
	s.mu.Lock()
	s.value = ""
	s.mu.Unlock()
	return nil
}
