// Package cache persists per-file analysis results across runs so unchanged
// Python files are not parsed again. Entries are validated by a SHA-256
// content hash and by the tool version that produced them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/garagon/mancheck/annotations"
)

// Bump when the Entry layout changes.
const schemaVersion uint16 = 1

// Entry holds the core findings recorded for one file.
type Entry struct {
	Hash     string                `msgpack:"hash"`
	Findings []annotations.Finding `msgpack:"findings"`
}

type payload struct {
	Schema  uint16           `msgpack:"schema"`
	Version string           `msgpack:"version"`
	Entries map[string]Entry `msgpack:"entries"`
}

// Store is a msgpack-backed findings cache. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	path    string
	version string
	dirty   bool
}

// New creates a Store backed by path. Entries written by a different
// version are discarded on Load.
func New(path, version string) *Store {
	return &Store{
		entries: make(map[string]Entry),
		path:    path,
		version: version,
	}
}

// DefaultPath returns $XDG_CACHE_HOME/mancheck/findings.mp, falling back
// to ~/.cache when XDG_CACHE_HOME is unset.
func DefaultPath() string {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".mancheck", "findings.mp")
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "mancheck", "findings.mp")
}

// Hash returns the hex SHA-256 of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Load reads the cache file. A missing file leaves the store empty, and so
// does a file written by another schema or tool version. Symlinks are
// rejected.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Lstat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("cache file is a symlink (rejected): %s", s.path)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	var p payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return fmt.Errorf("decoding cache %s: %w", s.path, err)
	}
	if p.Schema != schemaVersion || p.Version != s.version || p.Entries == nil {
		s.dirty = true
		return nil
	}
	s.entries = p.Entries
	return nil
}

// Save writes the cache atomically through a temp file in the same
// directory. Nothing is written when no entry changed since Load.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.dirty {
		return nil
	}
	if info, err := os.Lstat(s.path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("cache file is a symlink (rejected): %s", s.path)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "findings-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	p := payload{Schema: schemaVersion, Version: s.version, Entries: s.entries}
	if err := msgpack.NewEncoder(f).Encode(&p); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0o600); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Get returns the cached findings for key when hash matches the stored
// content hash.
func (s *Store) Get(key, hash string) ([]annotations.Finding, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || e.Hash != hash {
		return nil, false
	}
	return e.Findings, true
}

// Put records findings for key.
func (s *Store) Put(key, hash string, findings []annotations.Finding) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{Hash: hash, Findings: findings}
	s.dirty = true
}

// Len returns the number of cached files.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Path returns the file path of this store.
func (s *Store) Path() string {
	return s.path
}
