// Package cache stores compiled markup artifacts between builds.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/inful/mdfp"
)

const Ext = ".html"

// Store is a directory of compiled artifacts keyed by content fingerprint.
// An entry is valid iff it exists and its source was not modified after it.
//
// A Store lives for one build. It remembers the keys loaded through it,
// so that [Store.Prune] can drop entries of edited or deleted sources.
type Store struct {
	dir string

	mut   sync.Mutex
	locks map[string]*sync.Mutex
	used  map[string]struct{}
}

// Open prepares dir for use as a cache store.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("empty cache dir")
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create cache dir '%s': %w", dir, err)
	}

	return &Store{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
		used:  make(map[string]struct{}),
	}, nil
}

// Key derives the entry key for a markup source compiled by engine.
func Key(engine string, frontMatter, body []byte) string {
	fp := mdfp.CalculateFingerprintFromParts(string(frontMatter), string(body))
	return engine + "-" + strings.Map(safeRune, fp)
}

func (s *Store) Dir() string { return s.dir }

// Path returns the artifact path for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+Ext)
}

// Valid reports whether the entry for key may be reused
// for a source last modified at modTime.
func (s *Store) Valid(key string, modTime time.Time) (bool, error) {
	stat, err := os.Stat(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return !modTime.After(stat.ModTime()), nil
}

// Load returns the artifact for key, calling compile and storing its
// output if the entry is missing or stale. hit reports whether
// the stored artifact was reused.
//
// Concurrent calls for the same key are serialized.
func (s *Store) Load(
	key string,
	modTime time.Time,
	compile func() ([]byte, error),
) (
	data []byte,
	hit bool,
	err error,
) {
	lock := s.lock(key)
	lock.Lock()
	defer lock.Unlock()

	valid, err := s.Valid(key, modTime)
	if err != nil {
		return nil, false, err
	}
	if valid {
		data, err = os.ReadFile(s.Path(key))
		if err == nil {
			s.use(key)
			return data, true, nil
		}
		if !os.IsNotExist(err) {
			return nil, false, err
		}
	}

	data, err = compile()
	if err != nil {
		return nil, false, err
	}

	if err := s.put(key, data); err != nil {
		return nil, false, err
	}

	s.use(key)
	return data, false, nil
}

// Prune removes every entry not loaded through s, along with temporary
// files left by interrupted writes. It returns the number of removed files.
func (s *Store) Prune() (int, error) {
	s.mut.Lock()
	defer s.mut.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := range entries {
		name := entries[i].Name()
		if entries[i].IsDir() {
			continue
		}
		if key, ok := strings.CutSuffix(name, Ext); ok {
			if _, used := s.used[key]; used {
				continue
			}
		} else if filepath.Ext(name) != ".tmp" {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to prune cache entry '%s': %w", name, err)
		}
		removed++
	}

	return removed, nil
}

func (s *Store) use(key string) {
	s.mut.Lock()
	defer s.mut.Unlock()
	s.used[key] = struct{}{}
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mut.Lock()
	defer s.mut.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for i := range entries {
		err := os.RemoveAll(filepath.Join(s.dir, entries[i].Name()))
		if err != nil {
			return fmt.Errorf("failed to clear cache entry '%s': %w", entries[i].Name(), err)
		}
	}

	return nil
}

// put writes data to a temporary file first, so readers never see partial entries
func (s *Store) put(key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return err
	}

	_, err = tmp.Write(data)
	if errClose := tmp.Close(); err == nil {
		err = errClose
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry '%s': %w", key, err)
	}

	return os.Rename(tmp.Name(), s.Path(key))
}

func (s *Store) lock(key string) *sync.Mutex {
	s.mut.Lock()
	defer s.mut.Unlock()

	l, ok := s.locks[key]
	if !ok {
		l = new(sync.Mutex)
		s.locks[key] = l
	}

	return l
}

func safeRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		return r
	}
	return '-'
}
