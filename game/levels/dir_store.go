package levels

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const levelExt = ".txt"

// DirStore keeps one <name>.txt file per level and caches what it reads
type DirStore struct {
	dir   string
	cache map[string][]byte
	mu    sync.RWMutex
}

// NewDirStore creates a store over dir, creating the directory if needed
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	return &DirStore{
		dir:   dir,
		cache: make(map[string][]byte),
	}, nil
}

// Dir returns the backing directory
func (s *DirStore) Dir() string {
	return s.dir
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, name+levelExt)
}

// Load reads a level file, serving repeated reads from the cache
func (s *DirStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, &PersistenceError{Op: "load", Name: name, Err: err}
	}

	s.mu.RLock()
	if text, exists := s.cache[name]; exists {
		s.mu.RUnlock()
		return clone(text), nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if text, exists := s.cache[name]; exists {
		return clone(text), nil
	}

	text, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PersistenceError{Op: "load", Name: name, Err: ErrLevelNotFound}
		}
		return nil, &PersistenceError{Op: "load", Name: name, Err: err}
	}

	s.cache[name] = text
	return clone(text), nil
}

// Save writes the level file atomically and refreshes the cache
func (s *DirStore) Save(ctx context.Context, name string, text []byte) error {
	if err := ValidateName(name); err != nil {
		return &PersistenceError{Op: "save", Name: name, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, text, 0644); err != nil {
		return &PersistenceError{Op: "save", Name: name, Err: err}
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		os.Remove(tmp)
		return &PersistenceError{Op: "save", Name: name, Err: err}
	}

	s.cache[name] = clone(text)
	return nil
}

// List returns the names of all level files, sorted
func (s *DirStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), levelExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), levelExt)
		if ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Invalidate drops a cached level so the next Load reads the file again
func (s *DirStore) Invalidate(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}

// Watch invalidates cached levels whenever their files change on disk. It
// blocks until ctx is done.
func (s *DirStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			base := filepath.Base(event.Name)
			if !strings.HasSuffix(base, levelExt) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				name := strings.TrimSuffix(base, levelExt)
				s.Invalidate(name)
				log.Printf("[LEVELS] %s changed on disk (%s)", name, event.Op)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[LEVELS] watcher error: %v", err)
		}
	}
}

// Close is a no-op; files need no teardown
func (s *DirStore) Close() error {
	return nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
