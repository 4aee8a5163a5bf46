package levels

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/wricardo/sokoban/game/engine"
)

// DefaultLevelName is tried first when picking the default level
const DefaultLevelName = "classic"

// Info summarizes a stored level for listings
type Info struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Boxes  int    `json:"boxes"`
	Spots  int    `json:"spots"`
}

// Manager parses and catalogs levels kept in a Store
type Manager struct {
	store        Store
	defaultName  string
	defaultLevel *engine.Level
	mu           sync.RWMutex
}

// NewManager creates a level manager. The default level is "classic" if
// the store has it, else the first stored level, else the built-in example.
func NewManager(ctx context.Context, store Store) *Manager {
	m := &Manager{store: store}
	m.loadDefaultLevel(ctx)
	return m
}

// Store returns the backing store
func (m *Manager) Store() Store {
	return m.store
}

// Load reads and parses a stored level
func (m *Manager) Load(ctx context.Context, name string) (*engine.Level, error) {
	text, err := m.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return engine.ParseLevel(text), nil
}

// Save serializes and stores a level
func (m *Manager) Save(ctx context.Context, name string, level *engine.Level) error {
	return m.store.Save(ctx, name, level.Bytes())
}

// List returns information about every stored level. Levels that fail to
// load are skipped.
func (m *Manager) List(ctx context.Context) ([]*Info, error) {
	names, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*Info, 0, len(names))
	for _, name := range names {
		level, err := m.Load(ctx, name)
		if err != nil {
			log.Printf("[LEVELS] skipping %s: %v", name, err)
			continue
		}
		infos = append(infos, Describe(name, level))
	}
	return infos, nil
}

// Describe builds the listing entry for a level
func Describe(name string, level *engine.Level) *Info {
	return &Info{
		Name:   name,
		Width:  level.Width(),
		Height: level.Height(),
		Boxes:  level.Count(engine.Box) + level.Count(engine.BoxOnSpot),
		Spots:  level.Count(engine.Spot) + level.Count(engine.BoxOnSpot) + level.Count(engine.PlayerOnSpot),
	}
}

// Default returns the default level and its name. The name is empty when
// the built-in example is used.
func (m *Manager) Default() (string, *engine.Level) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultName, m.defaultLevel
}

// SetDefault makes a stored level the default
func (m *Manager) SetDefault(ctx context.Context, name string) error {
	level, err := m.Load(ctx, name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultName = name
	m.defaultLevel = level
	return nil
}

// Resolve loads name, or returns the default level when name is empty
func (m *Manager) Resolve(ctx context.Context, name string) (string, *engine.Level, error) {
	if name == "" {
		defaultName, level := m.Default()
		return defaultName, level, nil
	}
	level, err := m.Load(ctx, name)
	if err != nil {
		return "", nil, err
	}
	return name, level, nil
}

func (m *Manager) loadDefaultLevel(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.defaultName = ""
	m.defaultLevel = engine.ExampleLevel()

	level, err := m.Load(ctx, DefaultLevelName)
	if err == nil {
		m.defaultName, m.defaultLevel = DefaultLevelName, level
		return
	}
	if !errors.Is(err, ErrLevelNotFound) {
		log.Printf("[LEVELS] failed to load %s: %v", DefaultLevelName, err)
	}

	names, err := m.store.List(ctx)
	if err != nil || len(names) == 0 {
		return
	}
	if level, err := m.Load(ctx, names[0]); err == nil {
		m.defaultName, m.defaultLevel = names[0], level
	}
}

// Seed stores the built-in example as "classic" when the store is empty
func (m *Manager) Seed(ctx context.Context) error {
	names, err := m.store.List(ctx)
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return nil
	}
	if err := m.Save(ctx, DefaultLevelName, engine.ExampleLevel()); err != nil {
		return fmt.Errorf("seed levels: %w", err)
	}
	m.loadDefaultLevel(ctx)
	return nil
}
