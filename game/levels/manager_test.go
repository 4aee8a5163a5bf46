package levels

import (
	"context"
	"errors"
	"testing"

	"github.com/wricardo/sokoban/game/engine"
)

func createTestManager(t *testing.T) (*Manager, *DirStore) {
	t.Helper()
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore failed: %v", err)
	}
	return NewManager(context.Background(), store), store
}

func TestManager_DefaultFallsBackToExample(t *testing.T) {
	m, _ := createTestManager(t)

	name, level := m.Default()
	if name != "" {
		t.Errorf("Expected no default name, got %q", name)
	}
	if !level.Equal(engine.ExampleLevel()) {
		t.Errorf("Expected example level, got\n%s", level)
	}
}

func TestManager_DefaultPrefersClassic(t *testing.T) {
	ctx := context.Background()
	store, _ := NewDirStore(t.TempDir())
	store.Save(ctx, "aaa", []byte("#@#\n"))
	store.Save(ctx, "classic", []byte("#+*#\n"))

	m := NewManager(ctx, store)
	name, level := m.Default()
	if name != "classic" || level.String() != "#+*#\n" {
		t.Errorf("Expected classic default, got %q\n%s", name, level)
	}

	store2, _ := NewDirStore(t.TempDir())
	store2.Save(ctx, "zeta", []byte("@\n"))
	store2.Save(ctx, "beta", []byte("#@\n"))
	m2 := NewManager(ctx, store2)
	if name, _ := m2.Default(); name != "beta" {
		t.Errorf("Expected first stored level as default, got %q", name)
	}
}

func TestManager_SaveLoadList(t *testing.T) {
	ctx := context.Background()
	m, _ := createTestManager(t)

	level := engine.ParseLevelString("#####\n#@$.#\n#####")
	if err := m.Save(ctx, "tiny", level); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := m.Load(ctx, "tiny")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Equal(level) {
		t.Errorf("Expected loaded level to equal saved one")
	}

	infos, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("Expected 1 level, got %d", len(infos))
	}
	expected := Info{Name: "tiny", Width: 5, Height: 3, Boxes: 1, Spots: 1}
	if *infos[0] != expected {
		t.Errorf("Expected %+v, got %+v", expected, *infos[0])
	}
}

func TestManager_ResolveAndSetDefault(t *testing.T) {
	ctx := context.Background()
	m, store := createTestManager(t)
	store.Save(ctx, "other", []byte("#@.#\n"))

	name, level, err := m.Resolve(ctx, "")
	if err != nil || name != "" || !level.Equal(engine.ExampleLevel()) {
		t.Errorf("Expected example for empty name, got %q %v", name, err)
	}

	if _, _, err := m.Resolve(ctx, "missing"); !errors.Is(err, ErrLevelNotFound) {
		t.Errorf("Expected ErrLevelNotFound, got %v", err)
	}

	if err := m.SetDefault(ctx, "other"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if name, _ := m.Default(); name != "other" {
		t.Errorf("Expected other as default, got %q", name)
	}
}

func TestManager_Seed(t *testing.T) {
	ctx := context.Background()
	m, store := createTestManager(t)

	if err := m.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	text, err := store.Load(ctx, DefaultLevelName)
	if err != nil {
		t.Fatalf("Expected seeded level: %v", err)
	}
	if string(text) != engine.ExampleLevel().String() {
		t.Errorf("Unexpected seeded text %q", text)
	}
	if name, _ := m.Default(); name != DefaultLevelName {
		t.Errorf("Expected seeded default, got %q", name)
	}
}
