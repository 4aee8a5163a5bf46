package engine

import (
	"errors"
	"testing"
)

func TestLayer_PutGetClear(t *testing.T) {
	layer := NewLayer(36, 31)
	p := Point{X: 3, Y: 6}

	if _, ok := layer.Get(p); ok {
		t.Fatal("Expected empty cell")
	}

	if err := layer.Put(NewWall(p)); err != nil {
		t.Fatalf("Put wall failed: %v", err)
	}
	if e, ok := layer.Get(p); !ok || e.Kind != KindWall {
		t.Errorf("Expected wall at %v, got %+v", p, e)
	}

	// replacing the entity keeps one per cell
	if err := layer.Put(NewBox(p, false)); err != nil {
		t.Fatalf("Put box failed: %v", err)
	}
	if e, ok := layer.Get(p); !ok || e.Kind != KindBox {
		t.Errorf("Expected box at %v, got %+v", p, e)
	}
	if layer.Len() != 1 {
		t.Errorf("Expected 1 entity, got %d", layer.Len())
	}

	layer.Clear(p)
	if layer.Has(p) {
		t.Error("Expected cell to be empty after Clear")
	}
	if layer.Len() != 0 {
		t.Errorf("Expected 0 entities, got %d", layer.Len())
	}

	// clearing an empty cell is a no-op
	layer.Clear(p)
}

func TestLayer_SingletonPlayer(t *testing.T) {
	layer := NewLayer(25, 21)

	if _, ok := layer.Player(); ok {
		t.Fatal("Expected no player")
	}

	if err := layer.Put(NewPlayer(Point{X: 12, Y: 8})); err != nil {
		t.Fatalf("Put player failed: %v", err)
	}
	player, ok := layer.Player()
	if !ok || player.Pos != (Point{X: 12, Y: 8}) {
		t.Fatalf("Expected player at (12,8), got %+v", player)
	}

	err := layer.Put(NewPlayer(Point{X: 0, Y: 3}))
	if err == nil {
		t.Fatal("Expected error when adding a second player")
	}
	if !errors.Is(err, ErrDuplicatePlayer) {
		t.Errorf("Expected ErrDuplicatePlayer, got %v", err)
	}
	var violation *InvariantViolation
	if !errors.As(err, &violation) {
		t.Fatalf("Expected *InvariantViolation, got %T", err)
	}
	if violation.Existing != (Point{X: 12, Y: 8}) {
		t.Errorf("Expected existing player at (12,8), got %v", violation.Existing)
	}
	if layer.Has(Point{X: 0, Y: 3}) {
		t.Error("Rejected player must not be stored")
	}

	layer.ClearPlayer()
	if err := layer.Put(NewPlayer(Point{X: 0, Y: 3})); err != nil {
		t.Fatalf("Put after ClearPlayer failed: %v", err)
	}
	player, _ = layer.Player()
	if player.Pos != (Point{X: 0, Y: 3}) {
		t.Errorf("Expected player at (0,3), got %v", player.Pos)
	}
	if layer.Has(Point{X: 12, Y: 8}) {
		t.Error("Expected old player cell to be empty")
	}
}

func TestLayer_OverwritingPlayerClearsReference(t *testing.T) {
	layer := NewLayer(5, 5)
	p := Point{X: 1, Y: 1}

	if err := layer.Put(NewPlayer(p)); err != nil {
		t.Fatalf("Put player failed: %v", err)
	}
	if err := layer.Put(NewWall(p)); err != nil {
		t.Fatalf("Put wall failed: %v", err)
	}
	if _, ok := layer.Player(); ok {
		t.Error("Expected player reference cleared when its cell is overwritten")
	}

	// putting the same player cell again is a replacement, not a duplicate
	if err := layer.Put(NewPlayer(p)); err != nil {
		t.Fatalf("Put player failed: %v", err)
	}
	if err := layer.Put(NewPlayer(p)); err != nil {
		t.Errorf("Expected replacing the player in place to succeed, got %v", err)
	}
}

func TestLayer_ClearPlayerWithoutPlayer(t *testing.T) {
	layer := NewLayer(3, 3)
	layer.ClearPlayer()
	if layer.Len() != 0 {
		t.Errorf("Expected empty layer, got %d entities", layer.Len())
	}
}

func TestLayer_OutOfRangePanics(t *testing.T) {
	layer := NewLayer(3, 3)
	tests := []struct {
		name string
		fn   func()
	}{
		{"get", func() { layer.Get(Point{X: 3, Y: 0}) }},
		{"clear", func() { layer.Clear(Point{X: -1, Y: 0}) }},
		{"put", func() { _ = layer.Put(NewWall(Point{X: 0, Y: 3})) }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Expected %s to panic", test.name)
				}
			}()
			test.fn()
		})
	}
}

func TestLayer_EntitiesRowMajor(t *testing.T) {
	layer := NewLayer(3, 2)
	_ = layer.Put(NewWall(Point{X: 2, Y: 1}))
	_ = layer.Put(NewBox(Point{X: 0, Y: 1}, false))
	_ = layer.Put(NewWall(Point{X: 1, Y: 0}))

	entities := layer.Entities()
	expected := []Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 1}}
	if len(entities) != len(expected) {
		t.Fatalf("Expected %d entities, got %d", len(expected), len(entities))
	}
	for i, e := range entities {
		if e.Pos != expected[i] {
			t.Errorf("Entity %d: expected %v, got %v", i, expected[i], e.Pos)
		}
	}
	if CountKind(layer, KindWall) != 2 {
		t.Errorf("Expected 2 walls, got %d", CountKind(layer, KindWall))
	}
}
