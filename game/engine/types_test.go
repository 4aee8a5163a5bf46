package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSymbolConstants(t *testing.T) {
	tests := []struct {
		symbol   Symbol
		expected byte
	}{
		{Wall, '#'},
		{Player, '@'},
		{PlayerOnSpot, '+'},
		{Box, '$'},
		{BoxOnSpot, '*'},
		{Spot, '.'},
		{Floor, ' '},
	}

	for _, test := range tests {
		if byte(test.symbol) != test.expected {
			t.Errorf("Expected %q, got %q", test.expected, byte(test.symbol))
		}
		if !IsKnown(test.expected) {
			t.Errorf("Expected %q to be a known symbol", test.expected)
		}
	}

	for _, b := range []byte{'x', 0, '\t', 'R'} {
		if IsKnown(b) {
			t.Errorf("Expected %q to be unknown", b)
		}
	}
}

func TestPointAdd(t *testing.T) {
	tests := []struct {
		direction Direction
		expected  Point
	}{
		{Up, Point{X: 10, Y: 22}},
		{Right, Point{X: 11, Y: 23}},
		{Down, Point{X: 10, Y: 24}},
		{Left, Point{X: 9, Y: 23}},
	}

	start := Point{X: 10, Y: 23}
	for _, test := range tests {
		t.Run(test.direction.String(), func(t *testing.T) {
			got := start.Add(test.direction)
			if got != test.expected {
				t.Errorf("Add(%s): expected %v, got %v", test.direction, test.expected, got)
			}
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, d := range Directions {
		parsed, err := ParseDirection(d.String())
		if err != nil {
			t.Fatalf("ParseDirection(%q) failed: %v", d.String(), err)
		}
		if parsed != d {
			t.Errorf("Expected %v, got %v", d, parsed)
		}
	}

	_, err := ParseDirection("north")
	if !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
}

func TestEntityJSONMarshaling(t *testing.T) {
	entity := Entity{Kind: KindPlayer, Pos: Point{X: 2, Y: 1}, Facing: Left}

	data, err := json.Marshal(entity)
	if err != nil {
		t.Fatalf("Failed to marshal entity: %v", err)
	}

	expected := `{"kind":"player","pos":{"x":2,"y":1},"facing":"left"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}

	var decoded Entity
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal entity: %v", err)
	}
	if decoded != entity {
		t.Errorf("Expected %+v, got %+v", entity, decoded)
	}
}
