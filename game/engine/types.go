package engine

import "fmt"

// Symbol is a single byte of the level text format
type Symbol byte

const (
	Wall         Symbol = '#'
	Player       Symbol = '@'
	PlayerOnSpot Symbol = '+'
	Box          Symbol = '$'
	BoxOnSpot    Symbol = '*'
	Spot         Symbol = '.'
	Floor        Symbol = ' '

	// Editor defaults
	DefaultNewWidth  = 10
	DefaultNewHeight = 10
	MinBoardSize     = 1
)

// IsKnown reports whether b is one of the recognized tile symbols
func IsKnown(b byte) bool {
	switch Symbol(b) {
	case Wall, Player, PlayerOnSpot, Box, BoxOnSpot, Spot, Floor:
		return true
	}
	return false
}

// Point represents x,y coordinates. Origin is top-left, X is the column.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the point one step away in the given direction
func (p Point) Add(d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Direction a player can face or move in
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

var directionNames = [...]string{"up", "right", "down", "left"}

// Directions lists all directions in clockwise order starting with Up
var Directions = []Direction{Up, Right, Down, Left}

// Delta returns the unit step for the direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	if d < Up || d > Left {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection maps "up", "right", "down" and "left" to a Direction
func ParseDirection(s string) (Direction, error) {
	for i, name := range directionNames {
		if name == s {
			return Direction(i), nil
		}
	}
	return Up, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// MarshalText implements encoding.TextMarshaler
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Kind tags the entity variant
type Kind int

const (
	KindWall Kind = iota
	KindPlayer
	KindBox
	KindSpot
	KindCursor
)

var kindNames = [...]string{"wall", "player", "box", "spot", "cursor"}

func (k Kind) String() string {
	if k < KindWall || k > KindCursor {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown entity kind %q", text)
}

// Entity is anything placed on a board cell. Facing only matters for the
// player, Seated only for boxes and spots.
type Entity struct {
	Kind   Kind      `json:"kind"`
	Pos    Point     `json:"pos"`
	Facing Direction `json:"facing"`
	Seated bool      `json:"seated,omitempty"`
}

// NewWall creates a wall at p
func NewWall(p Point) Entity { return Entity{Kind: KindWall, Pos: p} }

// NewPlayer creates a player at p facing up
func NewPlayer(p Point) Entity { return Entity{Kind: KindPlayer, Pos: p, Facing: Up} }

// NewBox creates a box at p
func NewBox(p Point, seated bool) Entity { return Entity{Kind: KindBox, Pos: p, Seated: seated} }

// NewSpot creates a spot at p
func NewSpot(p Point, seated bool) Entity { return Entity{Kind: KindSpot, Pos: p, Seated: seated} }
