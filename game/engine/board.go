package engine

import "fmt"

// Board holds the occupant layer (walls, player, boxes) and the spot layer.
// A cell may carry one occupant and one spot at the same time.
type Board struct {
	width     int
	height    int
	occupants *Layer
	spots     *Layer
}

// NewBlankBoard creates an empty board
func NewBlankBoard(width, height int) *Board {
	return &Board{
		width:     width,
		height:    height,
		occupants: NewLayer(width, height),
		spots:     NewLayer(width, height),
	}
}

// NewBoard builds a board from a level. A level holding more than one
// player is rejected with an *InvariantViolation.
func NewBoard(level *Level) (*Board, error) {
	b := NewBlankBoard(level.Width(), level.Height())

	for y := 0; y < level.Height(); y++ {
		for x := 0; x < level.Width(); x++ {
			p := Point{X: x, Y: y}
			var err error
			switch level.At(x, y) {
			case Wall:
				err = b.occupants.Put(NewWall(p))
			case Player:
				err = b.occupants.Put(NewPlayer(p))
			case PlayerOnSpot:
				err = b.occupants.Put(NewPlayer(p))
				if err == nil {
					err = b.spots.Put(NewSpot(p, false))
				}
			case Box:
				err = b.occupants.Put(NewBox(p, false))
			case BoxOnSpot:
				err = b.occupants.Put(NewBox(p, true))
				if err == nil {
					err = b.spots.Put(NewSpot(p, true))
				}
			case Spot:
				err = b.spots.Put(NewSpot(p, false))
			}
			if err != nil {
				return nil, fmt.Errorf("build board: %w", err)
			}
		}
	}
	return b, nil
}

// Width returns the board width
func (b *Board) Width() int {
	return b.width
}

// Height returns the board height
func (b *Board) Height() int {
	return b.height
}

// InBounds checks whether p lies on the board
func (b *Board) InBounds(p Point) bool {
	return p.X >= 0 && p.X < b.width && p.Y >= 0 && p.Y < b.height
}

// Occupants exposes the occupant layer
func (b *Board) Occupants() *Layer {
	return b.occupants
}

// Spots exposes the spot layer
func (b *Board) Spots() *Layer {
	return b.spots
}

// Occupant returns the wall, player or box at p
func (b *Board) Occupant(p Point) (Entity, bool) {
	return b.occupants.Get(p)
}

// SpotAt returns the spot at p
func (b *Board) SpotAt(p Point) (Entity, bool) {
	return b.spots.Get(p)
}

// AllSpotsSeated reports whether every spot has a box on it. A board
// without spots counts as solved.
func (b *Board) AllSpotsSeated() bool {
	for _, s := range b.spots.cells {
		if s != nil && !s.Seated {
			return false
		}
	}
	return true
}

// ToLevel converts the board back into a level. Only layer membership is
// consulted, seated flags are ignored.
func (b *Board) ToLevel() *Level {
	level := NewLevel(b.width, b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			p := Point{X: x, Y: y}
			occupant, hasOccupant := b.occupants.Get(p)
			hasSpot := b.spots.Has(p)

			sym := Floor
			switch {
			case hasSpot && hasOccupant && occupant.Kind == KindBox:
				sym = BoxOnSpot
			case hasSpot && hasOccupant && occupant.Kind == KindPlayer:
				sym = PlayerOnSpot
			case hasSpot && !hasOccupant:
				sym = Spot
			case hasSpot:
				// wall over spot has no symbol of its own
				sym = Floor
			case hasOccupant && occupant.Kind == KindPlayer:
				sym = Player
			case hasOccupant && occupant.Kind == KindWall:
				sym = Wall
			case hasOccupant && occupant.Kind == KindBox:
				sym = Box
			}
			level.cells[y*b.width+x] = sym
		}
	}
	return level
}
