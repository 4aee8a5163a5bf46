package engine

// Layer stores at most one entity per cell and at most one player overall.
// Coordinates outside the layer are a caller bug and panic.
type Layer struct {
	width     int
	height    int
	cells     []*Entity
	player    *Entity
	populated int
}

// NewLayer creates an empty layer
func NewLayer(width, height int) *Layer {
	return &Layer{
		width:  width,
		height: height,
		cells:  make([]*Entity, width*height),
	}
}

// Width returns the layer width
func (l *Layer) Width() int {
	return l.width
}

// Height returns the layer height
func (l *Layer) Height() int {
	return l.height
}

func (l *Layer) index(p Point) int {
	if p.X < 0 || p.X >= l.width || p.Y < 0 || p.Y >= l.height {
		panic("engine: layer coordinate " + p.String() + " out of range")
	}
	return p.Y*l.width + p.X
}

// Put stores e at its position, replacing whatever was there. Adding a
// player while a different one exists fails with an *InvariantViolation.
func (l *Layer) Put(e Entity) error {
	idx := l.index(e.Pos)
	if e.Kind == KindPlayer && l.player != nil && l.player.Pos != e.Pos {
		return &InvariantViolation{Err: ErrDuplicatePlayer, At: e.Pos, Existing: l.player.Pos}
	}

	l.Clear(e.Pos)

	stored := e
	l.cells[idx] = &stored
	l.populated++
	if stored.Kind == KindPlayer {
		l.player = &stored
	}
	return nil
}

// Clear removes the entity at p, if any
func (l *Layer) Clear(p Point) {
	idx := l.index(p)
	existing := l.cells[idx]
	if existing == nil {
		return
	}
	if existing == l.player {
		l.player = nil
	}
	l.cells[idx] = nil
	l.populated--
}

// Get returns the entity at p
func (l *Layer) Get(p Point) (Entity, bool) {
	e := l.cells[l.index(p)]
	if e == nil {
		return Entity{}, false
	}
	return *e, true
}

// Has reports whether an entity occupies p
func (l *Layer) Has(p Point) bool {
	return l.cells[l.index(p)] != nil
}

// Player returns the layer's player, if it holds one
func (l *Layer) Player() (Entity, bool) {
	if l.player == nil {
		return Entity{}, false
	}
	return *l.player, true
}

// ClearPlayer removes the player, if any
func (l *Layer) ClearPlayer() {
	if l.player != nil {
		l.Clear(l.player.Pos)
	}
}

// Len returns the number of entities held
func (l *Layer) Len() int {
	return l.populated
}

// Entities returns copies of all entities in row-major order
func (l *Layer) Entities() []Entity {
	out := make([]Entity, 0, l.populated)
	for _, e := range l.cells {
		if e != nil {
			out = append(out, *e)
		}
	}
	return out
}

// update mutates the stored entity at p in place
func (l *Layer) update(p Point, fn func(e *Entity)) bool {
	e := l.cells[l.index(p)]
	if e == nil {
		return false
	}
	fn(e)
	return true
}
