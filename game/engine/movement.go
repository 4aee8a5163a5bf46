package engine

// MoveOutcome describes what a move request did. Blocked outcomes are
// ordinary play, not errors.
type MoveOutcome int

const (
	NoPlayer MoveOutcome = iota
	Moved
	Pushed
	BlockedBoundary
	BlockedWall
	BlockedBox
)

var outcomeNames = [...]string{"no_player", "moved", "pushed", "blocked_boundary", "blocked_wall", "blocked_box"}

func (o MoveOutcome) String() string {
	if o < NoPlayer || o > BlockedBox {
		return "unknown"
	}
	return outcomeNames[o]
}

// MarshalText implements encoding.TextMarshaler
func (o MoveOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Succeeded reports whether the player changed cells
func (o MoveOutcome) Succeeded() bool {
	return o == Moved || o == Pushed
}

// Move moves the player one step in direction d, pushing a box if one is
// in the way. The player turns to face d even when the move is rejected.
func (e *PlayEngine) Move(d Direction) MoveOutcome {
	occupants := e.board.occupants
	player, ok := occupants.Player()
	if !ok {
		return NoPlayer
	}

	occupants.update(player.Pos, func(p *Entity) { p.Facing = d })
	player.Facing = d

	target := player.Pos.Add(d)
	if !e.board.InBounds(target) {
		return BlockedBoundary
	}

	occupant, occupied := occupants.Get(target)
	if !occupied {
		e.relocate(player, target)
		e.playerMoves++
		return Moved
	}
	if occupant.Kind != KindBox {
		return BlockedWall
	}

	beyond := target.Add(d)
	if !e.board.InBounds(beyond) || occupants.Has(beyond) {
		return BlockedBox
	}

	occupant.Seated = e.board.spots.Has(beyond)
	e.relocate(occupant, beyond)
	e.relocate(player, target)

	e.board.spots.update(beyond, func(s *Entity) { s.Seated = true })
	e.board.spots.update(target, func(s *Entity) { s.Seated = false })

	e.boxMoves++
	e.playerMoves++
	e.updateWinCondition()
	return Pushed
}

// CanMove reports whether Move(d) would change the player's cell
func (e *PlayEngine) CanMove(d Direction) bool {
	player, ok := e.board.occupants.Player()
	if !ok {
		return false
	}
	target := player.Pos.Add(d)
	if !e.board.InBounds(target) {
		return false
	}
	occupant, occupied := e.board.occupants.Get(target)
	if !occupied {
		return true
	}
	if occupant.Kind != KindBox {
		return false
	}
	beyond := target.Add(d)
	return e.board.InBounds(beyond) && !e.board.occupants.Has(beyond)
}

// PossibleMoves returns the directions in which the player can move
func (e *PlayEngine) PossibleMoves() []Direction {
	var possible []Direction
	for _, d := range Directions {
		if e.CanMove(d) {
			possible = append(possible, d)
		}
	}
	return possible
}

// relocate moves entity from its position to dst on the occupant layer
func (e *PlayEngine) relocate(entity Entity, dst Point) {
	e.board.occupants.Clear(entity.Pos)
	entity.Pos = dst
	if err := e.board.occupants.Put(entity); err != nil {
		// the player was cleared above, so a second one cannot exist
		panic(err)
	}
}
