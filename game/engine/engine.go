package engine

import "fmt"

// PlayEngine applies movement and push rules to a board and tracks the
// move counters and the win condition. It is not safe for concurrent use.
type PlayEngine struct {
	board       *Board
	playerMoves int
	boxMoves    int
	won         bool
}

// NewPlayEngine builds a fresh board from level with zeroed counters
func NewPlayEngine(level *Level) (*PlayEngine, error) {
	board, err := NewBoard(level)
	if err != nil {
		return nil, err
	}
	e := &PlayEngine{board: board}
	e.updateWinCondition()
	return e, nil
}

// RestorePlayEngine rebuilds a play engine from a persisted level and
// counters, turning the player to the persisted facing
func RestorePlayEngine(level *Level, playerMoves, boxMoves int, facing Direction) (*PlayEngine, error) {
	if playerMoves < 0 || boxMoves < 0 {
		return nil, fmt.Errorf("restore play engine: negative counters %d/%d", playerMoves, boxMoves)
	}
	e, err := NewPlayEngine(level)
	if err != nil {
		return nil, err
	}
	e.playerMoves = playerMoves
	e.boxMoves = boxMoves
	if player, ok := e.board.occupants.Player(); ok {
		e.board.occupants.update(player.Pos, func(p *Entity) { p.Facing = facing })
	}
	return e, nil
}

// Board returns the live board
func (e *PlayEngine) Board() *Board {
	return e.board
}

// PlayerMoves returns how many times the player has moved
func (e *PlayEngine) PlayerMoves() int {
	return e.playerMoves
}

// BoxMoves returns how many times a box has been pushed
func (e *PlayEngine) BoxMoves() int {
	return e.boxMoves
}

// Won reports whether every spot is seated
func (e *PlayEngine) Won() bool {
	return e.won
}

// Player returns the player entity
func (e *PlayEngine) Player() (Entity, bool) {
	return e.board.occupants.Player()
}

// ToLevel converts the live board into a level
func (e *PlayEngine) ToLevel() *Level {
	return e.board.ToLevel()
}

// Snapshot returns a read-only view including counters and win flag
func (e *PlayEngine) Snapshot() Snapshot {
	s := e.board.Snapshot()
	s.PlayerMoves = e.playerMoves
	s.BoxMoves = e.boxMoves
	s.Won = e.won
	return s
}

func (e *PlayEngine) updateWinCondition() {
	e.won = e.board.AllSpotsSeated()
}
