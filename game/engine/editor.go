package engine

// EditEngine places entities on a board at a cursor. The new-board size is
// only used by NewBlank and never resizes the live board.
type EditEngine struct {
	board     *Board
	cursor    Point
	newWidth  int
	newHeight int
}

// NewEditEngine builds an editable board from level with the cursor in
// the middle
func NewEditEngine(level *Level) (*EditEngine, error) {
	board, err := NewBoard(level)
	if err != nil {
		return nil, err
	}
	e := &EditEngine{
		newWidth:  DefaultNewWidth,
		newHeight: DefaultNewHeight,
	}
	e.setBoard(board)
	return e, nil
}

func (e *EditEngine) setBoard(board *Board) {
	e.board = board
	e.cursor = Point{X: (board.width - 1) / 2, Y: (board.height - 1) / 2}
}

// Board returns the live board
func (e *EditEngine) Board() *Board {
	return e.board
}

// Cursor returns the cursor position
func (e *EditEngine) Cursor() Point {
	return e.cursor
}

// SetCursor moves the cursor to p if p is on the board
func (e *EditEngine) SetCursor(p Point) bool {
	if !e.board.InBounds(p) {
		return false
	}
	e.cursor = p
	return true
}

// MoveCursor moves the cursor one step unless that leaves the board
func (e *EditEngine) MoveCursor(d Direction) bool {
	return e.SetCursor(e.cursor.Add(d))
}

// PlaceEmpty clears both layers at the cursor
func (e *EditEngine) PlaceEmpty() {
	if !e.board.InBounds(e.cursor) {
		return
	}
	e.board.occupants.Clear(e.cursor)
	e.board.spots.Clear(e.cursor)
}

// PlaceWall puts a wall at the cursor, removing any spot there
func (e *EditEngine) PlaceWall() {
	if !e.board.InBounds(e.cursor) {
		return
	}
	e.board.spots.Clear(e.cursor)
	e.mustPut(e.board.occupants, NewWall(e.cursor))
}

// PlaceBox puts a box at the cursor, leaving the spot layer alone
func (e *EditEngine) PlaceBox() {
	if !e.board.InBounds(e.cursor) {
		return
	}
	e.mustPut(e.board.occupants, NewBox(e.cursor, false))
}

// PlaceSpot puts a spot at the cursor, removing any occupant there
func (e *EditEngine) PlaceSpot() {
	if !e.board.InBounds(e.cursor) {
		return
	}
	e.board.occupants.Clear(e.cursor)
	e.mustPut(e.board.spots, NewSpot(e.cursor, false))
}

// PlacePlayer moves the single player to the cursor
func (e *EditEngine) PlacePlayer() {
	if !e.board.InBounds(e.cursor) {
		return
	}
	e.board.occupants.ClearPlayer()
	e.mustPut(e.board.occupants, NewPlayer(e.cursor))
}

func (e *EditEngine) mustPut(layer *Layer, entity Entity) {
	if err := layer.Put(entity); err != nil {
		panic(err)
	}
}

// ResizeWidth changes the width used for the next blank board, never
// going below MinBoardSize
func (e *EditEngine) ResizeWidth(delta int) int {
	e.newWidth = clampSize(e.newWidth + delta)
	return e.newWidth
}

// ResizeHeight changes the height used for the next blank board
func (e *EditEngine) ResizeHeight(delta int) int {
	e.newHeight = clampSize(e.newHeight + delta)
	return e.newHeight
}

// SetNewSize sets the size used for the next blank board
func (e *EditEngine) SetNewSize(width, height int) {
	e.newWidth = clampSize(width)
	e.newHeight = clampSize(height)
}

// NewSize returns the size used for the next blank board
func (e *EditEngine) NewSize() (width, height int) {
	return e.newWidth, e.newHeight
}

// NewBlank replaces the live board with an empty one of NewSize
func (e *EditEngine) NewBlank() {
	e.setBoard(NewBlankBoard(e.newWidth, e.newHeight))
}

// ToLevel converts the live board into a level
func (e *EditEngine) ToLevel() *Level {
	return e.board.ToLevel()
}

// Snapshot returns a read-only view including the cursor
func (e *EditEngine) Snapshot() Snapshot {
	s := e.board.Snapshot()
	cursor := Entity{Kind: KindCursor, Pos: e.cursor}
	s.Cursor = &cursor
	return s
}

func clampSize(n int) int {
	if n < MinBoardSize {
		return MinBoardSize
	}
	return n
}
