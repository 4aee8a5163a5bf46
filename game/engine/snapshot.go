package engine

// Snapshot is a read-only copy of a board for renderers and clients
type Snapshot struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Occupants   []Entity `json:"occupants"`
	Spots       []Entity `json:"spots"`
	Cursor      *Entity  `json:"cursor,omitempty"`
	PlayerMoves int      `json:"player_moves"`
	BoxMoves    int      `json:"box_moves"`
	Won         bool     `json:"won"`
	Rows        []string `json:"rows"`
}

// Snapshot copies the board's entities and its level rows
func (b *Board) Snapshot() Snapshot {
	return Snapshot{
		Width:     b.width,
		Height:    b.height,
		Occupants: b.occupants.Entities(),
		Spots:     b.spots.Entities(),
		Rows:      b.ToLevel().Rows(),
	}
}
