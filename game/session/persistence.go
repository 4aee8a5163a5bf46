package session

import (
	"time"

	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string        `json:"id"`
	Mode           service.Mode  `json:"mode"`
	CreatedAt      time.Time     `json:"created_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	Play           PersistedPlay `json:"play"`
	Edit           PersistedEdit `json:"edit"`
}

// PersistedPlay is the play engine state. Boards are stored as level text;
// seated flags and the win flag are rebuilt from it.
type PersistedPlay struct {
	Board       string           `json:"board"`
	PlayerMoves int              `json:"player_moves"`
	BoxMoves    int              `json:"box_moves"`
	Facing      engine.Direction `json:"facing"`
	LastLevel   *string          `json:"last_level,omitempty"`
	LevelName   string           `json:"level_name,omitempty"`
}

// PersistedEdit is the editor state
type PersistedEdit struct {
	Board     string       `json:"board"`
	Cursor    engine.Point `json:"cursor"`
	NewWidth  int          `json:"new_width"`
	NewHeight int          `json:"new_height"`
	LastLevel *string      `json:"last_level,omitempty"`
	LevelName string       `json:"level_name,omitempty"`
}
