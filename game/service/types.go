package service

import (
	"time"

	"github.com/wricardo/sokoban/game/engine"
)

// Mode selects which engine of a session receives commands
type Mode string

const (
	ModePlay Mode = "play"
	ModeEdit Mode = "edit"
)

// ParseMode maps "play" and "edit" to a Mode. The empty string is play.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePlay:
		return ModePlay, nil
	case ModeEdit:
		return ModeEdit, nil
	}
	return "", ErrInvalidMode
}

// CommandType names an input command
type CommandType string

const (
	CmdMove         CommandType = "move"
	CmdMoveCursor   CommandType = "move_cursor"
	CmdPlaceEmpty   CommandType = "place_empty"
	CmdPlaceWall    CommandType = "place_wall"
	CmdPlaceBox     CommandType = "place_box"
	CmdPlaceSpot    CommandType = "place_spot"
	CmdPlacePlayer  CommandType = "place_player"
	CmdResizeWidth  CommandType = "resize_width"
	CmdResizeHeight CommandType = "resize_height"
	CmdNew          CommandType = "new"
	CmdSave         CommandType = "save"
	CmdLoad         CommandType = "load"
	CmdReset        CommandType = "reset"
	CmdSwitchMode   CommandType = "switch_mode"
)

// Commands lists every command with the modes that accept it
var Commands = map[CommandType][]Mode{
	CmdMove:         {ModePlay},
	CmdMoveCursor:   {ModeEdit},
	CmdPlaceEmpty:   {ModeEdit},
	CmdPlaceWall:    {ModeEdit},
	CmdPlaceBox:     {ModeEdit},
	CmdPlaceSpot:    {ModeEdit},
	CmdPlacePlayer:  {ModeEdit},
	CmdResizeWidth:  {ModeEdit},
	CmdResizeHeight: {ModeEdit},
	CmdNew:          {ModeEdit},
	CmdSave:         {ModeEdit},
	CmdLoad:         {ModePlay, ModeEdit},
	CmdReset:        {ModePlay, ModeEdit},
	CmdSwitchMode:   {ModePlay, ModeEdit},
}

// Command is one input to a session
type Command struct {
	Type      CommandType `json:"command"`
	Direction string      `json:"direction,omitempty"` // move, move_cursor
	Delta     int         `json:"delta,omitempty"`     // resize_width, resize_height
	Level     string      `json:"level,omitempty"`     // save, load
	Text      string      `json:"text,omitempty"`      // load from raw level text instead of a stored level
	Mode      Mode        `json:"mode,omitempty"`      // switch_mode; empty toggles
}

// Session represents an active game session. Each mode keeps its own
// engine and the level its reset rebuilds from.
type Session struct {
	ID             string
	Mode           Mode
	Play           *engine.PlayEngine
	Edit           *engine.EditEngine
	PlayLevel      *engine.Level // nil means the built-in example
	PlayLevelName  string
	EditLevel      *engine.Level // nil means a blank board of the editor's new size
	EditLevelName  string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Snapshot returns the snapshot of the active engine
func (s *Session) Snapshot() engine.Snapshot {
	if s.Mode == ModeEdit {
		return s.Edit.Snapshot()
	}
	return s.Play.Snapshot()
}

// LevelName returns the name of the active mode's level
func (s *Session) LevelName() string {
	if s.Mode == ModeEdit {
		return s.EditLevelName
	}
	return s.PlayLevelName
}

// GameState is what renderers receive for a session
type GameState struct {
	SessionID string          `json:"session_id"`
	Mode      Mode            `json:"mode"`
	LevelName string          `json:"level_name,omitempty"`
	NewWidth  int             `json:"new_width"`
	NewHeight int             `json:"new_height"`
	Board     engine.Snapshot `json:"board"`

	// Play mode hints
	SpotsLeft   int           `json:"spots_left"`
	NearestSpot *engine.Point `json:"nearest_spot,omitempty"`
	SpotSteps   int           `json:"spot_steps,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string     `json:"id"`
	Mode           Mode       `json:"mode"`
	LevelName      string     `json:"level_name,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	GameState      *GameState `json:"game_state"`
}

// CommandResult contains the result of a command
type CommandResult struct {
	Command CommandType `json:"command"`
	Changed bool        `json:"changed"`
	Outcome string      `json:"outcome,omitempty"`
	Message string      `json:"message"`
	State   *GameState  `json:"game_state"`
	Events  []GameEvent `json:"events,omitempty"`
}

// BulkMoveResult contains the result of several moves
type BulkMoveResult struct {
	MovesExecuted  int         `json:"moves_executed"`
	RequestedMoves int         `json:"requested_moves"`
	Pushes         int         `json:"pushes"`
	Outcomes       []string    `json:"outcomes"`
	StoppedReason  string      `json:"stopped_reason,omitempty"`
	Won            bool        `json:"won"`
	State          *GameState  `json:"game_state"`
	Events         []GameEvent `json:"events,omitempty"`
}

// GameEvent represents something that happened while handling a command
type GameEvent struct {
	Type      string        `json:"type"` // "move", "push", "victory", "reset", "load", "save", "new", "mode"
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Position  *engine.Point `json:"position,omitempty"`
}
