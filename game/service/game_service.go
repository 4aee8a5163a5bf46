package service

import (
	"context"
	"errors"

	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/levels"
)

var (
	ErrInvalidMode       = errors.New("invalid mode")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrCommandNotAllowed = errors.New("command not allowed in this mode")
	ErrInvalidLevel      = errors.New("invalid level")
	ErrMissingLevelName  = errors.New("level name required")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelName string, mode Mode) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Execute(ctx context.Context, sessionID string, cmd Command) (*CommandResult, error)
	Move(ctx context.Context, sessionID, direction string) (*CommandResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameState, error)
	GetLevelText(ctx context.Context, sessionID string) ([]byte, error)

	// Levels
	ListLevels(ctx context.Context) ([]*levels.Info, error)
	LoadLevel(ctx context.Context, name string) (*engine.Level, error)
	SaveLevel(ctx context.Context, name string, level *engine.Level) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, session *Session) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelCatalog loads and stores named levels
type LevelCatalog interface {
	Load(ctx context.Context, name string) (*engine.Level, error)
	Save(ctx context.Context, name string, level *engine.Level) error
	List(ctx context.Context) ([]*levels.Info, error)
	Resolve(ctx context.Context, name string) (string, *engine.Level, error)
}
