package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/levels"
)

// maxBulkMoves caps a single BulkMove call
const maxBulkMoves = 200

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelCatalog
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, catalog LevelCatalog) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   catalog,
	}
}

// NewSession builds a session whose play engine runs level. The editor
// starts on a blank board unless mode is edit, in which case it opens
// level too.
func NewSession(levelName string, level *engine.Level, mode Mode) (*Session, error) {
	play, err := engine.NewPlayEngine(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	sess := &Session{
		Mode:          mode,
		Play:          play,
		PlayLevel:     level,
		PlayLevelName: levelName,
	}

	if mode == ModeEdit {
		edit, err := engine.NewEditEngine(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
		edit.SetNewSize(level.Width(), level.Height())
		sess.Edit = edit
		sess.EditLevel = level
		sess.EditLevelName = levelName
	} else {
		edit, err := engine.NewEditEngine(engine.NewLevel(engine.DefaultNewWidth, engine.DefaultNewHeight))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
		sess.Edit = edit
	}
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelName string, mode Mode) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == "" {
		mode = ModePlay
	}
	if mode != ModePlay && mode != ModeEdit {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	name, level, err := s.levels.Resolve(ctx, levelName)
	if err != nil {
		if errors.Is(err, levels.ErrLevelNotFound) {
			if available, listErr := s.levels.List(ctx); listErr == nil && len(available) > 0 {
				names := make([]string, 0, len(available))
				for _, info := range available {
					names = append(names, info.Name)
				}
				return nil, fmt.Errorf("level '%s' not found. Available levels: %v: %w", levelName, names, err)
			}
		}
		return nil, fmt.Errorf("failed to load level %s: %w", levelName, err)
	}

	sess, err := NewSession(name, level, mode)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err = s.sessions.Create("", sess)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	// Write lock: touching the access time mutates the session
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*CommandResult, error) {
	return s.Execute(ctx, sessionID, Command{Type: CmdMove, Direction: direction})
}

// Execute dispatches one command to the session's active engine
func (s *gameServiceImpl) Execute(ctx context.Context, sessionID string, cmd Command) (*CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	modes, known := Commands[cmd.Type]
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
	if !allowed(modes, sess.Mode) {
		return nil, fmt.Errorf("%w: %s in %s mode", ErrCommandNotAllowed, cmd.Type, sess.Mode)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result, err := s.apply(ctx, sess, cmd)
	if err != nil {
		return nil, err
	}
	result.Command = cmd.Type
	result.State = stateOf(sess)

	if result.Changed {
		if err := s.sessions.Save(sessionID); err != nil {
			log.Printf("Warning: Failed to persist session %s: %v", sessionID, err)
		}
	}
	return result, nil
}

func (s *gameServiceImpl) apply(ctx context.Context, sess *Session, cmd Command) (*CommandResult, error) {
	switch cmd.Type {
	case CmdMove:
		d, err := engine.ParseDirection(cmd.Direction)
		if err != nil {
			return nil, err
		}
		return movePlayer(sess, d), nil

	case CmdMoveCursor:
		d, err := engine.ParseDirection(cmd.Direction)
		if err != nil {
			return nil, err
		}
		if !sess.Edit.MoveCursor(d) {
			return &CommandResult{Message: "Cursor is at the edge of the board"}, nil
		}
		return &CommandResult{Changed: true, Message: fmt.Sprintf("Cursor moved %s to %s", d, sess.Edit.Cursor())}, nil

	case CmdPlaceEmpty, CmdPlaceWall, CmdPlaceBox, CmdPlaceSpot, CmdPlacePlayer:
		return place(sess, cmd.Type), nil

	case CmdResizeWidth:
		w := sess.Edit.ResizeWidth(cmd.Delta)
		_, h := sess.Edit.NewSize()
		return &CommandResult{Changed: cmd.Delta != 0, Message: fmt.Sprintf("Size of new map: %dx%d", w, h)}, nil

	case CmdResizeHeight:
		h := sess.Edit.ResizeHeight(cmd.Delta)
		w, _ := sess.Edit.NewSize()
		return &CommandResult{Changed: cmd.Delta != 0, Message: fmt.Sprintf("Size of new map: %dx%d", w, h)}, nil

	case CmdNew:
		sess.EditLevel = nil
		sess.EditLevelName = ""
		sess.Edit.NewBlank()
		w, h := sess.Edit.NewSize()
		return &CommandResult{
			Changed: true,
			Message: fmt.Sprintf("Started a blank %dx%d board", w, h),
			Events:  []GameEvent{{Type: "new", Message: "Blank board created", Timestamp: time.Now()}},
		}, nil

	case CmdSave:
		return s.saveEditor(ctx, sess, cmd.Level)

	case CmdLoad:
		return s.load(ctx, sess, cmd)

	case CmdReset:
		if err := resetActive(sess); err != nil {
			return nil, err
		}
		return &CommandResult{
			Changed: true,
			Message: "Board reset to the last level",
			Events:  []GameEvent{{Type: "reset", Message: "Board reset to the last level", Timestamp: time.Now()}},
		}, nil

	case CmdSwitchMode:
		target := cmd.Mode
		if target == "" {
			target = ModeEdit
			if sess.Mode == ModeEdit {
				target = ModePlay
			}
		}
		if target != ModePlay && target != ModeEdit {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMode, target)
		}
		changed := target != sess.Mode
		sess.Mode = target
		return &CommandResult{
			Changed: changed,
			Message: fmt.Sprintf("Switched to %s mode", target),
			Events:  []GameEvent{{Type: "mode", Message: string(target), Timestamp: time.Now()}},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}

// movePlayer applies one move. A solved level ignores further moves.
func movePlayer(sess *Session, d engine.Direction) *CommandResult {
	if sess.Play.Won() {
		return &CommandResult{Outcome: "ignored", Message: "Level already solved, reset or load another level"}
	}

	outcome := sess.Play.Move(d)
	result := &CommandResult{
		Changed: true, // facing changes even when the move is blocked
		Outcome: outcome.String(),
	}
	if outcome == engine.NoPlayer {
		result.Changed = false
		result.Message = "There is no player on the board"
		return result
	}

	player, _ := sess.Play.Player()
	pos := player.Pos
	switch outcome {
	case engine.Moved:
		result.Message = fmt.Sprintf("Moved %s to %s", d, pos)
		result.Events = append(result.Events, GameEvent{Type: "move", Message: result.Message, Timestamp: time.Now(), Position: &pos})
	case engine.Pushed:
		result.Message = fmt.Sprintf("Pushed box %s, player at %s", d, pos)
		result.Events = append(result.Events, GameEvent{Type: "push", Message: result.Message, Timestamp: time.Now(), Position: &pos})
	case engine.BlockedBoundary:
		result.Message = fmt.Sprintf("Can't move %s: edge of the board", d)
	case engine.BlockedWall:
		result.Message = fmt.Sprintf("Can't move %s: wall", d)
	case engine.BlockedBox:
		result.Message = fmt.Sprintf("Can't move %s: box is blocked", d)
	}

	if sess.Play.Won() {
		result.Message += ". Level solved!"
		result.Events = append(result.Events, GameEvent{
			Type:      "victory",
			Message:   fmt.Sprintf("Solved in %d moves and %d pushes", sess.Play.PlayerMoves(), sess.Play.BoxMoves()),
			Timestamp: time.Now(),
		})
	}
	return result
}

func place(sess *Session, cmd CommandType) *CommandResult {
	cursor := sess.Edit.Cursor()
	before := sess.Edit.ToLevel()

	switch cmd {
	case CmdPlaceEmpty:
		sess.Edit.PlaceEmpty()
	case CmdPlaceWall:
		sess.Edit.PlaceWall()
	case CmdPlaceBox:
		sess.Edit.PlaceBox()
	case CmdPlaceSpot:
		sess.Edit.PlaceSpot()
	case CmdPlacePlayer:
		sess.Edit.PlacePlayer()
	}

	changed := !sess.Edit.ToLevel().Equal(before)
	return &CommandResult{Changed: changed, Message: fmt.Sprintf("%s at %s", cmd, cursor)}
}

// saveEditor stores the editor board. The editor only remembers it as its
// last level once the store accepted it.
func (s *gameServiceImpl) saveEditor(ctx context.Context, sess *Session, name string) (*CommandResult, error) {
	if name == "" {
		name = sess.EditLevelName
	}
	if name == "" {
		return nil, ErrMissingLevelName
	}

	level := sess.Edit.ToLevel()
	if err := s.levels.Save(ctx, name, level); err != nil {
		return nil, fmt.Errorf("failed to save level %s: %w", name, err)
	}

	sess.EditLevel = level
	sess.EditLevelName = name
	msg := fmt.Sprintf("Saved level %s (%dx%d)", name, level.Width(), level.Height())
	return &CommandResult{
		Changed: true,
		Message: msg,
		Events:  []GameEvent{{Type: "save", Message: msg, Timestamp: time.Now()}},
	}, nil
}

// load replaces the active engine's board. Nothing changes unless the
// level was read and built successfully.
func (s *gameServiceImpl) load(ctx context.Context, sess *Session, cmd Command) (*CommandResult, error) {
	var (
		name  string
		level *engine.Level
	)
	switch {
	case cmd.Text != "":
		name = cmd.Level
		level = engine.ParseLevelString(cmd.Text)
	case cmd.Level != "":
		loaded, err := s.levels.Load(ctx, cmd.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to load level %s: %w", cmd.Level, err)
		}
		name, level = cmd.Level, loaded
	default:
		return nil, ErrMissingLevelName
	}

	if sess.Mode == ModeEdit {
		edit, err := engine.NewEditEngine(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
		edit.SetNewSize(level.Width(), level.Height())
		sess.Edit = edit
		sess.EditLevel = level
		sess.EditLevelName = name
	} else {
		play, err := engine.NewPlayEngine(level)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
		sess.Play = play
		sess.PlayLevel = level
		sess.PlayLevelName = name
	}

	msg := fmt.Sprintf("Loaded %dx%d level", level.Width(), level.Height())
	if name != "" {
		msg = fmt.Sprintf("Loaded level %s (%dx%d)", name, level.Width(), level.Height())
	}
	return &CommandResult{
		Changed: true,
		Message: msg,
		Events:  []GameEvent{{Type: "load", Message: msg, Timestamp: time.Now()}},
	}, nil
}

// resetActive rebuilds the active engine from its last level
func resetActive(sess *Session) error {
	if sess.Mode == ModeEdit {
		if sess.EditLevel == nil {
			sess.Edit.NewBlank()
			return nil
		}
		edit, err := engine.NewEditEngine(sess.EditLevel)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
		}
		w, h := sess.Edit.NewSize()
		edit.SetNewSize(w, h)
		sess.Edit = edit
		return nil
	}

	level := sess.PlayLevel
	if level == nil {
		level = engine.ExampleLevel()
	}
	play, err := engine.NewPlayEngine(level)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	sess.Play = play
	return nil
}

// BulkMove executes several moves, stopping early once the level is solved
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if sess.Mode != ModePlay {
		return nil, fmt.Errorf("%w: move in %s mode", ErrCommandNotAllowed, sess.Mode)
	}

	directions := make([]engine.Direction, 0, len(moves))
	for _, m := range moves {
		d, err := engine.ParseDirection(m)
		if err != nil {
			return nil, err
		}
		directions = append(directions, d)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{RequestedMoves: len(moves), Outcomes: []string{}}
	if len(directions) > maxBulkMoves {
		directions = directions[:maxBulkMoves]
		result.StoppedReason = fmt.Sprintf("truncated to %d moves", maxBulkMoves)
	}

	for _, d := range directions {
		if err := ctx.Err(); err != nil {
			result.StoppedReason = "cancelled"
			break
		}
		if sess.Play.Won() {
			result.StoppedReason = "level solved"
			break
		}
		step := movePlayer(sess, d)
		result.Outcomes = append(result.Outcomes, step.Outcome)
		result.Events = append(result.Events, step.Events...)
		if step.Outcome == engine.Moved.String() || step.Outcome == engine.Pushed.String() {
			result.MovesExecuted++
		}
		if step.Outcome == engine.Pushed.String() {
			result.Pushes++
		}
	}
	if result.StoppedReason == "" && sess.Play.Won() {
		result.StoppedReason = "level solved"
	}

	result.Won = sess.Play.Won()
	result.State = stateOf(sess)

	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s: %v", sessionID, err)
	}
	return result, nil
}

// GetGameState returns the render state of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	return stateOf(sess), nil
}

// GetLevelText serializes the active board of a session
func (s *gameServiceImpl) GetLevelText(ctx context.Context, sessionID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if sess.Mode == ModeEdit {
		return sess.Edit.ToLevel().Bytes(), nil
	}
	return sess.Play.ToLevel().Bytes(), nil
}

// ListLevels returns all stored levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*levels.Info, error) {
	return s.levels.List(ctx)
}

// LoadLevel loads a stored level by name
func (s *gameServiceImpl) LoadLevel(ctx context.Context, name string) (*engine.Level, error) {
	return s.levels.Load(ctx, name)
}

// SaveLevel stores a level under name. Levels holding more than one player
// are rejected.
func (s *gameServiceImpl) SaveLevel(ctx context.Context, name string, level *engine.Level) error {
	if _, err := engine.NewBoard(level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return s.levels.Save(ctx, name, level)
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		Mode:           sess.Mode,
		LevelName:      sess.LevelName(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      stateOf(sess),
	}
}

func stateOf(sess *Session) *GameState {
	w, h := sess.Edit.NewSize()
	state := &GameState{
		SessionID: sess.ID,
		Mode:      sess.Mode,
		LevelName: sess.LevelName(),
		NewWidth:  w,
		NewHeight: h,
		Board:     sess.Snapshot(),
	}
	if sess.Mode == ModePlay {
		board := sess.Play.Board()
		state.SpotsLeft = engine.UnseatedSpots(board)
		if spot, steps, ok := engine.NearestUnseatedSpot(board); ok {
			state.NearestSpot = &spot
			state.SpotSteps = steps
		}
	}
	return state
}

func allowed(modes []Mode, mode Mode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}
