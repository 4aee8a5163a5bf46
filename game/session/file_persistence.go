package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
)

// FilePersistence implements SessionPersistence using file system storage
type FilePersistence struct {
	sessionsDir string
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string) (*FilePersistence, error) {
	// Create sessions directory if it doesn't exist
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &FilePersistence{sessionsDir: sessionsDir}, nil
}

// Save persists a session to a JSON file
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := Encode(session)

	// Marshal to JSON with indentation for readability
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	filePath := fp.getFilePath(session.ID)
	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load retrieves a session from a JSON file
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	filePath := fp.getFilePath(id)

	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	return Decode(&data)
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	if err := os.Remove(fp.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

// ListAll returns all persisted session IDs
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ".json"))
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

// getFilePath returns the full file path for a session ID
func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, fmt.Sprintf("%s.json", strings.ToLower(id)))
}

// Encode captures a session as persistable data
func Encode(session *service.Session) *PersistedSessionData {
	data := &PersistedSessionData{
		ID:             session.ID,
		Mode:           session.Mode,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
	}

	if session.Play != nil {
		data.Play = PersistedPlay{
			Board:       session.Play.ToLevel().String(),
			PlayerMoves: session.Play.PlayerMoves(),
			BoxMoves:    session.Play.BoxMoves(),
			LastLevel:   levelText(session.PlayLevel),
			LevelName:   session.PlayLevelName,
		}
		if player, ok := session.Play.Player(); ok {
			data.Play.Facing = player.Facing
		}
	}

	if session.Edit != nil {
		w, h := session.Edit.NewSize()
		data.Edit = PersistedEdit{
			Board:     session.Edit.ToLevel().String(),
			Cursor:    session.Edit.Cursor(),
			NewWidth:  w,
			NewHeight: h,
			LastLevel: levelText(session.EditLevel),
			LevelName: session.EditLevelName,
		}
	}
	return data
}

// Decode rebuilds a session from persisted data
func Decode(data *PersistedSessionData) (*service.Session, error) {
	mode, err := service.ParseMode(string(data.Mode))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", data.ID, err)
	}

	play, err := engine.RestorePlayEngine(engine.ParseLevelString(data.Play.Board), data.Play.PlayerMoves, data.Play.BoxMoves, data.Play.Facing)
	if err != nil {
		return nil, fmt.Errorf("failed to restore play board: %w", err)
	}

	edit, err := engine.NewEditEngine(engine.ParseLevelString(data.Edit.Board))
	if err != nil {
		return nil, fmt.Errorf("failed to restore editor board: %w", err)
	}
	edit.SetCursor(data.Edit.Cursor)
	newWidth, newHeight := data.Edit.NewWidth, data.Edit.NewHeight
	if newWidth == 0 && newHeight == 0 {
		newWidth, newHeight = engine.DefaultNewWidth, engine.DefaultNewHeight
	}
	edit.SetNewSize(newWidth, newHeight)

	return &service.Session{
		ID:             data.ID,
		Mode:           mode,
		Play:           play,
		Edit:           edit,
		PlayLevel:      parseText(data.Play.LastLevel),
		PlayLevelName:  data.Play.LevelName,
		EditLevel:      parseText(data.Edit.LastLevel),
		EditLevelName:  data.Edit.LevelName,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

func levelText(level *engine.Level) *string {
	if level == nil {
		return nil
	}
	text := level.String()
	return &text
}

func parseText(text *string) *engine.Level {
	if text == nil {
		return nil
	}
	return engine.ParseLevelString(*text)
}
