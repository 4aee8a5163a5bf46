package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/levels"
	"github.com/wricardo/sokoban/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Sokoban",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sokoban - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Push every box ($) onto a storage spot (.) to solve the level. You (@) can
push one box at a time and can never pull.

AVAILABLE TOOLS:
- create_session: Start a session on a stored level (play or edit mode)
- list_sessions / get_session: Inspect sessions
- game_state: Board rows, counters and solved flag
- move: Single move (up/down/left/right) - requires intent explanation
- bulk_move: Several moves at once - requires intent explanation
- command: Any session command (reset, load, save, editor placement, switch_mode)
- reset_game: Rebuild the current level
- list_levels / get_level: Browse stored levels
- describe_cell: What occupies one cell
- game_instructions: Full rules and symbol legend`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func directionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"up", "down", "left", "right"},
		"description": description,
	}
}

func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new session on a stored level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Name of the level to use (optional, defaults to the server's default level)",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"play", "edit"},
					"description": "Starting mode (default play)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell, pushing a box if one is in the way",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"direction":  directionProperty("Direction to move"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute several moves in sequence, stopping once the level is solved",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"moves": map[string]interface{}{
					"type":        "array",
					"items":       directionProperty("Direction"),
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "command",
		Description: "Send any command to a session: move, move_cursor, place_empty, place_wall, place_box, place_spot, place_player, resize_width, resize_height, new, save, load, reset, switch_mode",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"command": map[string]interface{}{
					"type":        "string",
					"enum":        commandNames(),
					"description": "Command to run",
				},
				"direction": directionProperty("Direction for move and move_cursor"),
				"delta": map[string]interface{}{
					"type":        "integer",
					"description": "Size change for resize_width and resize_height",
				},
				"level": map[string]interface{}{
					"type":        "string",
					"description": "Level name for save and load",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Raw level text for load instead of a stored level",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"play", "edit"},
					"description": "Target mode for switch_mode (omit to toggle)",
				},
			},
			Required: []string{"session_id", "command"},
		},
	}, c.handleCommand)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Rebuild the session's current level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List stored levels",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_level",
		Description: "Get the text of a stored level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Level name",
				},
			},
			Required: []string{"name"},
		},
	}, c.handleGetLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules and the level text legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe what occupies one cell of a session's board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Column (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Row (0-based)",
				},
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func commandNames() []string {
	names := make([]string, 0, len(service.Commands))
	for _, cmd := range []service.CommandType{
		service.CmdMove, service.CmdMoveCursor,
		service.CmdPlaceEmpty, service.CmdPlaceWall, service.CmdPlaceBox, service.CmdPlaceSpot, service.CmdPlacePlayer,
		service.CmdResizeWidth, service.CmdResizeHeight,
		service.CmdNew, service.CmdSave, service.CmdLoad, service.CmdReset, service.CmdSwitchMode,
	} {
		names = append(names, string(cmd))
	}
	return names
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if text, ok := result.(*string); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*text = string(data)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	level, _ := args["level"].(string)
	mode, _ := args["mode"].(string)

	body := map[string]string{}
	if level != "" {
		body["level"] = level
	}
	if mode != "" {
		body["mode"] = mode
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\n\n%s", session.ID, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		solved := ""
		if s.GameState != nil && s.GameState.Board.Won {
			solved = ", solved"
		}
		fmt.Fprintf(&b, "- %s (Level: %s, Mode: %s%s, Created: %s)\n",
			s.ID, displayName(s.LevelName), s.Mode, solved, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state service.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	// intent is only there to make the caller think; nothing reads it

	var result service.CommandResult
	body := map[string]string{"direction": direction}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	var result service.BulkMoveResult
	body := map[string]interface{}{"moves": moves}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) handleCommand(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	cmd := service.Command{}
	if name, ok := args["command"].(string); ok {
		cmd.Type = service.CommandType(name)
	}
	cmd.Direction, _ = args["direction"].(string)
	cmd.Level, _ = args["level"].(string)
	cmd.Text, _ = args["text"].(string)
	if mode, ok := args["mode"].(string); ok {
		cmd.Mode = service.Mode(mode)
	}
	if delta, ok := args["delta"].(float64); ok {
		cmd.Delta = int(delta)
	}

	var result service.CommandResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/commands"), cmd, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.CommandResult
	cmd := service.Command{Type: service.CmdReset}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/commands"), cmd, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCommandResult(&result)), nil
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var infos []levels.Info
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &infos); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Levels:\n\n")
	for _, info := range infos {
		fmt.Fprintf(&b, "• %s (%dx%d, %d boxes, %d spots)\n", info.Name, info.Width, info.Height, info.Boxes, info.Spots)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, _ := arguments(request)["name"].(string)

	var text string
	if err := c.apiCall(ctx, "GET", "/api/levels/"+url.PathEscape(name), nil, &text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Level %s:\n\n%s", name, text)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Sokoban - Complete Instructions

GAME OBJECTIVE:
Push every box onto a storage spot. The level is solved the moment the last
box lands on a spot.

LEGEND (level text, one character per cell):
• # - Wall (impassable)
• @ - Player
• + - Player standing on a spot
• $ - Box
• * - Box on a spot
• . - Spot (empty storage location)
• (space) - Floor
Row 0 is the top line, column 0 the leftmost character.

MOVEMENT RULES:
• The player moves one cell up, down, left or right.
• Moving into a wall or off the board does nothing.
• Moving into a box pushes it one cell further, but only if that cell is
  inside the board and holds no wall and no box.
• Boxes can never be pulled. A box pushed into a corner is stuck for good.
• The player always turns to face the attempted direction, even when blocked.

COUNTERS:
• player_moves counts successful steps (including pushes).
• box_moves counts pushes only.
• Once solved, further moves are ignored until reset or load.

STRATEGY:
• Before pushing, check that the cell behind the box is free.
• Avoid pushing boxes against walls unless a spot lies along that wall.
• Use bulk_move for planned sequences; it stops as soon as the level is solved.
• reset_game rebuilds the level you loaded.

EDIT MODE:
• switch_mode to edit, then move_cursor and place_* commands change the cell
  under the cursor. place_player moves the single player.
• resize_width / resize_height change the size used by the new command.
• save stores the board under a level name; load opens one.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	xf, okX := args["x"].(float64)
	yf, okY := args["y"].(float64)
	if !okX || !okY {
		return mcp.NewToolResultError("x and y must be numbers"), nil
	}
	p := engine.Point{X: int(xf), Y: int(yf)}

	var state service.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	board := state.Board
	if p.X < 0 || p.X >= board.Width || p.Y < 0 || p.Y >= board.Height {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates %s are out of bounds. Board is %dx%d",
			p, board.Width, board.Height)), nil
	}

	return mcp.NewToolResultText(describeCell(&board, p)), nil
}

// Formatting helpers

func displayName(name string) string {
	if name == "" {
		return "(unsaved)"
	}
	return name
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nCreated: %s\nLast accessed: %s\n\n%s",
		session.ID,
		session.CreatedAt.Format(time.RFC3339),
		session.LastAccessedAt.Format(time.RFC3339),
		formatGameState(session.GameState))
}

func formatGameState(state *service.GameState) string {
	if state == nil {
		return "No game state available"
	}
	board := state.Board

	var b strings.Builder
	fmt.Fprintf(&b, "Mode: %s | Level: %s | Board: %dx%d\n", state.Mode, displayName(state.LevelName), board.Width, board.Height)

	if state.Mode == service.ModeEdit {
		if board.Cursor != nil {
			fmt.Fprintf(&b, "Cursor: %s | New board size: %dx%d\n", board.Cursor.Pos, state.NewWidth, state.NewHeight)
		}
	} else {
		seated := 0
		for _, spot := range board.Spots {
			if spot.Seated {
				seated++
			}
		}
		fmt.Fprintf(&b, "Moves: %d | Pushes: %d | Spots filled: %d/%d\n",
			board.PlayerMoves, board.BoxMoves, seated, len(board.Spots))
		if player, ok := findPlayer(&board); ok {
			fmt.Fprintf(&b, "Player: %s facing %s\n", player.Pos, player.Facing)
		} else {
			b.WriteString("Player: none on this board\n")
		}
		if state.NearestSpot != nil && !board.Won {
			fmt.Fprintf(&b, "Nearest open spot: %s, %d steps away\n", *state.NearestSpot, state.SpotSteps)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatRows(board.Rows))

	if state.Mode == service.ModePlay && board.Won {
		b.WriteString("\n🎉 SOLVED! Every box is on a spot.\n")
	}
	return b.String()
}

// formatRows prints the board with column and row indexes so callers can
// address cells without counting characters
func formatRows(rows []string) string {
	if len(rows) == 0 {
		return "(empty board)\n"
	}

	var b strings.Builder
	b.WriteString("    ")
	for x := 0; x < len(rows[0]); x++ {
		b.WriteByte(byte('0' + x%10))
	}
	b.WriteString("\n")
	for y, row := range rows {
		fmt.Fprintf(&b, "%3d %s|\n", y, row)
	}
	return b.String()
}

func findPlayer(board *engine.Snapshot) (engine.Entity, bool) {
	for _, e := range board.Occupants {
		if e.Kind == engine.KindPlayer {
			return e, true
		}
	}
	return engine.Entity{}, false
}

func formatCommandResult(result *service.CommandResult) string {
	var b strings.Builder
	status := "no change"
	if result.Changed {
		status = "changed"
	}
	fmt.Fprintf(&b, "%s: %s", result.Command, status)
	if result.Outcome != "" {
		fmt.Fprintf(&b, " (%s)", result.Outcome)
	}
	b.WriteString("\n")
	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}
	for _, ev := range result.Events {
		fmt.Fprintf(&b, "• [%s] %s\n", ev.Type, ev.Message)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.State))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: executed %d/%d moves (%d pushes)\n",
		sessionID, result.MovesExecuted, result.RequestedMoves, result.Pushes)
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}
	if len(result.Outcomes) > 0 {
		fmt.Fprintf(&b, "Outcomes: %s\n", strings.Join(result.Outcomes, ", "))
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.State))
	return b.String()
}

func describeCell(board *engine.Snapshot, p engine.Point) string {
	var occupant *engine.Entity
	for i := range board.Occupants {
		if board.Occupants[i].Pos == p {
			occupant = &board.Occupants[i]
			break
		}
	}
	var spot *engine.Entity
	for i := range board.Spots {
		if board.Spots[i].Pos == p {
			spot = &board.Spots[i]
			break
		}
	}

	char := byte(engine.Floor)
	if p.Y < len(board.Rows) && p.X < len(board.Rows[p.Y]) {
		char = board.Rows[p.Y][p.X]
	}

	var description string
	switch {
	case occupant == nil && spot == nil:
		description = "Empty floor - the player and boxes can enter"
	case occupant == nil:
		description = "Empty spot - push a box here"
	case occupant.Kind == engine.KindWall:
		description = "Wall - nothing can enter"
	case occupant.Kind == engine.KindPlayer && spot != nil:
		description = fmt.Sprintf("Player standing on a spot, facing %s", occupant.Facing)
	case occupant.Kind == engine.KindPlayer:
		description = fmt.Sprintf("Player, facing %s", occupant.Facing)
	case occupant.Kind == engine.KindBox && occupant.Seated:
		description = "Box resting on a spot"
	case occupant.Kind == engine.KindBox:
		description = "Box - can be pushed if the cell behind it is free"
	}

	return fmt.Sprintf("Cell %s: '%c'\n%s", p, char, description)
}
