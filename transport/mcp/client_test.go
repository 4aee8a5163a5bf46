package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
)

func testState(t *testing.T, level string, moves ...engine.Direction) *service.GameState {
	t.Helper()
	play, err := engine.NewPlayEngine(engine.ParseLevelString(level))
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}
	for _, d := range moves {
		play.Move(d)
	}
	return &service.GameState{
		SessionID: "t001",
		Mode:      service.ModePlay,
		LevelName: "tiny",
		NewWidth:  10,
		NewHeight: 10,
		Board:     play.Snapshot(),
	}
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("Tool handler failed: %v", err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text, result.IsError
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"id": "abcd"})
		case "/text":
			w.Write([]byte("#####\n"))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	t.Run("json body", func(t *testing.T) {
		var response map[string]string
		if err := client.apiCall(ctx, "GET", "/json", nil, &response); err != nil {
			t.Fatalf("apiCall failed: %v", err)
		}
		if response["id"] != "abcd" {
			t.Errorf("Expected id abcd, got %v", response["id"])
		}
	})

	t.Run("text body", func(t *testing.T) {
		var text string
		if err := client.apiCall(ctx, "GET", "/text", nil, &text); err != nil {
			t.Fatalf("apiCall failed: %v", err)
		}
		if text != "#####\n" {
			t.Errorf("Expected level text, got %q", text)
		}
	})

	t.Run("error message surfaces", func(t *testing.T) {
		err := client.apiCall(ctx, "GET", "/missing", nil, nil)
		if err == nil || err.Error() != "session not found" {
			t.Errorf("Expected 'session not found', got %v", err)
		}
	})

	t.Run("plain error status", func(t *testing.T) {
		err := client.apiCall(ctx, "GET", "/boom", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "API error") {
			t.Errorf("Expected 'API error', got %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		unreachable := NewClient("http://127.0.0.1:1")
		if err := unreachable.apiCall(ctx, "GET", "/json", nil, nil); err == nil {
			t.Error("Expected error for unreachable server")
		}
	})
}

func TestClient_handleCreateSession(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:        "t001",
			Mode:      service.ModePlay,
			LevelName: "tiny",
			GameState: testState(t, "#####\n#@$.#\n#####\n"),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	text, isErr := callTool(t, client.handleCreateSession, map[string]interface{}{"level": "tiny"})
	if isErr {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if received["level"] != "tiny" {
		t.Errorf("Expected level tiny in request, got %v", received)
	}
	if _, ok := received["mode"]; ok {
		t.Error("Expected mode omitted when not given")
	}
	if !strings.Contains(text, "Created session: t001") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if !strings.Contains(text, "#@$.#") {
		t.Errorf("Expected board rows in result, got: %s", text)
	}
}

func TestClient_handleCommand(t *testing.T) {
	var received service.Command
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/t001/commands" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(service.CommandResult{
			Command: received.Type,
			Changed: true,
			Message: "ok",
			State:   testState(t, "#####\n#@$.#\n#####\n"),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	text, isErr := callTool(t, client.handleCommand, map[string]interface{}{
		"session_id": "t001",
		"command":    "resize_width",
		"delta":      float64(-3),
	})
	if isErr {
		t.Fatalf("Unexpected tool error: %s", text)
	}
	if received.Type != service.CmdResizeWidth || received.Delta != -3 {
		t.Errorf("Expected resize_width -3, got %+v", received)
	}
	if !strings.Contains(text, "resize_width: changed") {
		t.Errorf("Expected command summary, got: %s", text)
	}
}

func TestClient_handleMoveError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid direction"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	text, isErr := callTool(t, client.handleMove, map[string]interface{}{
		"session_id": "t001",
		"direction":  "sideways",
	})
	if !isErr {
		t.Error("Expected tool error result")
	}
	if text != "invalid direction" {
		t.Errorf("Expected API error message, got %q", text)
	}
}

func TestClient_handleDescribeCell(t *testing.T) {
	state := testState(t, "#####\n#@$.#\n#####\n")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(state)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	tests := []struct {
		name     string
		x, y     float64
		expected string
		isErr    bool
	}{
		{"wall", 0, 0, "Wall", false},
		{"player", 1, 1, "Player, facing up", false},
		{"box", 2, 1, "Box - can be pushed", false},
		{"spot", 3, 1, "Empty spot", false},
		{"out of bounds", 5, 1, "out of bounds", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := callTool(t, client.handleDescribeCell, map[string]interface{}{
				"session_id": "t001", "x": tt.x, "y": tt.y,
			})
			if isErr != tt.isErr {
				t.Errorf("Expected error %v, got %v (%s)", tt.isErr, isErr, text)
			}
			if !strings.Contains(text, tt.expected) {
				t.Errorf("Expected %q in %q", tt.expected, text)
			}
		})
	}
}

func TestFormatGameState(t *testing.T) {
	t.Run("in progress", func(t *testing.T) {
		result := formatGameState(testState(t, "######\n#@$ .#\n######\n", engine.Right))

		expectedFields := []string{
			"Mode: play | Level: tiny | Board: 6x3",
			"Moves: 1 | Pushes: 1 | Spots filled: 0/1",
			"Player: (2,1) facing right",
			"  1 # @$.#|",
		}
		for _, field := range expectedFields {
			if !strings.Contains(result, field) {
				t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
			}
		}
		if strings.Contains(result, "SOLVED") {
			t.Error("Did not expect solved banner")
		}
	})

	t.Run("nearest spot hint", func(t *testing.T) {
		state := testState(t, "######\n#@$ .#\n######\n", engine.Right)
		state.SpotsLeft = 1
		state.NearestSpot = &engine.Point{X: 4, Y: 1}
		state.SpotSteps = 2
		result := formatGameState(state)
		if !strings.Contains(result, "Nearest open spot: (4,1), 2 steps away") {
			t.Errorf("Expected nearest spot hint, got: %s", result)
		}
	})

	t.Run("solved", func(t *testing.T) {
		result := formatGameState(testState(t, "#####\n#@$.#\n#####\n", engine.Right))
		if !strings.Contains(result, "🎉 SOLVED!") {
			t.Errorf("Expected solved banner, got: %s", result)
		}
	})

	t.Run("edit mode", func(t *testing.T) {
		edit, _ := engine.NewEditEngine(engine.NewLevel(3, 3))
		state := &service.GameState{Mode: service.ModeEdit, NewWidth: 4, NewHeight: 5, Board: edit.Snapshot()}
		result := formatGameState(state)
		if !strings.Contains(result, "Cursor: (1,1) | New board size: 4x5") {
			t.Errorf("Expected cursor line, got: %s", result)
		}
		if !strings.Contains(result, "(unsaved)") {
			t.Errorf("Expected unsaved level name, got: %s", result)
		}
	})

	t.Run("nil", func(t *testing.T) {
		if formatGameState(nil) != "No game state available" {
			t.Error("Expected placeholder for nil state")
		}
	})
}

func TestFormatBulkMoveResult(t *testing.T) {
	result := formatBulkMoveResult("t001", &service.BulkMoveResult{
		MovesExecuted:  1,
		RequestedMoves: 3,
		Pushes:         1,
		Outcomes:       []string{"pushed"},
		StoppedReason:  "level solved",
		Won:            true,
		State:          testState(t, "#####\n#@$.#\n#####\n", engine.Right),
	})

	for _, field := range []string{"executed 1/3 moves (1 pushes)", "Stopped: level solved", "Outcomes: pushed"} {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")
	text, _ := callTool(t, client.handleGameInstructions, map[string]interface{}{})

	for _, content := range []string{"GAME OBJECTIVE:", "LEGEND", "MOVEMENT RULES:", "EDIT MODE:"} {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}
