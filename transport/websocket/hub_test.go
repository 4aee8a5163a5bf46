package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/sokoban/game/engine"
	"github.com/wricardo/sokoban/game/service"
)

func testState(sessionID string) *service.GameState {
	play, _ := engine.NewPlayEngine(engine.ParseLevelString("#####\n#@$.#\n#####\n"))
	return &service.GameState{
		SessionID: sessionID,
		Mode:      service.ModePlay,
		NewWidth:  10,
		NewHeight: 10,
		Board:     play.Snapshot(),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil || hub.register == nil || hub.unregister == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)
	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)
	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
	if _, ok := <-client1.send; ok {
		t.Error("Expected client1 send channel to be closed")
	}

	hub.unregisterClient(client2)
	if _, exists := hub.sessions[sessionID]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub()
	watching := &Client{hub: hub, sessionID: "abcd", send: make(chan []byte, 256)}
	other := &Client{hub: hub, sessionID: "efgh", send: make(chan []byte, 256)}
	hub.registerClient(watching)
	hub.registerClient(other)

	hub.BroadcastToSession("abcd", testState("abcd"))
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-watching.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != "abcd" {
			t.Errorf("Expected sessionID abcd, got %s", message.SessionID)
		}
		if message.Event != "state_update" {
			t.Errorf("Expected event 'state_update', got %s", message.Event)
		}
		if message.GameState == nil || len(message.GameState.Board.Rows) != 3 {
			t.Error("GameState not correctly transmitted")
		}
	default:
		t.Error("No message queued for subscriber")
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the update")
	default:
	}
}

func TestHubSlowClientDropped(t *testing.T) {
	hub := NewHub()
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan []byte)}
	hub.registerClient(slow)

	hub.broadcastMessage(&Message{SessionID: "slow", Event: "state_update"})

	if _, exists := hub.sessions["slow"]; exists {
		t.Error("Expected a client that cannot receive to be unregistered")
	}
}

func TestHubBroadcastQueueFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < broadcastQueue+10; i++ {
		hub.BroadcastEvent("full", "tick", i)
	}
	if len(hub.broadcast) != broadcastQueue {
		t.Errorf("Expected %d queued messages, got %d", broadcastQueue, len(hub.broadcast))
	}
}

func TestWebSocketSubscription(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws01"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// registration lands after the handshake completes
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(ctx, "ws01") != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Client was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastToSession("ws01", testState("ws01"))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.GameState == nil || message.GameState.SessionID != "ws01" {
		t.Fatalf("Expected state for ws01, got %+v", message)
	}
	if message.GameState.Board.Won {
		t.Error("Expected unsolved board")
	}

	conn.Close()
	deadline = time.Now().Add(time.Second)
	for hub.ClientCount(ctx, "ws01") != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client was not unregistered after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
