package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/sokoban/game/levels"
	"github.com/wricardo/sokoban/game/service"
	"github.com/wricardo/sokoban/game/session"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "Sokoban Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

// captureConfig runs the command line with actions that only record the
// resolved configuration
func captureConfig(t *testing.T, args ...string) (serverConfig, string) {
	t.Helper()

	var cfg serverConfig
	var ran string
	cmd := newCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		cfg, ran = configFromCommand(c), "server"
		return nil
	}
	for _, sub := range cmd.Commands {
		name := sub.Name
		sub.Action = func(ctx context.Context, c *cli.Command) error {
			cfg, ran = configFromCommand(c), name
			return nil
		}
	}

	if err := cmd.Run(context.Background(), append([]string{"sokoban"}, args...)); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return cfg, ran
}

func TestCommandFlags(t *testing.T) {
	t.Run("explicit flags", func(t *testing.T) {
		cfg, ran := captureConfig(t,
			"--port", "9090",
			"--host", "0.0.0.0",
			"--levels-dir", "/tmp/levels",
			"--sessions-dir", "/tmp/sessions",
			"--store", "sqlite",
			"--debug",
		)
		if ran != "server" {
			t.Errorf("Expected server action, got %q", ran)
		}
		if cfg.Port != 9090 {
			t.Errorf("Expected port 9090, got %d", cfg.Port)
		}
		if cfg.addr() != "0.0.0.0:9090" {
			t.Errorf("Expected addr 0.0.0.0:9090, got %s", cfg.addr())
		}
		if cfg.LevelsDir != "/tmp/levels" || cfg.SessionsDir != "/tmp/sessions" {
			t.Errorf("Unexpected directories: %+v", cfg)
		}
		if cfg.Store != levels.KindSQLite {
			t.Errorf("Expected store sqlite, got %s", cfg.Store)
		}
		if !cfg.Debug {
			t.Error("Expected debug to be enabled")
		}
	})

	for _, name := range []string{"stdio-mcp", "mcp-stdio", "mcp"} {
		t.Run("subcommand "+name, func(t *testing.T) {
			cfg, ran := captureConfig(t, "--port", "7070", name)
			if ran != "stdio-mcp" {
				t.Errorf("Expected stdio-mcp action, got %q", ran)
			}
			if cfg.Port != 7070 {
				t.Errorf("Expected port 7070, got %d", cfg.Port)
			}
		})
	}
}

func testConfig(t *testing.T) serverConfig {
	dir := t.TempDir()
	return serverConfig{
		Host:        "localhost",
		Port:        0,
		LevelsDir:   filepath.Join(dir, "levels"),
		SessionsDir: filepath.Join(dir, "sessions"),
		Store:       levels.KindDir,
	}
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t)
	svc, err := initializeServices(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	if _, err := os.Stat(filepath.Join(cfg.LevelsDir, levels.DefaultLevelName+".txt")); err != nil {
		t.Errorf("Expected seeded level file: %v", err)
	}

	info, err := svc.game.CreateSession(ctx, "", service.ModePlay)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if info.LevelName != levels.DefaultLevelName {
		t.Errorf("Expected level %s, got %s", levels.DefaultLevelName, info.LevelName)
	}

	if _, err := os.Stat(filepath.Join(cfg.SessionsDir, info.ID+".json")); err != nil {
		t.Errorf("Expected persisted session file: %v", err)
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	t.Run("unknown store", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Store = "bogus"
		if _, err := initializeServices(context.Background(), cfg); err == nil {
			t.Error("Expected error for unknown store kind")
		}
	})

	t.Run("sessions dir is a file", func(t *testing.T) {
		cfg := testConfig(t)
		file := filepath.Join(t.TempDir(), "not-a-dir")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		cfg.SessionsDir = file
		if _, err := initializeServices(context.Background(), cfg); err == nil {
			t.Error("Expected error when sessions dir cannot be created")
		}
	})
}

func TestPruneOrphanedSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := testConfig(t)
	svc, err := initializeServices(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	kept, err := svc.game.CreateSession(ctx, "", service.ModePlay)
	if err != nil {
		t.Fatal(err)
	}
	dropped, err := svc.game.CreateSession(ctx, "", service.ModeEdit)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(cfg.SessionsDir, dropped.ID+".json")); err != nil {
		t.Fatalf("Failed to remove session file: %v", err)
	}

	persistence, err := session.NewFilePersistence(cfg.SessionsDir)
	if err != nil {
		t.Fatal(err)
	}

	if pruned := pruneOrphanedSessions(svc.sessions, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := svc.sessions.Get(kept.ID); err != nil {
		t.Errorf("Expected session %s to remain: %v", kept.ID, err)
	}
	if _, err := svc.sessions.Get(dropped.ID); err == nil {
		t.Errorf("Expected session %s to be pruned", dropped.ID)
	}
}

func TestSessionCleanupRoutineStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, session.NewManager())
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Expected cleanup routine to stop when the context is cancelled")
	}
}

// closeTracker records whether a response body was closed
type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

type stubTransport struct {
	status int
	body   *closeTracker
}

func (s *stubTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	return &http.Response{StatusCode: s.status, Body: s.body, Header: http.Header{}, Request: r}, nil
}

func TestAPIAvailable(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected bool
	}{
		{"healthy", http.StatusOK, true},
		{"not found still counts as a server", http.StatusNotFound, true},
		{"server error", http.StatusInternalServerError, false},
		{"unavailable", http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := &closeTracker{Reader: strings.NewReader("{}")}
			client := &http.Client{Transport: &stubTransport{status: tt.status, body: body}}

			if got := apiAvailable(client, "http://api.test"); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			if !body.closed {
				t.Error("Expected response body to be closed")
			}
		})
	}

	t.Run("real server", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/health" {
				t.Errorf("Expected /health, got %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		if !apiAvailable(server.Client(), server.URL) {
			t.Error("Expected API to be available")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		if apiAvailable(&http.Client{Timeout: time.Second}, url) {
			t.Error("Expected unreachable API to be unavailable")
		}
	})
}
