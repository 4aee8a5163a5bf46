// Package service provides the business logic layer of the Sokoban server.
//
// The service package implements:
//   - Multi-session game management
//   - Command dispatch to the play and edit engines of a session
//   - Level loading and saving through a level catalog
//
// Core Interfaces:
//
// GameService is the main service interface used by the transports.
// SessionManager stores sessions and LevelCatalog loads and saves named
// levels; game/session and game/levels provide the implementations.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP)
// and the engines. Engines are not safe for concurrent use, so every
// command runs under the service lock.
//
// Usage:
//
//	store, _ := levels.NewDirStore("levels")
//	catalog := levels.NewManager(ctx, store)
//	gameService := service.NewGameService(session.NewManager(), catalog)
//
//	info, err := gameService.CreateSession(ctx, "classic", service.ModePlay)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "up")
//
// Commands:
//
// Play mode accepts move, load, reset and switch_mode. Edit mode accepts
// move_cursor, the place_* commands, resize_width, resize_height, new,
// save, load, reset and switch_mode. A solved level ignores further moves
// until it is reset or another level is loaded. A failed load or save
// leaves the session unchanged.
package service
