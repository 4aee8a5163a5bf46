// Package mcp exposes the game to AI agents over the Model Context Protocol.
//
// Client registers one MCP tool per REST operation and proxies every call
// to the HTTP API, formatting responses as plain text boards with row and
// column indexes:
//   - create_session, list_sessions, get_session
//   - game_state, describe_cell
//   - move, bulk_move, reset_game, command
//   - list_levels, get_level
//   - game_instructions
//
// The same server runs over stdio (server.ServeStdio) or behind the /mcp
// HTTP endpoint (HandleMessage).
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
