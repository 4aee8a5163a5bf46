// Package api provides the HTTP REST API for the Sokoban server.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session {"level": "classic", "mode": "play|edit"}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session details
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Board snapshot of the active mode
//   - GET /api/sessions/{id}/level - Active board as level text (text/plain)
//   - POST /api/sessions/{id}/commands - Any command {"command": "place_wall", ...}
//   - POST /api/sessions/{id}/move - {"direction": "up|down|left|right"}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "left"]}
//   - POST /api/sessions/{id}/reset - Rebuild the last level
//
// Levels:
//   - GET /api/levels - Stored levels with size and box counts
//   - GET /api/levels/{name} - Level text (text/plain)
//   - PUT /api/levels/{name} - Store level text from the request body
//
// Live updates:
//   - GET /ws?session={id} - WebSocket stream of state after every command
//
// Error Handling:
//
// Errors are returned as JSON, {"error": "message"}, with the status taken
// from the error: 404 for unknown sessions and levels, 400 for malformed
// input (bad direction, command, mode, level name or level text), 409 for
// a command the session's mode does not accept, 500 for storage failures.
package api
