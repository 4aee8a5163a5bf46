// Package websocket pushes board snapshots to browsers and other viewers.
//
// A central Hub tracks subscribers per session. Each connection has a read
// goroutine (keeps the connection alive, discards input) and a write
// goroutine (sends queued messages and pings). The Hub's map is owned by
// the Run goroutine; broadcasts are queued through a buffered channel so
// callers never block on slow clients.
//
// Outgoing messages are JSON:
//
//	{"session_id": "a1b2", "event": "state_update", "game_state": {...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//	hub.BroadcastToSession(id, state)
package websocket
