// Package session keeps the live game sessions of the server.
//
// Each session owns a play engine and an edit engine plus the levels their
// resets rebuild from (see service.Session). Manager stores sessions under
// short case-insensitive IDs and is safe for concurrent use; the engines
// inside a session are not, so callers go through the service layer which
// serializes commands.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := service.NewSession("", engine.ExampleLevel(), service.ModePlay)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess, err = manager.Create("", sess)
//
// Persistence:
//
// FilePersistence writes one JSON file per session. Boards are stored as
// level text together with the move counters, the player's facing, the
// editor cursor and the editor's new-board size, so a session survives a
// restart without the level store.
package session
