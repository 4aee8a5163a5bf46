// Package levels stores and catalogs named Sokoban levels.
//
// A Store keeps level text under a name. Three stores are provided:
// DirStore keeps one .txt file per level in a directory and can watch it
// for external edits, SQLStore keeps levels in SQLite or PostgreSQL through
// database/sql, and GormStore keeps them in PostgreSQL through GORM.
//
// Every storage failure is reported as a *PersistenceError so callers can
// abort a load or save and leave their in-memory board untouched.
//
// Manager sits on top of a Store, parses level text into engine levels and
// keeps the default level used for new sessions.
package levels
