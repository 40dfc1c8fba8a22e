// Package sqlite provides the SQLite-based persisted chunk table.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single database file holds:
//
//   - chunks: every chunk of the last ingestion run, in insertion order
//   - ingest_runs: the run that produced the file
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Atomic Replace
//
// The table is never patched in place. Replace builds a complete database in a
// temporary file next to the target and renames it over the target once it is
// committed and closed. Readers that opened the previous file keep reading it;
// readers that open after the rename see the new one.
//
// # Data Location
//
// By default, the table is stored at data/processed/chunks.db.
package sqlite
