// Package sqlite provides SQLite-backed implementations of the vector
// backend and version store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database holds:
//
//   - VectorBackend: collections and their embedded entries
//   - VersionStore: version records and the active pointer per namespace
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Queries
//
// Similarity queries are exact: every embedding of the collection is scanned
// and ranked by L2 distance.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-rag/data/vectors.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
