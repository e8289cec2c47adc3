// Package storage provides the archive backends: an in-memory store and a
// SQLite store that runs on either modernc.org/sqlite (driver "sqlite",
// pure Go) or github.com/mattn/go-sqlite3 (driver "sqlite3", cgo).
//
// Timestamps are stored as Unix nanoseconds, so both drivers read back
// exactly what was written.
package storage
