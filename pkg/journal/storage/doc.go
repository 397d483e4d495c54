// Package storage provides journal.Storage backends: a bounded in-memory
// buffer, SQLite through either the pure Go (modernc.org/sqlite) or the cgo
// (github.com/mattn/go-sqlite3) driver, and a Redis stream.
//
// Open selects the backend from config.JournalConfig.Backend.
package storage
