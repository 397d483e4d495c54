// Package journal defines the exchange journal: an optional, persisted
// record of every request/response pair that passed through the proxy.
//
// The journal complements the log events. Log events carry headers and
// bodies for a human or a log pipeline; journal entries carry the metadata
// needed to answer "what went through the proxy" after the fact (correlation
// id, method, path, status, sizes, duration and failure kind). Bodies are
// never journaled.
//
// # Backends
//
// Storage implementations live in the storage subpackage:
//
//   - memory: bounded ring buffer, lost on restart
//   - sqlite: pure Go SQLite (modernc.org/sqlite)
//   - sqlite3: cgo SQLite (github.com/mattn/go-sqlite3)
//   - redis: a Redis stream (github.com/go-redis/redis/v8)
//
// # Recording
//
// The recorder subpackage writes exchanges asynchronously through a bounded
// buffer. When the buffer is full the entry is dropped and counted; the
// client-facing response is never delayed by the journal.
//
// # Retention
//
// The retention subpackage prunes entries older than a number of days and
// beyond a maximum count, on a cron schedule.
//
//	store, err := storage.Open(cfg.Journal)
//	rec := recorder.New(store, cfg.Journal, logger, collector)
//	defer rec.Close()
package journal
