package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"

	"mercator-hq/loupe/pkg/config"
	"mercator-hq/loupe/pkg/journal"
)

// SQLite driver names. Both drivers share the schema and queries below.
const (
	// DriverSQLite is the pure Go driver (modernc.org/sqlite).
	DriverSQLite = "sqlite"

	// DriverSQLite3 is the cgo driver (github.com/mattn/go-sqlite3).
	DriverSQLite3 = "sqlite3"
)

// SQLiteStorage implements journal.Storage on SQLite through either driver.
type SQLiteStorage struct {
	db     *sql.DB
	driver string
	config config.SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens (creating if needed) the journal database at
// cfg.Path with the named driver and applies the schema.
func NewSQLiteStorage(driver string, cfg config.SQLiteConfig) (*SQLiteStorage, error) {
	if driver != DriverSQLite && driver != DriverSQLite3 {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}
	if cfg.Path == "" {
		return nil, journal.NewStorageError(driver, "open", fmt.Errorf("db path cannot be empty"))
	}

	logger := slog.Default().With("component", "journal.storage."+driver)

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, journal.NewStorageError(driver, "mkdir", err)
		}
	}

	db, err := sql.Open(driver, sqliteDSN(driver, cfg))
	if err != nil {
		return nil, journal.NewStorageError(driver, "open", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		driver: driver,
		config: cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite journal initialized",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return s, nil
}

// sqliteDSN builds the connection string. The drivers spell connection
// pragmas differently.
func sqliteDSN(driver string, cfg config.SQLiteConfig) string {
	busyMs := cfg.BusyTimeout.Milliseconds()

	if driver == DriverSQLite3 {
		dsn := fmt.Sprintf("%s?_busy_timeout=%d", cfg.Path, busyMs)
		if cfg.WALMode {
			dsn += "&_journal_mode=WAL"
		}
		return dsn
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.Path, busyMs)
	if cfg.WALMode {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	return dsn
}

// initialize creates the schema and verifies its version.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return journal.NewStorageError(s.driver, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion, time.Now().UnixNano()); err != nil {
		return journal.NewStorageError(s.driver, "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return journal.NewStorageError(s.driver, "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return journal.NewStorageError(s.driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}

	s.logger.Debug("schema version verified", "version", version.Int64)
	return nil
}

// Store inserts an exchange.
func (s *SQLiteStorage) Store(ctx context.Context, e *journal.Exchange) error {
	query, _ := json.Marshal(e.Query)
	requestHeaders, _ := json.Marshal(e.RequestHeaders)
	responseHeaders, _ := json.Marshal(e.ResponseHeaders)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (`+exchangeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RequestID,
		e.StartedAt.UnixNano(), e.Duration.Microseconds(), e.RecordedAt.UnixNano(),
		e.Method, e.Path, string(query), string(requestHeaders), e.RequestBytes, nullString(e.ClientIP),
		e.StatusCode, string(responseHeaders), e.ResponseBytes,
		nullString(e.FailureKind), nullString(e.Error),
	)
	if err != nil {
		return journal.NewStorageError(s.driver, "store", err)
	}

	return nil
}

// Query returns matching exchanges, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, q *journal.Query) ([]*journal.Exchange, error) {
	whereClause, args := buildWhereClause(q)

	sqlQuery := "SELECT " + exchangeColumns + " FROM exchanges"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += fmt.Sprintf(" ORDER BY started_at DESC LIMIT %d", q.EffectiveLimit())

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, journal.NewStorageError(s.driver, "query", err)
	}
	defer rows.Close()

	results := []*journal.Exchange{}
	for rows.Next() {
		e, err := scanExchange(rows)
		if err != nil {
			return nil, journal.NewStorageError(s.driver, "scan", err)
		}
		results = append(results, e)
	}

	if err := rows.Err(); err != nil {
		return nil, journal.NewStorageError(s.driver, "query", err)
	}

	return results, nil
}

// Count returns the number of stored exchanges.
func (s *SQLiteStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM exchanges").Scan(&count); err != nil {
		return 0, journal.NewStorageError(s.driver, "count", err)
	}
	return count, nil
}

// DeleteBefore removes exchanges started before cutoff.
func (s *SQLiteStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM exchanges WHERE started_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, journal.NewStorageError(s.driver, "delete_before", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, journal.NewStorageError(s.driver, "delete_before", err)
	}
	return count, nil
}

// Trim removes the oldest exchanges until at most keep remain.
func (s *SQLiteStorage) Trim(ctx context.Context, keep int64) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM exchanges WHERE id IN (
			SELECT id FROM exchanges ORDER BY started_at DESC LIMIT -1 OFFSET ?
		)`, keep)
	if err != nil {
		return 0, journal.NewStorageError(s.driver, "trim", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, journal.NewStorageError(s.driver, "trim", err)
	}
	return count, nil
}

// Ping verifies the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return journal.NewStorageError(s.driver, "ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return journal.NewStorageError(s.driver, "close", err)
	}

	s.logger.Info("SQLite journal closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause (without the keyword) and its
// arguments from q.
func buildWhereClause(q *journal.Query) (string, []any) {
	if q == nil {
		return "", nil
	}

	var conditions []string
	var args []any

	if q.Since != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if q.RequestID != "" {
		conditions = append(conditions, "request_id = ?")
		args = append(args, q.RequestID)
	}
	if q.Method != "" {
		conditions = append(conditions, "method = ?")
		args = append(args, q.Method)
	}
	if q.Status != 0 {
		conditions = append(conditions, "status_code = ?")
		args = append(args, q.Status)
	}
	if q.Failed {
		conditions = append(conditions, "failure_kind IS NOT NULL")
	}

	return strings.Join(conditions, " AND "), args
}

// scanExchange scans one row selected with exchangeColumns.
func scanExchange(rows *sql.Rows) (*journal.Exchange, error) {
	var e journal.Exchange
	var startedAt, recordedAt, durationUs int64
	var query, requestHeaders, responseHeaders sql.NullString
	var clientIP, failureKind, errorVal sql.NullString

	err := rows.Scan(
		&e.ID, &e.RequestID,
		&startedAt, &durationUs, &recordedAt,
		&e.Method, &e.Path, &query, &requestHeaders, &e.RequestBytes, &clientIP,
		&e.StatusCode, &responseHeaders, &e.ResponseBytes,
		&failureKind, &errorVal,
	)
	if err != nil {
		return nil, err
	}

	e.StartedAt = time.Unix(0, startedAt)
	e.RecordedAt = time.Unix(0, recordedAt)
	e.Duration = time.Duration(durationUs) * time.Microsecond
	e.ClientIP = clientIP.String
	e.FailureKind = failureKind.String
	e.Error = errorVal.String

	if query.Valid && query.String != "" {
		_ = json.Unmarshal([]byte(query.String), &e.Query)
	}
	if requestHeaders.Valid && requestHeaders.String != "" {
		_ = json.Unmarshal([]byte(requestHeaders.String), &e.RequestHeaders)
	}
	if responseHeaders.Valid && responseHeaders.String != "" {
		_ = json.Unmarshal([]byte(responseHeaders.String), &e.ResponseHeaders)
	}

	return &e, nil
}

// nullString maps "" to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
