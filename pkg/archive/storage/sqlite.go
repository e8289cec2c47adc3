package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // driver "sqlite3"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // driver "sqlite"

	"mercator-hq/configurator/pkg/archive"
)

// Driver names registered with database/sql.
const (
	DriverPureGo = "sqlite"  // modernc.org/sqlite
	DriverCgo    = "sqlite3" // github.com/mattn/go-sqlite3
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver is DriverPureGo or DriverCgo.
	// Default: DriverPureGo
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/archive.db",
		Driver:       DriverPureGo,
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements archive.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database and creates the schema if needed.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverPureGo
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "archive.storage.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "open", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
		db.SetMaxIdleConns(config.MaxOpenConns)
	}

	s := &SQLiteStorage{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite archive initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return archive.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return archive.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return archive.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return archive.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return archive.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return archive.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Store inserts record. Storing an existing ID fails.
func (s *SQLiteStorage) Store(ctx context.Context, record *archive.Record) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO records ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		record.ID, string(record.Action), record.SessionID,
		nullable(record.SolutionHash), nullable(record.ModelName), nullable(record.MarkPath), record.Price.String(),
		nullable(record.TreeRef), nullable(record.Document), nullable(record.Detail),
		record.RecordedAt.UnixNano(),
	)
	if err != nil {
		return archive.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Query returns the matching records, oldest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *archive.Query) ([]*archive.Record, error) {
	where, args := buildWhereClause(query)

	sqlQuery := "SELECT " + recordColumns + " FROM records"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY recorded_at ASC, id ASC"

	if query != nil && (query.Limit > 0 || query.Offset > 0) {
		limit := -1
		if query.Limit > 0 {
			limit = query.Limit
		}
		sqlQuery += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, max(query.Offset, 0))
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, archive.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*archive.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, archive.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, archive.NewStorageError("sqlite", "query", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *archive.Query) (int64, error) {
	where, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM records"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, archive.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteOlderThan removes records recorded before cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE recorded_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, archive.NewStorageError("sqlite", "delete", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, archive.NewStorageError("sqlite", "delete", err)
	}
	return deleted, nil
}

// DeleteOldest removes the oldest records until at most keep remain.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE id NOT IN (
			SELECT id FROM records ORDER BY recorded_at DESC, id DESC LIMIT ?
		)`, max(keep, 0))
	if err != nil {
		return 0, archive.NewStorageError("sqlite", "delete_oldest", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, archive.NewStorageError("sqlite", "delete_oldest", err)
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return archive.NewStorageError("sqlite", "close", err)
	}
	s.logger.Debug("SQLite archive closed")
	return nil
}

func buildWhereClause(query *archive.Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var clauses []string
	var args []any

	if query.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(query.Action))
	}
	if query.Hash != "" {
		clauses = append(clauses, "solution_hash = ?")
		args = append(args, query.Hash)
	}
	if query.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, query.SessionID)
	}
	if query.Since != nil {
		clauses = append(clauses, "recorded_at >= ?")
		args = append(args, query.Since.UnixNano())
	}
	if query.Until != nil {
		clauses = append(clauses, "recorded_at < ?")
		args = append(args, query.Until.UnixNano())
	}

	return strings.Join(clauses, " AND "), args
}

func scanRow(rows *sql.Rows) (*archive.Record, error) {
	var (
		record                                         archive.Record
		action                                         string
		hash, model, markPath, price, ref, doc, detail sql.NullString
		recordedAt                                     int64
	)

	err := rows.Scan(&record.ID, &action, &record.SessionID,
		&hash, &model, &markPath, &price,
		&ref, &doc, &detail,
		&recordedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Action = archive.Action(action)
	record.SolutionHash = hash.String
	record.ModelName = model.String
	record.MarkPath = markPath.String
	record.TreeRef = ref.String
	record.Document = doc.String
	record.Detail = detail.String
	record.RecordedAt = time.Unix(0, recordedAt).UTC()
	if price.Valid && price.String != "" {
		if record.Price, err = decimal.NewFromString(price.String); err != nil {
			return nil, fmt.Errorf("record %s: price %q: %w", record.ID, price.String, err)
		}
	}
	return &record, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
