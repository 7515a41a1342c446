package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/policy"
)

// SQLiteConfig contains configuration for the SQLite audit backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "saturn-audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, applies pragmas and ensures the
// schema exists.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger.With("component", "audit.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug("audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return audit.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError("sqlite", "insert_schema_version", err)
	}
	return nil
}

// Store persists a record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.Record) error {
	violations, err := json.Marshal(record.Violations)
	if err != nil {
		return audit.NewStorageError("sqlite", "marshal_violations", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_records
			(id, evaluated_at, policy_id, policy_version, decision,
			 total_files, added_lines, removed_lines, violations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.EvaluatedAt, record.PolicyID, record.PolicyVersion,
		record.Decision, record.TotalFiles, record.AddedLines, record.RemovedLines,
		string(violations),
	)
	if err != nil {
		return audit.NewStorageError("sqlite", "store", err)
	}
	return nil
}

// Get retrieves a record by id.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*audit.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, evaluated_at, policy_id, policy_version, decision,
		       total_files, added_lines, removed_lines, violations
		FROM audit_records WHERE id = ?`, id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, audit.ErrNotFound
	}
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "get", err)
	}
	return record, nil
}

// List returns matching records, newest first.
func (s *SQLiteStorage) List(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	where, args := buildWhereClause(query)

	stmt := `
		SELECT id, evaluated_at, policy_id, policy_version, decision,
		       total_files, added_lines, removed_lines, violations
		FROM audit_records` + where + ` ORDER BY evaluated_at DESC`

	if query != nil && query.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, query.Limit)
		if query.Offset > 0 {
			stmt += " OFFSET ?"
			args = append(args, query.Offset)
		}
	} else if query != nil && query.Offset > 0 {
		// SQLite requires a LIMIT before OFFSET.
		stmt += " LIMIT -1 OFFSET ?"
		args = append(args, query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, audit.NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	var records []*audit.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, audit.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError("sqlite", "list", err)
	}
	return records, nil
}

// Count returns the number of matching records.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	where, args := buildWhereClause(query)

	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_records"+where, args...).Scan(&count)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "count", err)
	}
	return count, nil
}

// DeleteOlderThan removes records evaluated before cutoff.
func (s *SQLiteStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_records WHERE evaluated_at < ?", cutoff)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete_older_than", err)
	}
	return result.RowsAffected()
}

// DeleteOldest removes the oldest records until at most keep remain.
func (s *SQLiteStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM audit_records WHERE id IN (
			SELECT id FROM audit_records
			ORDER BY evaluated_at DESC
			LIMIT -1 OFFSET ?
		)`, keep)
	if err != nil {
		return 0, audit.NewStorageError("sqlite", "delete_oldest", err)
	}
	return result.RowsAffected()
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*audit.Record, error) {
	var record audit.Record
	var violations string

	err := row.Scan(
		&record.ID, &record.EvaluatedAt, &record.PolicyID, &record.PolicyVersion,
		&record.Decision, &record.TotalFiles, &record.AddedLines, &record.RemovedLines,
		&violations,
	)
	if err != nil {
		return nil, err
	}

	if violations != "" && violations != "null" {
		var parsed []policy.Violation
		if err := json.Unmarshal([]byte(violations), &parsed); err != nil {
			return nil, fmt.Errorf("failed to decode violations: %w", err)
		}
		record.Violations = parsed
	}
	return &record, nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
func buildWhereClause(query *audit.Query) (string, []any) {
	if query == nil {
		return "", nil
	}

	var conditions []string
	var args []any

	if query.Decision != "" {
		conditions = append(conditions, "decision = ?")
		args = append(args, query.Decision)
	}
	if query.PolicyID != "" {
		conditions = append(conditions, "policy_id = ?")
		args = append(args, query.PolicyID)
	}
	if !query.Since.IsZero() {
		conditions = append(conditions, "evaluated_at >= ?")
		args = append(args, query.Since)
	}
	if !query.Until.IsZero() {
		conditions = append(conditions, "evaluated_at <= ?")
		args = append(args, query.Until)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
