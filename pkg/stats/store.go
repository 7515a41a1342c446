package stats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/saturn/pkg/policy"
)

// RuleStats is the accumulated counters for one rule.
type RuleStats struct {
	// RuleID identifies the rule.
	RuleID string `json:"rule_id"`

	// Hits is the number of violations the rule produced.
	Hits int64 `json:"hits"`

	// Evaluations is the number of evaluations the rule took part in.
	Evaluations int64 `json:"evaluations"`

	// LastHit is when the rule last produced a violation.
	LastHit time.Time `json:"last_hit,omitempty"`
}

// Store persists rule counters in SQLite. The CGO-free driver keeps
// the saturn binary cross-compilable.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS rule_stats (
    rule_id TEXT PRIMARY KEY,
    hits INTEGER NOT NULL DEFAULT 0,
    evaluations INTEGER NOT NULL DEFAULT 0,
    last_hit TIMESTAMP
);
`

// Open opens (or creates) the statistics database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("stats db path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stats schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With("component", "stats"),
	}, nil
}

// RecordEvaluation bumps counters for one evaluation: every enabled
// rule gains an evaluation, and each rule present in the violations
// gains its hit count.
func (s *Store) RecordEvaluation(ctx context.Context, rules []policy.Rule, violations []policy.Violation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rule_stats (rule_id, hits, evaluations)
			VALUES (?, 0, 1)
			ON CONFLICT(rule_id) DO UPDATE SET evaluations = evaluations + 1`,
			r.ID)
		if err != nil {
			return fmt.Errorf("failed to record evaluation for rule %q: %w", r.ID, err)
		}
	}

	now := time.Now().UTC()
	for _, v := range violations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rule_stats (rule_id, hits, evaluations, last_hit)
			VALUES (?, 1, 0, ?)
			ON CONFLICT(rule_id) DO UPDATE SET hits = hits + 1, last_hit = ?`,
			v.RuleID, now, now)
		if err != nil {
			return fmt.Errorf("failed to record hit for rule %q: %w", v.RuleID, err)
		}
	}

	return tx.Commit()
}

// Get returns the counters for one rule, or nil if never seen.
func (s *Store) Get(ctx context.Context, ruleID string) (*RuleStats, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT rule_id, hits, evaluations, last_hit
		FROM rule_stats WHERE rule_id = ?`, ruleID)

	stats, err := scanStats(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stats for rule %q: %w", ruleID, err)
	}
	return stats, nil
}

// All returns counters for every rule, most-hit first.
func (s *Store) All(ctx context.Context) ([]*RuleStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_id, hits, evaluations, last_hit
		FROM rule_stats ORDER BY hits DESC, rule_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule stats: %w", err)
	}
	defer rows.Close()

	var all []*RuleStats
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule stats: %w", err)
		}
		all = append(all, stats)
	}
	return all, rows.Err()
}

// Reset clears all counters.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM rule_stats"); err != nil {
		return fmt.Errorf("failed to reset rule stats: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStats(row rowScanner) (*RuleStats, error) {
	var stats RuleStats
	var lastHit sql.NullTime
	if err := row.Scan(&stats.RuleID, &stats.Hits, &stats.Evaluations, &lastHit); err != nil {
		return nil, err
	}
	if lastHit.Valid {
		stats.LastHit = lastHit.Time
	}
	return &stats, nil
}
