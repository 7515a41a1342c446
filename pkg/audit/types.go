package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mercator-hq/saturn/pkg/diff"
	"mercator-hq/saturn/pkg/policy"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("audit record not found")

// Record is one evaluated change set.
type Record struct {
	// ID is the unique record identifier (UUID).
	ID string `json:"id"`

	// EvaluatedAt is when the evaluation ran.
	EvaluatedAt time.Time `json:"evaluated_at"`

	// PolicyID identifies the policy that was applied.
	PolicyID string `json:"policy_id"`

	// PolicyVersion is the version of that policy.
	PolicyVersion string `json:"policy_version"`

	// Decision is the aggregate allow/warn/block outcome.
	Decision string `json:"decision"`

	// TotalFiles is the number of changed files evaluated.
	TotalFiles int `json:"total_files"`

	// AddedLines is the total added line count.
	AddedLines int `json:"added_lines"`

	// RemovedLines is the total removed line count.
	RemovedLines int `json:"removed_lines"`

	// Violations holds every rule violation from the evaluation.
	Violations []policy.Violation `json:"violations,omitempty"`
}

// NewRecord builds a record from an evaluation outcome.
func NewRecord(p *policy.Policy, summary diff.Summary, result *policy.Result) *Record {
	return &Record{
		ID:            uuid.New().String(),
		EvaluatedAt:   time.Now().UTC(),
		PolicyID:      p.ID,
		PolicyVersion: p.Version,
		Decision:      string(result.Decision),
		TotalFiles:    summary.TotalFiles,
		AddedLines:    summary.TotalAdded,
		RemovedLines:  summary.TotalRemoved,
		Violations:    result.Violations,
	}
}

// Query filters record listings. Zero fields match everything.
type Query struct {
	// Decision filters by aggregate decision.
	Decision string

	// PolicyID filters by policy.
	PolicyID string

	// Since excludes records evaluated before this time.
	Since time.Time

	// Until excludes records evaluated after this time.
	Until time.Time

	// Limit caps the number of returned records. Zero means no cap.
	Limit int

	// Offset skips that many records, newest first.
	Offset int
}

// Storage persists audit records. Implementations must be safe for
// concurrent use.
type Storage interface {
	// Store persists a record.
	Store(ctx context.Context, record *Record) error

	// Get retrieves a record by id, returning ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records matching the query, newest first.
	List(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteOlderThan removes records evaluated before cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the oldest records until at most keep
	// remain, returning how many were removed.
	DeleteOldest(ctx context.Context, keep int64) (int64, error)

	// Close releases backend resources.
	Close() error
}

// StorageError wraps a backend failure with its backend and operation.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}
