package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"mercator-hq/saturn/pkg/audit"
)

// MemoryStorage is an in-memory audit store. Records live only for the
// process lifetime.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*audit.Record
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.Record),
	}
}

// Store persists a record.
func (m *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *record
	m.records[record.ID] = &copied
	return nil
}

// Get retrieves a record by id.
func (m *MemoryStorage) Get(ctx context.Context, id string) (*audit.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, audit.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

// List returns matching records, newest first.
func (m *MemoryStorage) List(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	m.mu.RLock()
	matched := m.match(query)
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].EvaluatedAt.After(matched[j].EvaluatedAt)
	})

	if query != nil {
		if query.Offset > 0 {
			if query.Offset >= len(matched) {
				return nil, nil
			}
			matched = matched[query.Offset:]
		}
		if query.Limit > 0 && len(matched) > query.Limit {
			matched = matched[:query.Limit]
		}
	}

	return matched, nil
}

// Count returns the number of matching records.
func (m *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.match(query))), nil
}

// DeleteOlderThan removes records evaluated before cutoff.
func (m *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, record := range m.records {
		if record.EvaluatedAt.Before(cutoff) {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteOldest removes the oldest records until at most keep remain.
func (m *MemoryStorage) DeleteOldest(ctx context.Context, keep int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if int64(len(m.records)) <= keep {
		return 0, nil
	}

	all := make([]*audit.Record, 0, len(m.records))
	for _, record := range m.records {
		all = append(all, record)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].EvaluatedAt.Before(all[j].EvaluatedAt)
	})

	toDelete := int64(len(all)) - keep
	for i := int64(0); i < toDelete; i++ {
		delete(m.records, all[i].ID)
	}
	return toDelete, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStorage) Close() error {
	return nil
}

// match returns the records matching query. Caller holds the lock.
func (m *MemoryStorage) match(query *audit.Query) []*audit.Record {
	var matched []*audit.Record
	for _, record := range m.records {
		if query != nil {
			if query.Decision != "" && record.Decision != query.Decision {
				continue
			}
			if query.PolicyID != "" && record.PolicyID != query.PolicyID {
				continue
			}
			if !query.Since.IsZero() && record.EvaluatedAt.Before(query.Since) {
				continue
			}
			if !query.Until.IsZero() && record.EvaluatedAt.After(query.Until) {
				continue
			}
		}
		copied := *record
		matched = append(matched, &copied)
	}
	return matched
}
