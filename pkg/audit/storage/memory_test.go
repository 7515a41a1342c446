package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mercator-hq/saturn/pkg/audit"
	"mercator-hq/saturn/pkg/policy"
)

func testRecord(id, decision string, evaluatedAt time.Time) *audit.Record {
	return &audit.Record{
		ID:            id,
		EvaluatedAt:   evaluatedAt,
		PolicyID:      "saturn-default",
		PolicyVersion: "1.0.0",
		Decision:      decision,
		TotalFiles:    1,
		AddedLines:    10,
		RemovedLines:  2,
		Violations: []policy.Violation{
			{RuleID: "large-change", FilePath: "a.go", Severity: policy.SeverityWarn},
		},
	}
}

// TestMemoryStorage_StoreAndGet tests round trip and not-found.
func TestMemoryStorage_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	defer store.Close()

	record := testRecord("r1", "warn", time.Now())
	if err := store.Store(ctx, record); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Decision != "warn" || len(got.Violations) != 1 {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, audit.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

// TestMemoryStorage_List tests filtering, ordering and pagination.
func TestMemoryStorage_List(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		decision := "allow"
		if i%2 == 1 {
			decision = "block"
		}
		record := testRecord(fmt.Sprintf("r%d", i), decision, base.Add(time.Duration(i)*time.Hour))
		if err := store.Store(ctx, record); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		records, err := store.List(ctx, nil)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 5 || records[0].ID != "r4" || records[4].ID != "r0" {
			t.Errorf("List() order wrong: %v", ids(records))
		}
	})

	t.Run("decision filter", func(t *testing.T) {
		records, err := store.List(ctx, &audit.Query{Decision: "block"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 2 {
			t.Errorf("List(block) returned %d records, want 2", len(records))
		}
	})

	t.Run("time window", func(t *testing.T) {
		records, err := store.List(ctx, &audit.Query{
			Since: base.Add(1 * time.Hour),
			Until: base.Add(3 * time.Hour),
		})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 3 {
			t.Errorf("List(window) returned %d records, want 3: %v", len(records), ids(records))
		}
	})

	t.Run("limit and offset", func(t *testing.T) {
		records, err := store.List(ctx, &audit.Query{Limit: 2, Offset: 1})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(records) != 2 || records[0].ID != "r3" {
			t.Errorf("List(limit=2, offset=1) = %v", ids(records))
		}
	})

	t.Run("count", func(t *testing.T) {
		count, err := store.Count(ctx, &audit.Query{Decision: "allow"})
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if count != 3 {
			t.Errorf("Count(allow) = %d, want 3", count)
		}
	})
}

// TestMemoryStorage_Deletion tests age and count based pruning.
func TestMemoryStorage_Deletion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		record := testRecord(fmt.Sprintf("r%d", i), "allow", base.AddDate(0, 0, i))
		if err := store.Store(ctx, record); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := store.DeleteOlderThan(ctx, base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("DeleteOlderThan() = %d, want 3", deleted)
	}

	deleted, err = store.DeleteOldest(ctx, 4)
	if err != nil {
		t.Fatalf("DeleteOldest() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("DeleteOldest() = %d, want 3", deleted)
	}

	count, _ := store.Count(ctx, nil)
	if count != 4 {
		t.Errorf("Count() after pruning = %d, want 4", count)
	}

	// The survivors are the newest four.
	records, _ := store.List(ctx, nil)
	if records[len(records)-1].ID != "r6" {
		t.Errorf("oldest survivor = %s, want r6", records[len(records)-1].ID)
	}
}

// TestMemoryStorage_CopiesRecords tests that stored and returned
// records are isolated from caller mutation.
func TestMemoryStorage_CopiesRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	record := testRecord("r1", "allow", time.Now())
	if err := store.Store(ctx, record); err != nil {
		t.Fatal(err)
	}
	record.Decision = "mutated"

	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision != "allow" {
		t.Error("stored record shares memory with the caller's record")
	}
}

func ids(records []*audit.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
