package innerlife

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryUsageStoreRecordAndRead(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUsageStore()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := store.RecordUse(ctx, "u1", "conv1", "e1", at); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordUse(ctx, "u1", "conv2", "e1", at.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordUse(ctx, "u1", "conv2", "e2", at.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	records, err := store.UsageRecords(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	e1 := records["e1"]
	if e1.UsageCount != 2 {
		t.Fatalf("e1 usage count = %d, want 2", e1.UsageCount)
	}
	if !e1.LastUsed.Equal(at.Add(time.Hour)) {
		t.Fatalf("e1 last used = %v", e1.LastUsed)
	}
	if e1.ConversationID != "conv2" {
		t.Fatalf("e1 conversation = %q", e1.ConversationID)
	}

	other, err := store.UsageRecords(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatalf("u2 records = %d, want 0", len(other))
	}
}

func TestInMemoryUsageStoreConversationEvents(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUsageStore()
	at := time.Now().UTC()

	store.RecordUse(ctx, "u1", "conv1", "e1", at)
	store.RecordUse(ctx, "u1", "conv1", "e2", at.Add(time.Minute))

	ids, err := store.ConversationEvents(ctx, "conv1")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "e2" || ids[1] != "e1" {
		t.Fatalf("conversation events = %v, want newest first", ids)
	}
}

func TestInMemoryUsageStoreStats(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUsageStore()
	at := time.Now().UTC()

	store.RecordUse(ctx, "u1", "c1", "e1", at)
	store.RecordUse(ctx, "u2", "c2", "e1", at)
	store.RecordUse(ctx, "u1", "c1", "e2", at)

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats["e1"] != 2 || stats["e2"] != 1 {
		t.Fatalf("stats = %v", stats)
	}
}

func TestInMemoryUsageStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUsageStore()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	store.RecordUse(ctx, "u1", "c1", "old-event", old)
	store.RecordUse(ctx, "u1", "c1", "recent-event", recent)

	removed, err := store.Cleanup(ctx, "u1", recent.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	records, _ := store.UsageRecords(ctx, "u1")
	if _, ok := records["old-event"]; ok {
		t.Fatal("old event survived cleanup")
	}
	if _, ok := records["recent-event"]; !ok {
		t.Fatal("recent event removed by cleanup")
	}
}

func TestInMemoryUsageStoreCleanupAll(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUsageStore()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	store.RecordUse(ctx, "u1", "c1", "old-event", old)
	store.RecordUse(ctx, "u2", "c2", "old-event", old)
	store.RecordUse(ctx, "u2", "c2", "recent-event", recent)

	removed, err := store.CleanupAll(ctx, recent.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2 across users", removed)
	}
	u1, _ := store.UsageRecords(ctx, "u1")
	if len(u1) != 0 {
		t.Fatalf("u1 records = %d, want 0", len(u1))
	}
	u2, _ := store.UsageRecords(ctx, "u2")
	if _, ok := u2["recent-event"]; !ok || len(u2) != 1 {
		t.Fatalf("u2 records = %v", u2)
	}
}
