package innerlife

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRuntimeInMemoryWiring(t *testing.T) {
	ctx := context.Background()
	rt, err := NewRuntime(&Config{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()

	if _, ok := rt.Repo.(*MemoryRepository); !ok {
		t.Fatalf("repo type = %T, want *MemoryRepository", rt.Repo)
	}

	if err := rt.Start(ctx); err != nil {
		t.Fatal(err)
	}

	state := rt.Engine.CurrentState(ctx)
	if len(state) != DefaultTraitCatalog().Len() {
		t.Fatalf("state has %d traits", len(state))
	}
	if state[TraitMood].NumericValue != 60 {
		t.Fatalf("mood = %v, want default 60", state[TraitMood].NumericValue)
	}

	if err := rt.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRuntimeSQLiteAndRedisWiring(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := &Config{
		SQLitePath: filepath.Join(t.TempDir(), "persona.db"),
		RedisAddr:  mr.Addr(),
	}
	rt, err := NewRuntime(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()

	if _, ok := rt.Repo.(*SQLiteRepository); !ok {
		t.Fatalf("repo type = %T, want *SQLiteRepository", rt.Repo)
	}
	if err := rt.Start(ctx); err != nil {
		t.Fatal(err)
	}

	// End to end: persist an event, sweep it, read the new state, and
	// surface it through selection with usage tracked in Redis.
	ev, err := rt.Repo.CreateEvent(ctx, CandidateEvent{
		Category:   CategorySocial,
		Summary:    "game night with Ryan",
		Intensity:  5,
		MoodImpact: MoodPositive,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := rt.Scheduler.RunSweepOnce(ctx); err != nil {
		t.Fatal(err)
	}
	rt.Engine.ClearCache()

	state := rt.Engine.CurrentState(ctx)
	if state[TraitMood].NumericValue != 65 {
		t.Fatalf("mood = %v after positive event, want 65", state[TraitMood].NumericValue)
	}
	if state[TraitMood].LastEventID != ev.EventID {
		t.Fatalf("mood last event = %q, want %q", state[TraitMood].LastEventID, ev.EventID)
	}

	events := rt.Selection.FreshEventsForConversation(ctx, "u1", 3)
	if len(events) != 1 {
		t.Fatalf("selection = %d events, want 1", len(events))
	}
	if !rt.Selection.TrackEventsMentioned(ctx, "u1", "conv1", events) {
		t.Fatal("tracking failed")
	}
	if rt.Tracker.Degraded() {
		t.Fatal("tracker degraded with live miniredis")
	}
	summary := rt.Selection.UsageSummary(ctx, "u1")
	if summary.TrackedEvents != 1 {
		t.Fatalf("tracked = %d, want 1", summary.TrackedEvents)
	}
}
