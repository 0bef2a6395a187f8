package innerlife

import (
	"context"
	"testing"
	"time"
)

func TestRunGenerationOncePersistsFiredEvents(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	engine := newTestEngine(repo)
	sched := NewScheduler(NewGenerator(17), repo, engine, SchedulerConfig{}, nil)
	// Pin the clock to a busy evening hour so the 45% chance gets a
	// fair number of rolls.
	sched.now = func() time.Time { return time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC) }

	for i := 0; i < 200; i++ {
		if err := sched.RunGenerationOnce(ctx); err != nil {
			t.Fatal(err)
		}
	}

	events, err := repo.UnprocessedEvents(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) == 0 {
		t.Fatal("no events persisted across 200 busy-hour rolls")
	}
	for _, ev := range events {
		if ev.Status != StatusUnprocessed {
			t.Fatalf("fresh event status = %q", ev.Status)
		}
		if ev.Summary == "" {
			t.Fatal("persisted event with empty summary")
		}
	}
}

func TestRunSweepOnceProcessesBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	engine := newTestEngine(repo)
	if err := engine.InitializeDefaults(ctx); err != nil {
		t.Fatal(err)
	}
	sched := NewScheduler(NewGenerator(1), repo, engine, SchedulerConfig{SweepBatch: 2}, nil)

	for i := 0; i < 3; i++ {
		persistEvent(t, repo, CandidateEvent{
			Category:   CategorySocial,
			Summary:    "coffee with Sophie",
			Intensity:  5,
			MoodImpact: MoodPositive,
		})
	}
	moodBefore := traitValue(t, repo, TraitMood)

	if err := sched.RunSweepOnce(ctx); err != nil {
		t.Fatal(err)
	}

	remaining, err := repo.UnprocessedEvents(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 {
		t.Fatalf("remaining unprocessed = %d, want 1 (batch of 2)", len(remaining))
	}
	if got := traitValue(t, repo, TraitMood); got <= moodBefore {
		t.Fatalf("mood = %v after two positive events, want > %v", got, moodBefore)
	}

	if err := sched.RunSweepOnce(ctx); err != nil {
		t.Fatal(err)
	}
	remaining, _ = repo.UnprocessedEvents(ctx, 0)
	if len(remaining) != 0 {
		t.Fatalf("remaining unprocessed = %d after second sweep", len(remaining))
	}
}

func TestSweepLeavesFailedEventsForRetry(t *testing.T) {
	ctx := context.Background()
	repo := newScriptedRepo()
	engine := newTestEngine(repo)
	if err := engine.InitializeDefaults(ctx); err != nil {
		t.Fatal(err)
	}
	sched := NewScheduler(NewGenerator(1), repo, engine, SchedulerConfig{}, nil)

	persistEvent(t, repo.MemoryRepository, CandidateEvent{
		Category:   CategoryPersonal,
		Summary:    "tried a new recipe",
		Intensity:  4,
		MoodImpact: MoodPositive,
	})

	repo.failUpsertAt = repo.upsertCalls + 1
	if err := sched.RunSweepOnce(ctx); err != nil {
		t.Fatal(err)
	}

	remaining, err := repo.UnprocessedEvents(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 {
		t.Fatalf("failed event was marked processed; remaining = %d", len(remaining))
	}

	// Next sweep succeeds and drains it.
	if err := sched.RunSweepOnce(ctx); err != nil {
		t.Fatal(err)
	}
	remaining, _ = repo.UnprocessedEvents(ctx, 0)
	if len(remaining) != 0 {
		t.Fatalf("remaining = %d after retry sweep", len(remaining))
	}
}

func TestSchedulerStartStop(t *testing.T) {
	repo := NewMemoryRepository()
	engine := newTestEngine(repo)
	sched := NewScheduler(NewGenerator(1), repo, engine, SchedulerConfig{
		GenerateInterval: time.Hour,
		SweepInterval:    time.Hour,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched.Start(ctx)
	sched.Start(ctx) // idempotent
	sched.Stop()
	sched.Stop() // idempotent

	// Restart works after a clean stop.
	sched.Start(ctx)
	sched.Stop()
}
