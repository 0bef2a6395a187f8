package innerlife

import (
	"context"
	"testing"
	"time"
)

func newSelectionFixture(t *testing.T) (*SelectionService, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	engine := newTestEngine(repo)
	tracker := NewUsageTracker(NewInMemoryUsageStore(), nil)
	return NewSelectionService(engine, tracker, nil), repo
}

func TestFreshEventsForConversation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSelectionFixture(t)

	persistEvent(t, repo, testCandidate(CategoryWork, "sprint planning", 3))
	persistEvent(t, repo, testCandidate(CategorySocial, "trivia night", 5))

	events := svc.FreshEventsForConversation(ctx, "u1", 5)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	if got := svc.FreshEventsForConversation(ctx, "u1", 0); len(got) != 0 {
		t.Fatalf("maxEvents 0 returned %d events", len(got))
	}
}

func TestContextualEventsRankByTopic(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSelectionFixture(t)

	persistEvent(t, repo, testCandidate(CategorySocial, "long lunch with Emma", 4))
	persistEvent(t, repo, testCandidate(CategoryWork, "the quarterly review meeting", 5))
	persistEvent(t, repo, testCandidate(CategoryPersonal, "quiet morning run", 2))

	events := svc.ContextualEvents(ctx, "u1", "how is work going? any big projects?", 2)
	if len(events) == 0 {
		t.Fatal("no events returned")
	}
	if events[0].Category != CategoryWork {
		t.Fatalf("top event category = %s, want work", events[0].Category)
	}
}

func TestContextualEventsStressBoostsIntenseEvents(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSelectionFixture(t)

	persistEvent(t, repo, testCandidate(CategoryWork, "calm paperwork morning", 2))
	persistEvent(t, repo, testCandidate(CategoryWork, "server outage scramble", 8))

	events := svc.ContextualEvents(ctx, "u1", "I've been so stressed and busy lately", 2)
	if len(events) == 0 {
		t.Fatal("no events returned")
	}
	if events[0].Intensity < 6 {
		t.Fatalf("top event intensity = %d, expected intense event first", events[0].Intensity)
	}
}

func TestContextualEventsFallsBackWhenNothingMatches(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSelectionFixture(t)

	persistEvent(t, repo, CandidateEvent{
		Category: CategoryPersonal, Summary: "reorganized the bookshelf", Intensity: 2,
		MoodImpact: MoodNeutral, EnergyImpact: ImpactNeutral, StressImpact: ImpactNeutral,
	})

	events := svc.ContextualEvents(ctx, "u1", "what do you think about the weather", 3)
	if len(events) != 1 {
		t.Fatalf("fallback returned %d events, want the fresh list", len(events))
	}
}

func TestTrackEventsMentionedSuppressesRepeats(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSelectionFixture(t)

	persistEvent(t, repo, testCandidate(CategoryWork, "demo day", 5))
	persistEvent(t, repo, testCandidate(CategorySocial, "picnic in the park", 4))

	first := svc.FreshEventsForConversation(ctx, "u1", 1)
	if len(first) != 1 {
		t.Fatalf("first selection = %d events", len(first))
	}
	if !svc.TrackEventsMentioned(ctx, "u1", "conv1", first) {
		t.Fatal("TrackEventsMentioned returned false")
	}

	second := svc.FreshEventsForConversation(ctx, "u1", 1)
	if len(second) != 1 {
		t.Fatalf("second selection = %d events", len(second))
	}
	if second[0].EventID == first[0].EventID {
		t.Fatal("same event surfaced twice while a fresh one existed")
	}

	summary := svc.UsageSummary(ctx, "u1")
	if summary.TrackedEvents != 1 {
		t.Fatalf("tracked = %d, want 1", summary.TrackedEvents)
	}
}

func TestCleanupOldEventData(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSelectionFixture(t)

	persistEvent(t, repo, testCandidate(CategoryWork, "old news", 3))
	events := svc.FreshEventsForConversation(ctx, "u1", 1)
	svc.TrackEventsMentioned(ctx, "u1", "conv1", events)

	// Nothing is older than 30 days yet.
	if removed := svc.CleanupOldEventData(ctx, "u1", 0); removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
}

func TestCleanupAllEventData(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUsageStore()
	engine := newTestEngine(NewMemoryRepository())
	svc := NewSelectionService(engine, NewUsageTracker(store, nil), nil)

	old := time.Now().UTC().AddDate(0, 0, -90)
	store.RecordUse(ctx, "u1", "c1", "ancient", old)
	store.RecordUse(ctx, "u2", "c2", "ancient", old)

	if removed := svc.CleanupAllEventData(ctx, 30); removed != 2 {
		t.Fatalf("removed = %d, want 2 across users", removed)
	}
}
