package innerlife

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultAvoidRecentDays is how long a mentioned event stays out of the
// fresh pool before it may be repeated.
const DefaultAvoidRecentDays = 7

// storeRetryInterval is how long the tracker stays on the in-memory
// fallback after a store failure before trying the store again.
const storeRetryInterval = time.Minute

// UsageTracker layers freshness logic over a UsageStore. When the store
// fails the tracker degrades to an in-memory fallback and keeps serving;
// a persona that occasionally repeats an anecdote beats one that errors.
// Degradation is time-bounded: after storeRetryInterval the next call
// tries the store again.
type UsageTracker struct {
	store    UsageStore
	fallback *InMemoryUsageStore
	log      *zap.Logger
	now      func() time.Time

	mu            sync.Mutex
	degradedUntil time.Time
}

// NewUsageTracker wraps a usage store. A nil logger disables logging.
func NewUsageTracker(store UsageStore, logger *zap.Logger) *UsageTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsageTracker{
		store:    store,
		fallback: NewInMemoryUsageStore(),
		log:      logger,
		now:      time.Now,
	}
}

// Degraded reports whether the tracker is currently serving from the
// in-memory fallback after a store failure.
func (t *UsageTracker) Degraded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().Before(t.degradedUntil)
}

func (t *UsageTracker) active() UsageStore {
	if t.Degraded() {
		return t.fallback
	}
	return t.store
}

func (t *UsageTracker) degrade(op string, err error) {
	t.mu.Lock()
	fresh := !t.now().Before(t.degradedUntil)
	t.degradedUntil = t.now().Add(storeRetryInterval)
	t.mu.Unlock()
	if fresh {
		t.log.Warn("usage store failed, degrading to in-memory tracking",
			zap.String("op", op), zap.Error(err),
			zap.Duration("retry_after", storeRetryInterval))
	}
}

// TrackUsed records that the given events were mentioned to a user in a
// conversation. Returns false only when even the fallback store fails,
// which the in-memory fallback never does.
func (t *UsageTracker) TrackUsed(ctx context.Context, userID, conversationID string, eventIDs []string) bool {
	at := t.now().UTC()
	ok := true
	for _, eventID := range eventIDs {
		if err := t.active().RecordUse(ctx, userID, conversationID, eventID, at); err != nil {
			t.degrade("record_use", err)
			if err := t.fallback.RecordUse(ctx, userID, conversationID, eventID, at); err != nil {
				ok = false
			}
		}
	}
	return ok
}

// FreshEvents filters a candidate pool down to events not mentioned to
// the user within avoidRecentDays, capped at maxEvents. When too few
// candidates are fresh it tops up with the least recently used ones, so
// callers always get as close to maxEvents as the pool allows. On store
// failure the whole pool is treated as fresh.
func (t *UsageTracker) FreshEvents(ctx context.Context, userID string, pool []EventSummary, maxEvents, avoidRecentDays int) []EventSummary {
	if maxEvents <= 0 || len(pool) == 0 {
		return []EventSummary{}
	}
	if avoidRecentDays <= 0 {
		avoidRecentDays = DefaultAvoidRecentDays
	}

	records, err := t.active().UsageRecords(ctx, userID)
	if err != nil {
		t.degrade("usage_records", err)
		records, _ = t.fallback.UsageRecords(ctx, userID)
	}

	cutoff := t.now().UTC().AddDate(0, 0, -avoidRecentDays)

	var fresh, used []EventSummary
	for _, ev := range pool {
		rec, tracked := records[ev.EventID]
		if tracked && rec.LastUsed.After(cutoff) {
			used = append(used, ev)
			continue
		}
		fresh = append(fresh, ev)
	}

	if len(fresh) >= maxEvents {
		return fresh[:maxEvents]
	}

	// Top up with the least recently mentioned events first.
	sort.SliceStable(used, func(i, j int) bool {
		return records[used[i].EventID].LastUsed.Before(records[used[j].EventID].LastUsed)
	})
	out := append([]EventSummary{}, fresh...)
	for _, ev := range used {
		if len(out) >= maxEvents {
			break
		}
		out = append(out, ev)
	}
	return out
}

// UserHistory returns every usage record tracked for a user, keyed by
// event id.
func (t *UsageTracker) UserHistory(ctx context.Context, userID string) map[string]EventUsageRecord {
	records, err := t.active().UsageRecords(ctx, userID)
	if err != nil {
		t.degrade("usage_records", err)
		records, _ = t.fallback.UsageRecords(ctx, userID)
	}
	return records
}

// EventStats returns global mention counts per event, across all users.
func (t *UsageTracker) EventStats(ctx context.Context) map[string]int64 {
	stats, err := t.active().Stats(ctx)
	if err != nil {
		t.degrade("stats", err)
		stats, _ = t.fallback.Stats(ctx)
	}
	return stats
}

// UsageSummary aggregates a user's tracked usage for diagnostics.
type UsageSummary struct {
	UserID        string `json:"user_id"`
	TrackedEvents int    `json:"tracked_events"`
	RecentlyUsed  int    `json:"recently_used"`
	TotalMentions int    `json:"total_mentions"`
	Degraded      bool   `json:"degraded"`
}

// Usage reports how many events are tracked for a user and how many
// were mentioned within the last DefaultAvoidRecentDays.
func (t *UsageTracker) Usage(ctx context.Context, userID string) UsageSummary {
	summary := UsageSummary{UserID: userID}

	records, err := t.active().UsageRecords(ctx, userID)
	if err != nil {
		t.degrade("usage_records", err)
		records, _ = t.fallback.UsageRecords(ctx, userID)
	}
	summary.Degraded = t.Degraded()
	cutoff := t.now().UTC().AddDate(0, 0, -DefaultAvoidRecentDays)
	for _, rec := range records {
		summary.TrackedEvents++
		summary.TotalMentions += rec.UsageCount
		if rec.LastUsed.After(cutoff) {
			summary.RecentlyUsed++
		}
	}
	return summary
}

// CleanupOldData drops a user's usage records older than the given
// number of days and returns how many were removed.
func (t *UsageTracker) CleanupOldData(ctx context.Context, userID string, days int) int {
	if days <= 0 {
		days = 30
	}
	cutoff := t.now().UTC().AddDate(0, 0, -days)
	removed, err := t.active().Cleanup(ctx, userID, cutoff)
	if err != nil {
		t.degrade("cleanup", err)
		removed, _ = t.fallback.Cleanup(ctx, userID, cutoff)
	}
	return removed
}

// CleanupAllData sweeps every tracked user, dropping usage records older
// than the given number of days, and returns how many were removed.
func (t *UsageTracker) CleanupAllData(ctx context.Context, days int) int {
	if days <= 0 {
		days = 30
	}
	cutoff := t.now().UTC().AddDate(0, 0, -days)
	removed, err := t.active().CleanupAll(ctx, cutoff)
	if err != nil {
		t.degrade("cleanup_all", err)
		removed, _ = t.fallback.CleanupAll(ctx, cutoff)
	}
	return removed
}
