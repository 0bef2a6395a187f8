package innerlife

import (
	"context"
	"sync"
	"time"
)

// Default retention for usage bookkeeping.
const (
	DefaultUserUsageTTL         = 30 * 24 * time.Hour
	DefaultConversationUsageTTL = 7 * 24 * time.Hour
)

// EventUsageRecord tracks when an event was last mentioned to a user.
type EventUsageRecord struct {
	EventID        string    `json:"event_id"`
	LastUsed       time.Time `json:"last_used"`
	ConversationID string    `json:"conversation_id"`
	UsageCount     int       `json:"usage_count"`
}

// UsageStore persists which events have been surfaced to which users,
// so conversations avoid repeating the same anecdotes.
type UsageStore interface {
	// RecordUse marks an event as mentioned to a user in a conversation.
	// Repeated mentions bump the usage count and refresh LastUsed.
	RecordUse(ctx context.Context, userID, conversationID, eventID string, at time.Time) error
	// UsageRecords returns all tracked usage for a user, keyed by event id.
	UsageRecords(ctx context.Context, userID string) (map[string]EventUsageRecord, error)
	// ConversationEvents lists event ids mentioned in one conversation,
	// most recent first.
	ConversationEvents(ctx context.Context, conversationID string) ([]string, error)
	// Stats returns aggregate mention counts keyed by event id.
	Stats(ctx context.Context) (map[string]int64, error)
	// Cleanup removes a user's records whose LastUsed is before cutoff
	// and returns how many were dropped.
	Cleanup(ctx context.Context, userID string, cutoff time.Time) (int, error)
	// CleanupAll sweeps every user's records against the cutoff and
	// returns how many were dropped in total.
	CleanupAll(ctx context.Context, cutoff time.Time) (int, error)
}

// ──────────────────────────────────────────────
// InMemoryUsageStore
// ──────────────────────────────────────────────

// InMemoryUsageStore keeps usage bookkeeping in process memory. It backs
// tests and serves as the degradation target when Redis is unavailable.
type InMemoryUsageStore struct {
	mu    sync.RWMutex
	users map[string]map[string]EventUsageRecord // userID -> eventID -> record
	convs map[string][]string                    // conversationID -> event ids, newest first
	stats map[string]int64                       // eventID -> total mentions
}

// NewInMemoryUsageStore creates an empty in-memory usage store.
func NewInMemoryUsageStore() *InMemoryUsageStore {
	return &InMemoryUsageStore{
		users: make(map[string]map[string]EventUsageRecord),
		convs: make(map[string][]string),
		stats: make(map[string]int64),
	}
}

func (s *InMemoryUsageStore) RecordUse(_ context.Context, userID, conversationID, eventID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.users[userID]
	if !ok {
		records = make(map[string]EventUsageRecord)
		s.users[userID] = records
	}
	rec := records[eventID]
	rec.EventID = eventID
	rec.LastUsed = at.UTC()
	rec.ConversationID = conversationID
	rec.UsageCount++
	records[eventID] = rec

	s.convs[conversationID] = append([]string{eventID}, s.convs[conversationID]...)
	s.stats[eventID]++
	return nil
}

func (s *InMemoryUsageStore) UsageRecords(_ context.Context, userID string) (map[string]EventUsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]EventUsageRecord, len(s.users[userID]))
	for id, rec := range s.users[userID] {
		out[id] = rec
	}
	return out, nil
}

func (s *InMemoryUsageStore) ConversationEvents(_ context.Context, conversationID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.convs[conversationID]...), nil
}

func (s *InMemoryUsageStore) Stats(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int64, len(s.stats))
	for id, n := range s.stats {
		out[id] = n
	}
	return out, nil
}

func (s *InMemoryUsageStore) Cleanup(_ context.Context, userID string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, rec := range s.users[userID] {
		if rec.LastUsed.Before(cutoff) {
			delete(s.users[userID], id)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemoryUsageStore) CleanupAll(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for userID, records := range s.users {
		for id, rec := range records {
			if rec.LastUsed.Before(cutoff) {
				delete(records, id)
				removed++
			}
		}
		if len(records) == 0 {
			delete(s.users, userID)
		}
	}
	return removed, nil
}

var _ UsageStore = (*InMemoryUsageStore)(nil)
