package innerlife

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Trend is the sign-only characterization of a trait's latest change.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// TraitState is one row of persona state: the current bounded value of a
// trait plus bookkeeping about its last change. Mutated only by the
// state engine.
type TraitState struct {
	TraitName        string    `json:"trait_name"`
	Value            string    `json:"value"` // display rendering of NumericValue
	NumericValue     float64   `json:"numeric_value"`
	Trend            Trend     `json:"trend"`
	LastChangeReason string    `json:"last_change_reason"`
	LastEventID      string    `json:"last_event_id,omitempty"`
	LastUpdated      time.Time `json:"last_updated"`
}

// StateChangeRecord is one append-only audit entry: a single trait
// mutation attributed to a single event. Never mutated or deleted here;
// retention is an external concern.
type StateChangeRecord struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	TraitName     string    `json:"trait_name"`
	PreviousValue float64   `json:"previous_value"`
	NewValue      float64   `json:"new_value"`
	ChangeAmount  float64   `json:"change_amount"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

// Repository is the persistence collaborator for events, trait states,
// and the audit trail. Implementations must make single-row updates
// atomic; no other atomicity is assumed.
//
// TraitState returns (nil, nil) for a trait that has never been written.
type Repository interface {
	CreateEvent(ctx context.Context, candidate CandidateEvent) (*PersistedEvent, error)
	Event(ctx context.Context, eventID string) (*PersistedEvent, error)
	UnprocessedEvents(ctx context.Context, limit int) ([]*PersistedEvent, error)
	// EventsSince returns events with Timestamp >= since, newest first,
	// optionally filtered by category ("" means all), capped at limit.
	EventsSince(ctx context.Context, since time.Time, limit int, category EventCategory) ([]*PersistedEvent, error)
	MarkEventProcessed(ctx context.Context, eventID string, at time.Time) error
	// EventCounts returns how many events exist per category.
	EventCounts(ctx context.Context) (map[EventCategory]int, error)

	TraitState(ctx context.Context, name string) (*TraitState, error)
	AllTraitStates(ctx context.Context) ([]*TraitState, error)
	UpsertTraitState(ctx context.Context, state *TraitState) error

	// AppendChangeRecords persists one event's audit entries together:
	// either all records land or none do.
	AppendChangeRecords(ctx context.Context, recs []*StateChangeRecord) error
	ChangeRecordsForEvent(ctx context.Context, eventID string) ([]*StateChangeRecord, error)
	// TraitHistory returns audit entries for one trait (or all traits when
	// name is "") with Timestamp >= since, newest first.
	TraitHistory(ctx context.Context, name string, since time.Time) ([]*StateChangeRecord, error)
}

// formatTraitValue renders a numeric trait value for display storage.
func formatTraitValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ──────────────────────────────────────────────
// MemoryRepository
// ──────────────────────────────────────────────

// MemoryRepository is a thread-safe in-memory Repository for development
// and tests. Data is lost on restart.
type MemoryRepository struct {
	mu      sync.RWMutex
	events  map[string]*PersistedEvent
	order   []string // event ids in insertion order
	traits  map[string]*TraitState
	changes []*StateChangeRecord
	now     func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		events: make(map[string]*PersistedEvent),
		traits: make(map[string]*TraitState),
		now:    time.Now,
	}
}

func (r *MemoryRepository) CreateEvent(_ context.Context, candidate CandidateEvent) (*PersistedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev := &PersistedEvent{
		EventID:      uuid.New().String(),
		Category:     candidate.Category,
		Summary:      candidate.Summary,
		Intensity:    candidate.Intensity,
		MoodImpact:   candidate.MoodImpact,
		EnergyImpact: candidate.EnergyImpact,
		StressImpact: candidate.StressImpact,
		Timestamp:    r.now().UTC(),
		Status:       StatusUnprocessed,
	}
	r.events[ev.EventID] = ev
	r.order = append(r.order, ev.EventID)
	return copyEvent(ev), nil
}

func (r *MemoryRepository) Event(_ context.Context, eventID string) (*PersistedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ev, ok := r.events[eventID]
	if !ok {
		return nil, nil
	}
	return copyEvent(ev), nil
}

func (r *MemoryRepository) UnprocessedEvents(_ context.Context, limit int) ([]*PersistedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*PersistedEvent
	for _, id := range r.order {
		ev := r.events[id]
		if ev.Status != StatusUnprocessed {
			continue
		}
		out = append(out, copyEvent(ev))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryRepository) EventsSince(_ context.Context, since time.Time, limit int, category EventCategory) ([]*PersistedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*PersistedEvent
	for _, id := range r.order {
		ev := r.events[id]
		if ev.Timestamp.Before(since) {
			continue
		}
		if category != "" && ev.Category != category {
			continue
		}
		out = append(out, copyEvent(ev))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) MarkEventProcessed(_ context.Context, eventID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev, ok := r.events[eventID]
	if !ok {
		return nil
	}
	ev.Status = StatusProcessed
	t := at.UTC()
	ev.ProcessedAt = &t
	return nil
}

func (r *MemoryRepository) EventCounts(_ context.Context) (map[EventCategory]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[EventCategory]int)
	for _, ev := range r.events {
		out[ev.Category]++
	}
	return out, nil
}

func (r *MemoryRepository) TraitState(_ context.Context, name string) (*TraitState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.traits[name]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *MemoryRepository) AllTraitStates(_ context.Context) ([]*TraitState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.traits))
	for name := range r.traits {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*TraitState, 0, len(names))
	for _, name := range names {
		cp := *r.traits[name]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) UpsertTraitState(_ context.Context, state *TraitState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *state
	r.traits[state.TraitName] = &cp
	return nil
}

func (r *MemoryRepository) AppendChangeRecords(_ context.Context, recs []*StateChangeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range recs {
		cp := *rec
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		r.changes = append(r.changes, &cp)
	}
	return nil
}

func (r *MemoryRepository) ChangeRecordsForEvent(_ context.Context, eventID string) ([]*StateChangeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*StateChangeRecord
	for _, rec := range r.changes {
		if rec.EventID == eventID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryRepository) TraitHistory(_ context.Context, name string, since time.Time) ([]*StateChangeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*StateChangeRecord
	for _, rec := range r.changes {
		if name != "" && rec.TraitName != name {
			continue
		}
		if rec.Timestamp.Before(since) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func copyEvent(ev *PersistedEvent) *PersistedEvent {
	cp := *ev
	if ev.ProcessedAt != nil {
		t := *ev.ProcessedAt
		cp.ProcessedAt = &t
	}
	return &cp
}

// Compile-time interface check.
var _ Repository = (*MemoryRepository)(nil)
