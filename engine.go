package innerlife

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Defaults for the engine's read-side protection.
const (
	DefaultStateCacheTTL    = 5 * time.Minute
	DefaultEventsCacheTTL   = 10 * time.Minute
	DefaultBreakerThreshold = 3
	DefaultBreakerCooldown  = 30 * time.Second
)

const fallbackChangeReason = "Fallback default value"

// Base per-trait deltas, scaled by the event's intensity before rounding.
const (
	moodPositiveDelta   = 5
	moodNegativeDelta   = -3
	energyIncreaseDelta = 4
	energyDecreaseDelta = -4
	stressIncreaseDelta = 6
	stressDecreaseDelta = -5
)

// StateEngineError reports a failed trait mutation. When it is returned
// the engine has already restored the traits it touched for the event.
type StateEngineError struct {
	Trait string
	Op    string
	Err   error
}

func (e *StateEngineError) Error() string {
	if e.Trait == "" {
		return fmt.Sprintf("state engine: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("state engine: %s %s: %v", e.Op, e.Trait, e.Err)
}

func (e *StateEngineError) Unwrap() error { return e.Err }

// TraitChange describes one trait's movement within a change summary.
type TraitChange struct {
	Previous float64 `json:"previous"`
	New      float64 `json:"new"`
	Amount   float64 `json:"amount"`
	Reason   string  `json:"reason"`
}

// ChangeSummary maps trait names to the changes one event produced.
type ChangeSummary map[string]TraitChange

// EngineConfig tunes the engine's caches and circuit breaker. Zero
// values fall back to the package defaults.
type EngineConfig struct {
	StateCacheTTL    time.Duration
	EventsCacheTTL   time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.StateCacheTTL <= 0 {
		c.StateCacheTTL = DefaultStateCacheTTL
	}
	if c.EventsCacheTTL <= 0 {
		c.EventsCacheTTL = DefaultEventsCacheTTL
	}
	if c.BreakerThreshold <= 0 {
		c.BreakerThreshold = DefaultBreakerThreshold
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = DefaultBreakerCooldown
	}
	return c
}

// StateEngine owns the persona's trait values. It is the only writer:
// every mutation is clamped to the trait's bounds and mirrored into the
// audit trail. Reads go through TTL caches guarded by a circuit breaker
// so a struggling repository degrades to stale or default data instead
// of surfacing errors.
type StateEngine struct {
	repo    Repository
	catalog *TraitCatalog
	log     *zap.Logger
	now     func() time.Time

	stateCache  *ttlCache[map[string]*TraitState]
	eventsCache *ttlCache[[]EventSummary]
	breaker     *circuitBreaker
}

// NewStateEngine wires an engine over the given repository. A nil
// logger disables logging.
func NewStateEngine(repo Repository, catalog *TraitCatalog, cfg EngineConfig, logger *zap.Logger) *StateEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &StateEngine{
		repo:        repo,
		catalog:     catalog,
		log:         logger,
		now:         time.Now,
		stateCache:  newTTLCache[map[string]*TraitState](cfg.StateCacheTTL),
		eventsCache: newTTLCache[[]EventSummary](cfg.EventsCacheTTL),
		breaker:     newCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
	}
}

// InitializeDefaults writes default rows for any trait that has no state
// yet. Safe to call repeatedly; existing values are never overwritten.
func (e *StateEngine) InitializeDefaults(ctx context.Context) error {
	for _, name := range e.catalog.Names() {
		existing, err := e.repo.TraitState(ctx, name)
		if err != nil {
			return fmt.Errorf("read trait %s: %w", name, err)
		}
		if existing != nil {
			continue
		}
		def := e.catalog.MustLookup(name)
		st := &TraitState{
			TraitName:        name,
			Value:            formatTraitValue(def.Default),
			NumericValue:     def.Default,
			Trend:            TrendStable,
			LastChangeReason: "Initialized to default",
			LastUpdated:      e.now().UTC(),
		}
		if err := e.repo.UpsertTraitState(ctx, st); err != nil {
			return fmt.Errorf("initialize trait %s: %w", name, err)
		}
		e.log.Info("initialized trait to default",
			zap.String("trait", name), zap.Float64("value", def.Default))
	}
	return nil
}

// ──────────────────────────────────────────────
// Event impact application
// ──────────────────────────────────────────────

// plannedChange is one trait mutation queued for an event, in apply order.
type plannedChange struct {
	trait  string
	delta  float64
	reason string
}

// ApplyEventImpact mutates trait state according to the event's declared
// impacts and category, in a fixed trait order. The event is applied all
// or nothing: if any write fails, the traits already touched are
// restored to their prior values, no audit rows are left behind, and a
// *StateEngineError is returned. On success the state and event caches
// are invalidated so the next read sees the new values.
func (e *StateEngine) ApplyEventImpact(ctx context.Context, ev *PersistedEvent) (ChangeSummary, error) {
	if ev == nil {
		return nil, fmt.Errorf("apply event impact: nil event")
	}

	summary, err := e.applyAll(ctx, e.planEventChanges(ev), ev.EventID, "apply")
	if err != nil {
		return nil, err
	}

	e.stateCache.Clear()
	e.eventsCache.Clear()
	e.log.Info("applied event impact",
		zap.String("event_id", ev.EventID),
		zap.String("category", string(ev.Category)),
		zap.Int("traits_changed", len(summary)))
	return summary, nil
}

// applyAll drives a batch of planned trait changes for one event. Trait
// rows are written first; the audit records are staged and appended in a
// single batch only after every write has succeeded, so a failed event
// never leaves a partial audit trail. Any failure restores the rows
// touched so far.
func (e *StateEngine) applyAll(ctx context.Context, changes []plannedChange, eventID, op string) (ChangeSummary, error) {
	summary := make(ChangeSummary, len(changes))
	recs := make([]*StateChangeRecord, 0, len(changes))

	// Snapshots of rows touched so far, for restore on failure. A nil
	// entry means the trait had no row before this event.
	var applied []appliedChange

	for _, ch := range changes {
		prior, result, rec, err := e.applyChange(ctx, ch, eventID)
		if err != nil {
			e.restore(ctx, applied)
			return nil, &StateEngineError{Trait: ch.trait, Op: op, Err: err}
		}
		applied = append(applied, appliedChange{trait: ch.trait, prior: prior})
		summary[ch.trait] = result
		recs = append(recs, rec)
	}

	if err := e.repo.AppendChangeRecords(ctx, recs); err != nil {
		e.restore(ctx, applied)
		return nil, &StateEngineError{Op: op, Err: fmt.Errorf("append audit records: %w", err)}
	}
	return summary, nil
}

type appliedChange struct {
	trait string
	prior *TraitState
}

func (e *StateEngine) restore(ctx context.Context, applied []appliedChange) {
	for i := len(applied) - 1; i >= 0; i-- {
		a := applied[i]
		if a.prior == nil {
			// The trait had no row before; overwrite with its default.
			def := e.catalog.MustLookup(a.trait)
			a.prior = &TraitState{
				TraitName:        a.trait,
				Value:            formatTraitValue(def.Default),
				NumericValue:     def.Default,
				Trend:            TrendStable,
				LastChangeReason: "Restored to default after failed update",
				LastUpdated:      e.now().UTC(),
			}
		}
		if err := e.repo.UpsertTraitState(ctx, a.prior); err != nil {
			e.log.Error("failed to restore trait after rollback",
				zap.String("trait", a.trait), zap.Error(err))
		}
	}
}

// applyChange reads the trait's current row, applies the delta with
// clamping, and writes the new row. The audit record is returned staged,
// not persisted; the caller appends the event's records as one batch.
// The returned prior state is the pre-mutation snapshot (nil if the row
// was absent).
func (e *StateEngine) applyChange(ctx context.Context, ch plannedChange, eventID string) (*TraitState, TraitChange, *StateChangeRecord, error) {
	def := e.catalog.MustLookup(ch.trait)

	prior, err := e.repo.TraitState(ctx, ch.trait)
	if err != nil {
		return nil, TraitChange{}, nil, fmt.Errorf("read current value: %w", err)
	}
	previous := def.Default
	if prior != nil {
		previous = prior.NumericValue
	}

	next := def.Clamp(previous + ch.delta)
	actual := next - previous

	trend := TrendStable
	switch {
	case actual > 0:
		trend = TrendIncreasing
	case actual < 0:
		trend = TrendDecreasing
	}

	now := e.now().UTC()
	st := &TraitState{
		TraitName:        ch.trait,
		Value:            formatTraitValue(next),
		NumericValue:     next,
		Trend:            trend,
		LastChangeReason: ch.reason,
		LastEventID:      eventID,
		LastUpdated:      now,
	}
	if err := e.repo.UpsertTraitState(ctx, st); err != nil {
		return prior, TraitChange{}, nil, fmt.Errorf("write new value: %w", err)
	}

	rec := &StateChangeRecord{
		EventID:       eventID,
		TraitName:     ch.trait,
		PreviousValue: previous,
		NewValue:      next,
		ChangeAmount:  actual,
		Reason:        ch.reason,
		Timestamp:     now,
	}
	return prior, TraitChange{Previous: previous, New: next, Amount: actual, Reason: ch.reason}, rec, nil
}

// planEventChanges derives the ordered trait deltas for an event. Order
// is mood, energy, stress, then the category trait.
func (e *StateEngine) planEventChanges(ev *PersistedEvent) []plannedChange {
	mult := intensityMultiplier(ev.Intensity)
	reason := fmt.Sprintf("Event impact: %s", ev.Summary)

	var changes []plannedChange

	switch ev.MoodImpact {
	case MoodPositive:
		changes = append(changes, plannedChange{TraitMood, scaleDelta(moodPositiveDelta, mult), reason})
	case MoodNegative:
		changes = append(changes, plannedChange{TraitMood, scaleDelta(moodNegativeDelta, mult), reason})
	}

	switch ev.EnergyImpact {
	case ImpactIncrease:
		changes = append(changes, plannedChange{TraitEnergy, scaleDelta(energyIncreaseDelta, mult), reason})
	case ImpactDecrease:
		changes = append(changes, plannedChange{TraitEnergy, scaleDelta(energyDecreaseDelta, mult), reason})
	}

	switch ev.StressImpact {
	case ImpactIncrease:
		changes = append(changes, plannedChange{TraitStress, scaleDelta(stressIncreaseDelta, mult), reason})
	case ImpactDecrease:
		changes = append(changes, plannedChange{TraitStress, scaleDelta(stressDecreaseDelta, mult), reason})
	}

	if trait, delta, ok := categoryDelta(ev); ok {
		// The category trait is always touched, even when the scaled
		// delta works out to zero, so the audit trail shows the event
		// reached it.
		changes = append(changes, plannedChange{trait, scaleDelta(delta, mult), reason})
	}

	return changes
}

// categoryDelta maps an event's category and mood to the satisfaction
// trait it moves.
func categoryDelta(ev *PersistedEvent) (trait string, delta float64, ok bool) {
	switch ev.Category {
	case CategoryWork:
		switch {
		case ev.MoodImpact == MoodNegative:
			return TraitWorkSatisfaction, -3, true
		case ev.StressImpact == ImpactIncrease:
			return TraitWorkSatisfaction, -2, true
		default:
			return TraitWorkSatisfaction, 2, true
		}
	case CategorySocial:
		if ev.MoodImpact == MoodNegative {
			return TraitSocialSatisfaction, -2, true
		}
		return TraitSocialSatisfaction, 4, true
	case CategoryPersonal:
		switch ev.MoodImpact {
		case MoodPositive:
			return TraitPersonalFulfillment, 5, true
		case MoodNegative:
			return TraitPersonalFulfillment, -2, true
		default:
			return TraitPersonalFulfillment, 3, true
		}
	}
	return "", 0, false
}

// intensityMultiplier scales base deltas by event intensity on a 1-10
// scale where 5 is neutral. Zero intensity means unscaled.
func intensityMultiplier(intensity int) float64 {
	if intensity <= 0 {
		return 1.0
	}
	return float64(intensity) / 5.0
}

// scaleDelta applies the intensity multiplier and rounds half away from
// zero, so a 1.2x scaling of +6 lands on +7, not +8, and symmetric
// negative deltas mirror their positive counterparts.
func scaleDelta(base float64, mult float64) float64 {
	scaled := base * mult
	if scaled >= 0 {
		return math.Floor(scaled + 0.5)
	}
	return math.Ceil(scaled - 0.5)
}

// ──────────────────────────────────────────────
// Cached reads
// ──────────────────────────────────────────────

const stateCacheKey = "persona_state"

// CurrentState returns the persona's trait states keyed by trait name.
// Results are cached; on repository failure the engine serves the most
// recent cached copy, or catalog defaults when nothing was ever cached.
// It never returns an error to callers.
func (e *StateEngine) CurrentState(ctx context.Context) map[string]*TraitState {
	if cached, ok, fresh := e.stateCache.Get(stateCacheKey); ok && fresh {
		return cloneStateMap(cached)
	}

	if !e.breaker.Allow() {
		return e.stateFallback("circuit breaker open")
	}

	rows, err := e.repo.AllTraitStates(ctx)
	if err != nil {
		e.breaker.RecordFailure()
		e.log.Warn("state read failed, serving fallback", zap.Error(err))
		return e.stateFallback("repository error")
	}
	e.breaker.RecordSuccess()

	state := make(map[string]*TraitState, e.catalog.Len())
	for _, row := range rows {
		state[row.TraitName] = row
	}
	// Traits with no row yet surface as defaults so callers always see
	// the full catalog.
	for _, name := range e.catalog.Names() {
		if _, ok := state[name]; ok {
			continue
		}
		state[name] = e.defaultTraitState(name)
	}

	e.stateCache.Set(stateCacheKey, state)
	return cloneStateMap(state)
}

func (e *StateEngine) stateFallback(why string) map[string]*TraitState {
	if cached, ok, _ := e.stateCache.Get(stateCacheKey); ok {
		e.log.Debug("serving stale persona state", zap.String("reason", why))
		return cloneStateMap(cached)
	}
	e.log.Debug("serving default persona state", zap.String("reason", why))
	state := make(map[string]*TraitState, e.catalog.Len())
	for _, name := range e.catalog.Names() {
		state[name] = e.defaultTraitState(name)
	}
	return state
}

func (e *StateEngine) defaultTraitState(name string) *TraitState {
	def := e.catalog.MustLookup(name)
	return &TraitState{
		TraitName:        name,
		Value:            formatTraitValue(def.Default),
		NumericValue:     def.Default,
		Trend:            TrendStable,
		LastChangeReason: fallbackChangeReason,
		LastUpdated:      e.now().UTC(),
	}
}

func cloneStateMap(in map[string]*TraitState) map[string]*TraitState {
	out := make(map[string]*TraitState, len(in))
	for name, st := range in {
		cp := *st
		out[name] = &cp
	}
	return out
}

// RecentEvents returns summaries of events from the last hoursBack
// hours, newest first, optionally filtered by category ("" means all).
// Results are cached per parameter combination; on repository failure
// it serves stale data, or an empty slice when nothing was ever cached.
func (e *StateEngine) RecentEvents(ctx context.Context, hoursBack, limit int, category EventCategory) []EventSummary {
	if hoursBack <= 0 {
		hoursBack = 24
	}
	key := eventsCacheKey(hoursBack, limit, category)

	if cached, ok, fresh := e.eventsCache.Get(key); ok && fresh {
		return append([]EventSummary(nil), cached...)
	}

	if !e.breaker.Allow() {
		return e.eventsFallback(key, "circuit breaker open")
	}

	since := e.now().UTC().Add(-time.Duration(hoursBack) * time.Hour)
	rows, err := e.repo.EventsSince(ctx, since, limit, category)
	if err != nil {
		e.breaker.RecordFailure()
		e.log.Warn("events read failed, serving fallback",
			zap.String("key", key), zap.Error(err))
		return e.eventsFallback(key, "repository error")
	}
	e.breaker.RecordSuccess()

	now := e.now().UTC()
	summaries := make([]EventSummary, 0, len(rows))
	for _, ev := range rows {
		summaries = append(summaries, EventSummary{
			EventID:   ev.EventID,
			Category:  ev.Category,
			Summary:   ev.Summary,
			Intensity: ev.Intensity,
			Timestamp: ev.Timestamp,
			HoursAgo:  now.Sub(ev.Timestamp).Hours(),
		})
	}

	e.eventsCache.Set(key, summaries)
	return append([]EventSummary(nil), summaries...)
}

func (e *StateEngine) eventsFallback(key, why string) []EventSummary {
	if cached, ok, _ := e.eventsCache.Get(key); ok {
		e.log.Debug("serving stale recent events",
			zap.String("key", key), zap.String("reason", why))
		return append([]EventSummary(nil), cached...)
	}
	return []EventSummary{}
}

func eventsCacheKey(hoursBack, limit int, category EventCategory) string {
	cat := "all"
	if category != "" {
		cat = string(category)
	}
	return fmt.Sprintf("%d_%d_%s", hoursBack, limit, cat)
}

// ──────────────────────────────────────────────
// Diagnostics and audit access
// ──────────────────────────────────────────────

// EngineStatus reports cache contents and breaker health for diagnostics.
type EngineStatus struct {
	StateCache          map[string]CacheEntryStatus `json:"state_cache"`
	EventsCache         map[string]CacheEntryStatus `json:"events_cache"`
	BreakerOpen         bool                        `json:"breaker_open"`
	ConsecutiveFailures int                         `json:"consecutive_failures"`
}

// CacheStatus snapshots the engine's caches and breaker state.
func (e *StateEngine) CacheStatus() EngineStatus {
	return EngineStatus{
		StateCache:          e.stateCache.Status(),
		EventsCache:         e.eventsCache.Status(),
		BreakerOpen:         e.breaker.Open(),
		ConsecutiveFailures: e.breaker.Failures(),
	}
}

// ClearCache drops all cached reads. The next read hits the repository.
func (e *StateEngine) ClearCache() {
	e.stateCache.Clear()
	e.eventsCache.Clear()
}

// ChangesForEvent returns the audit entries one event produced.
func (e *StateEngine) ChangesForEvent(ctx context.Context, eventID string) ([]*StateChangeRecord, error) {
	return e.repo.ChangeRecordsForEvent(ctx, eventID)
}

// TraitHistory returns a trait's audit entries since the given time,
// newest first. An empty name returns entries for every trait.
func (e *StateEngine) TraitHistory(ctx context.Context, name string, since time.Time) ([]*StateChangeRecord, error) {
	return e.repo.TraitHistory(ctx, name, since)
}
