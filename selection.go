package innerlife

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Defaults for conversational event selection.
const (
	defaultSelectionHoursBack = 72
	defaultCleanupDays        = 30
)

// topicKeywords maps conversation topic vocabulary to event categories.
// The stress bucket has no category of its own; it boosts intense
// events instead.
var topicKeywords = map[EventCategory][]string{
	CategoryWork:     {"work", "job", "meeting", "project", "deadline", "colleague", "client", "office"},
	CategorySocial:   {"friend", "party", "dinner", "social", "people", "hang out", "meet", "event"},
	CategoryPersonal: {"personal", "home", "family", "self", "alone", "thinking", "feeling"},
}

var stressTopicKeywords = []string{"stress", "busy", "overwhelmed", "tired", "pressure", "difficult", "hard"}

// Relevance scoring weights.
const (
	categoryMatchScore = 3
	stressIntenseScore = 2
	stressIntensityBar = 6
)

// SelectionService picks which recent events the persona should bring up
// in conversation: recent enough to feel alive, fresh enough not to
// repeat, and relevant to what the user is talking about.
type SelectionService struct {
	engine  *StateEngine
	tracker *UsageTracker
	log     *zap.Logger
}

// NewSelectionService wires a selection service. A nil logger disables
// logging.
func NewSelectionService(engine *StateEngine, tracker *UsageTracker, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{engine: engine, tracker: tracker, log: logger}
}

// FreshEventsForConversation returns up to maxEvents recent events the
// user has not heard about lately. The candidate pool is oversampled so
// freshness filtering still leaves enough to choose from.
func (s *SelectionService) FreshEventsForConversation(ctx context.Context, userID string, maxEvents int) []EventSummary {
	if maxEvents <= 0 {
		return []EventSummary{}
	}
	pool := s.engine.RecentEvents(ctx, defaultSelectionHoursBack, maxEvents*3, "")
	return s.tracker.FreshEvents(ctx, userID, pool, maxEvents, DefaultAvoidRecentDays)
}

// ContextualEvents returns fresh recent events ranked by relevance to
// the conversation topic. Events that match none of the topic's themes
// score zero; if nothing scores, the plain fresh list is returned so
// the persona still has something to say.
func (s *SelectionService) ContextualEvents(ctx context.Context, userID, topic string, maxEvents int) []EventSummary {
	if maxEvents <= 0 {
		return []EventSummary{}
	}
	pool := s.engine.RecentEvents(ctx, defaultSelectionHoursBack, maxEvents*3, "")
	fresh := s.tracker.FreshEvents(ctx, userID, pool, len(pool), DefaultAvoidRecentDays)

	lowerTopic := strings.ToLower(topic)
	matchedCategories := make([]EventCategory, 0, len(topicKeywords))
	for category, keywords := range topicKeywords {
		if containsAny(lowerTopic, keywords) {
			matchedCategories = append(matchedCategories, category)
		}
	}
	stressTopic := containsAny(lowerTopic, stressTopicKeywords)

	type scored struct {
		ev    EventSummary
		score int
	}
	ranked := make([]scored, 0, len(fresh))
	for _, ev := range fresh {
		lowerSummary := strings.ToLower(ev.Summary)
		score := 0
		for _, category := range matchedCategories {
			if ev.Category == category || containsAny(lowerSummary, topicKeywords[category]) {
				score += categoryMatchScore
			}
		}
		if stressTopic {
			if containsAny(lowerSummary, stressTopicKeywords) {
				score += categoryMatchScore
			}
			if ev.Intensity >= stressIntensityBar {
				score += stressIntenseScore
			}
		}
		ranked = append(ranked, scored{ev: ev, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) == 0 || ranked[0].score == 0 {
		s.log.Debug("no events matched topic, falling back to fresh list",
			zap.String("topic", topic))
		if len(fresh) > maxEvents {
			fresh = fresh[:maxEvents]
		}
		return fresh
	}

	out := make([]EventSummary, 0, maxEvents)
	for _, r := range ranked {
		if len(out) >= maxEvents {
			break
		}
		out = append(out, r.ev)
	}
	return out
}

// TrackEventsMentioned records that the given events were surfaced in a
// conversation so later selections avoid them.
func (s *SelectionService) TrackEventsMentioned(ctx context.Context, userID, conversationID string, events []EventSummary) bool {
	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.EventID)
	}
	return s.tracker.TrackUsed(ctx, userID, conversationID, ids)
}

// UsageSummary reports how much of the event pool a user has already
// heard about.
func (s *SelectionService) UsageSummary(ctx context.Context, userID string) UsageSummary {
	return s.tracker.Usage(ctx, userID)
}

// CleanupOldEventData drops usage bookkeeping older than the given
// number of days (default 30) and returns how many records were removed.
func (s *SelectionService) CleanupOldEventData(ctx context.Context, userID string, days int) int {
	if days <= 0 {
		days = defaultCleanupDays
	}
	return s.tracker.CleanupOldData(ctx, userID, days)
}

// CleanupAllEventData sweeps usage bookkeeping for every user and
// returns how many records were removed.
func (s *SelectionService) CleanupAllEventData(ctx context.Context, days int) int {
	if days <= 0 {
		days = defaultCleanupDays
	}
	return s.tracker.CleanupAllData(ctx, days)
}
