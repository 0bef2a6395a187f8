package innerlife

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Keyword buckets for reaction scoring. Intense buckets are checked
// before mild ones so "absolutely thrilled but a bit worried" reads as
// strongly positive.
var (
	intensePositiveWords = []string{"thrilled", "ecstatic", "amazing", "incredible", "exhilarated", "overjoyed"}
	intenseNegativeWords = []string{"devastated", "heartbroken", "crushing", "crushed", "terrible", "awful", "miserable"}
	mildPositiveWords    = []string{"happy", "content", "wonderful", "pleased", "glad", "grateful", "fulfilled"}
	mildNegativeWords    = []string{"disappointed", "worried", "sad", "frustrated", "annoyed", "upset"}

	stressWords    = []string{"anxious", "worried", "overwhelmed", "pressure", "tense", "stressed", "can't handle"}
	energizedWords = []string{"energized", "motivated", "invigorated", "pumped"}
	drainedWords   = []string{"drained", "exhausted"}
)

// Mood deltas by sentiment bucket.
const (
	intensePositiveMood = 8
	intenseNegativeMood = -10
	mildPositiveMood    = 4
	mildNegativeMood    = -3

	reactionStressDelta    = 6
	reactionEnergizedDelta = 5
	reactionDrainedDelta   = -4
)

// ReactionResult reports whether a persona reaction changed any state.
type ReactionResult struct {
	Applied bool          `json:"applied"`
	Reason  string        `json:"reason,omitempty"`
	Changes ChangeSummary `json:"changes,omitempty"`
}

// ProcessReaction scores the persona's chosen reaction and inner
// thoughts about an event and applies the resulting trait deltas. The
// scoring is keyword based; no external model is involved. An empty
// reaction is a no-op, not an error.
func (e *StateEngine) ProcessReaction(ctx context.Context, ev *PersistedEvent, reaction, thoughts string) (*ReactionResult, error) {
	if ev == nil {
		return nil, fmt.Errorf("process reaction: nil event")
	}
	text := strings.ToLower(strings.TrimSpace(reaction + " " + thoughts))
	if strings.TrimSpace(text) == "" {
		return &ReactionResult{Applied: false, Reason: "no reaction to process"}, nil
	}

	changes := planReactionChanges(ev, text)
	if len(changes) == 0 {
		return &ReactionResult{Applied: false, Reason: "no sentiment keywords matched"}, nil
	}

	summary, err := e.applyAll(ctx, changes, ev.EventID, "react")
	if err != nil {
		return nil, err
	}

	e.stateCache.Clear()
	e.log.Info("applied reaction impact",
		zap.String("event_id", ev.EventID),
		zap.Int("traits_changed", len(summary)))
	return &ReactionResult{Applied: true, Changes: summary}, nil
}

// planReactionChanges derives trait deltas from the lowercased reaction
// text, in the same trait order event impacts use.
func planReactionChanges(ev *PersistedEvent, text string) []plannedChange {
	reason := fmt.Sprintf("Reaction to event: %s", ev.Summary)

	moodDelta := 0.0
	switch {
	case containsAny(text, intensePositiveWords):
		moodDelta = intensePositiveMood
	case containsAny(text, intenseNegativeWords):
		moodDelta = intenseNegativeMood
	case containsAny(text, mildPositiveWords):
		moodDelta = mildPositiveMood
	case containsAny(text, mildNegativeWords):
		moodDelta = mildNegativeMood
	}

	var changes []plannedChange
	if moodDelta != 0 {
		changes = append(changes, plannedChange{TraitMood, moodDelta, reason})
	}

	switch {
	case containsAny(text, energizedWords):
		changes = append(changes, plannedChange{TraitEnergy, reactionEnergizedDelta, reason})
	case containsAny(text, drainedWords):
		changes = append(changes, plannedChange{TraitEnergy, reactionDrainedDelta, reason})
	}

	if containsAny(text, stressWords) {
		changes = append(changes, plannedChange{TraitStress, reactionStressDelta, reason})
	}

	if trait, delta, ok := reactionCategoryDelta(ev.Category, moodDelta); ok {
		changes = append(changes, plannedChange{trait, delta, reason})
	}

	return changes
}

// reactionCategoryDelta moves the event's satisfaction trait in the
// direction the mood moved. A neutral mood leaves it alone.
func reactionCategoryDelta(category EventCategory, moodDelta float64) (trait string, delta float64, ok bool) {
	if moodDelta == 0 {
		return "", 0, false
	}
	positive := moodDelta > 0
	switch category {
	case CategorySocial:
		if positive {
			return TraitSocialSatisfaction, 3, true
		}
		return TraitSocialSatisfaction, -4, true
	case CategoryWork:
		if positive {
			return TraitWorkSatisfaction, 2, true
		}
		return TraitWorkSatisfaction, -3, true
	case CategoryPersonal:
		if positive {
			return TraitPersonalFulfillment, 3, true
		}
		return TraitPersonalFulfillment, -2, true
	}
	return "", 0, false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
