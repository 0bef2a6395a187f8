package innerlife

import "time"

// EventCategory classifies a life event.
type EventCategory string

const (
	CategoryWork     EventCategory = "work"
	CategorySocial   EventCategory = "social"
	CategoryPersonal EventCategory = "personal"
)

// MoodImpact describes how an event colors the persona's mood.
type MoodImpact string

const (
	MoodPositive MoodImpact = "positive"
	MoodNegative MoodImpact = "negative"
	MoodNeutral  MoodImpact = "neutral"
)

// ImpactLevel describes how an event moves energy or stress.
type ImpactLevel string

const (
	ImpactIncrease ImpactLevel = "increase"
	ImpactDecrease ImpactLevel = "decrease"
	ImpactNeutral  ImpactLevel = "neutral"
)

// EventStatus tracks whether an event's state impact has been applied.
type EventStatus string

const (
	StatusUnprocessed EventStatus = "unprocessed"
	StatusProcessed   EventStatus = "processed"
)

// CandidateEvent is a generator-produced life event that has not been
// persisted yet. Immutable once created; ownership transfers to the
// repository on CreateEvent.
type CandidateEvent struct {
	Category     EventCategory `json:"category"`
	Summary      string        `json:"summary"`
	Intensity    int           `json:"intensity"` // 1-10
	MoodImpact   MoodImpact    `json:"mood_impact"`
	EnergyImpact ImpactLevel   `json:"energy_impact"`
	StressImpact ImpactLevel   `json:"stress_impact"`
}

// PersistedEvent is a stored life event with identity and processing state.
type PersistedEvent struct {
	EventID      string        `json:"event_id"`
	Category     EventCategory `json:"category"`
	Summary      string        `json:"summary"`
	Intensity    int           `json:"intensity"`
	MoodImpact   MoodImpact    `json:"mood_impact"`
	EnergyImpact ImpactLevel   `json:"energy_impact"`
	StressImpact ImpactLevel   `json:"stress_impact"`
	Timestamp    time.Time     `json:"timestamp"`
	Status       EventStatus   `json:"status"`
	ProcessedAt  *time.Time    `json:"processed_at,omitempty"`
}

// EventSummary is the read-model view of a recent event, served by the
// state engine's cached recent-events query and consumed by the
// conversational selection layer.
type EventSummary struct {
	EventID   string        `json:"event_id"`
	Category  EventCategory `json:"category"`
	Summary   string        `json:"summary"`
	Intensity int           `json:"intensity"`
	Timestamp time.Time     `json:"timestamp"`
	HoursAgo  float64       `json:"hours_ago"`
}
