package innerlife

import (
	"fmt"
	"math/rand"
)

// ──────────────────────────────────────────────
// Event Generator
// ──────────────────────────────────────────────

// hourlyEventChance is the per-hour probability that any event fires.
// High during active hours, near zero overnight.
var hourlyEventChance = map[int]float64{
	0: 0.05, 1: 0.02, 2: 0.02, 3: 0.02, 4: 0.02, 5: 0.02,
	6: 0.05, 7: 0.15, 8: 0.25, 9: 0.30, 10: 0.35, 11: 0.30,
	12: 0.40, 13: 0.35, 14: 0.30, 15: 0.35, 16: 0.30, 17: 0.40,
	18: 0.45, 19: 0.40, 20: 0.35, 21: 0.25, 22: 0.15, 23: 0.10,
}

const defaultEventChance = 0.20

// categoryWeights holds the work/social/personal weights for one time
// period, in that order.
type categoryWeights [3]float64

var eventCategories = [3]EventCategory{CategoryWork, CategorySocial, CategoryPersonal}

// fallback intensity ranges per category, used when a template leaves
// intensity unspecified.
var fallbackIntensity = map[EventCategory][2]int{
	CategoryWork:     {3, 7},
	CategorySocial:   {4, 8},
	CategoryPersonal: {2, 6},
}

// Generator produces candidate life events on demand. It is a pure
// function of (hour, RNG state): no I/O, no shared mutable state, so a
// seeded Generator is fully deterministic.
//
// A Generator is not safe for concurrent use; the scheduler owns one.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a Generator seeded with the given value.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// GenerateForHour decides whether an event fires during the given hour
// of day (0-23) and, if so, renders one. A nil event with a nil error is
// the ordinary "nothing happened this hour" outcome; an error means the
// hour was invalid or the pattern tables are misconfigured.
func (g *Generator) GenerateForHour(hour int) (*CandidateEvent, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("hour %d out of range [0,23]", hour)
	}

	chance, ok := hourlyEventChance[hour]
	if !ok {
		chance = defaultEventChance
	}
	if g.rng.Float64() > chance {
		return nil, nil
	}

	category := g.pickCategory(hour)

	templates, err := TemplatesFor(category, hour)
	if err != nil {
		return nil, err
	}
	tpl := templates[g.rng.Intn(len(templates))]

	intensity := tpl.Intensity
	if intensity == 0 {
		lohi := fallbackIntensity[category]
		intensity = lohi[0] + g.rng.Intn(lohi[1]-lohi[0]+1)
	}

	ev := &CandidateEvent{
		Category:     category,
		Summary:      fillPlaceholders(tpl.Summary, g.rng),
		Intensity:    intensity,
		MoodImpact:   tpl.Mood,
		EnergyImpact: tpl.Energy,
		StressImpact: tpl.Stress,
	}
	if ev.MoodImpact == "" {
		// Social encounters default to lifting the mood.
		if category == CategorySocial {
			ev.MoodImpact = MoodPositive
		} else {
			ev.MoodImpact = MoodNeutral
		}
	}
	if ev.EnergyImpact == "" {
		ev.EnergyImpact = ImpactNeutral
	}
	if ev.StressImpact == "" {
		ev.StressImpact = ImpactNeutral
	}
	return ev, nil
}

// pickCategory makes a weighted choice appropriate to the time of day:
// work hours favor work events, evenings favor social ones, the edges of
// the day favor personal ones.
func (g *Generator) pickCategory(hour int) EventCategory {
	var weights categoryWeights
	switch {
	case hour >= 9 && hour <= 17:
		weights = categoryWeights{0.60, 0.25, 0.15}
	case hour >= 18 && hour <= 22:
		weights = categoryWeights{0.10, 0.60, 0.30}
	case hour >= 6 && hour <= 8 || hour == 23 || hour == 0:
		weights = categoryWeights{0.10, 0.20, 0.70}
	default:
		weights = categoryWeights{0.05, 0.15, 0.80}
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	roll := g.rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if roll <= cumulative {
			return eventCategories[i]
		}
	}
	return eventCategories[len(eventCategories)-1]
}
