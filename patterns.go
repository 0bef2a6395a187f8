package innerlife

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ──────────────────────────────────────────────
// Event Patterns: static template tables
// ──────────────────────────────────────────────
//
// Pure data: each category has hour-bucketed template lists with default
// intensity and impact tags. No state, no I/O; the generator draws from
// these tables.

// EventTemplate is one candidate life event before placeholder filling.
// Intensity 0 means "unspecified" and lets the generator pick a random
// intensity from the category's fallback range.
type EventTemplate struct {
	Summary   string
	Intensity int
	Mood      MoodImpact
	Energy    ImpactLevel
	Stress    ImpactLevel
}

// ErrNoTemplates reports a template table with no entries for a valid
// (category, hour) pair. This is a configuration bug and is surfaced
// loudly, unlike the ordinary "no event fired this hour" outcome.
var ErrNoTemplates = errors.New("no event templates configured")

// TemplatesFor returns the candidate templates for a category at a given
// hour of day.
func TemplatesFor(category EventCategory, hour int) ([]EventTemplate, error) {
	var list []EventTemplate
	switch category {
	case CategoryWork:
		list = workTemplates(hour)
	case CategorySocial:
		list = socialTemplates(hour)
	case CategoryPersonal:
		list = personalTemplates(hour)
	default:
		return nil, fmt.Errorf("%w: unknown category %q", ErrNoTemplates, category)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w for %s events at hour %d", ErrNoTemplates, category, hour)
	}
	return list, nil
}

func workTemplates(hour int) []EventTemplate {
	switch {
	case hour < 8 || hour > 18:
		return []EventTemplate{
			{"Checking urgent emails before the day starts", 3, MoodNeutral, ImpactDecrease, ImpactIncrease},
			{"Working late to finish an important deadline", 6, MoodNegative, ImpactDecrease, ImpactIncrease},
		}
	case hour <= 9:
		return []EventTemplate{
			{"Starting the day with team standup meeting", 4, MoodNeutral, ImpactIncrease, ImpactNeutral},
			{"Reviewing overnight progress on {project}", 3, MoodNeutral, ImpactNeutral, ImpactNeutral},
			{"Coffee meeting with {colleague} to discuss project goals", 5, MoodPositive, ImpactIncrease, ImpactNeutral},
		}
	case hour <= 12:
		return []EventTemplate{
			{"Deep focus session on {project} implementation", 6, MoodPositive, ImpactNeutral, ImpactNeutral},
			{"Client call to discuss {project} requirements", 7, MoodNeutral, ImpactNeutral, ImpactIncrease},
			{"Productive brainstorming session with the team", 6, MoodPositive, ImpactIncrease, ImpactNeutral},
			{"Code review session with {colleague}", 5, MoodNeutral, ImpactNeutral, ImpactNeutral},
		}
	case hour <= 15:
		return []EventTemplate{
			{"Afternoon meeting about {project} timeline", 5, MoodNeutral, ImpactNeutral, ImpactIncrease},
			{"Debugging a tricky issue in the codebase", 7, MoodNegative, ImpactDecrease, ImpactIncrease},
			{"Collaborating with {colleague} on documentation", 4, MoodNeutral, ImpactNeutral, ImpactNeutral},
		}
	default: // 16-18
		return []EventTemplate{
			{"End-of-day wrap-up and tomorrow's planning", 3, MoodNeutral, ImpactDecrease, ImpactNeutral},
			{"Quick team sync before end of day", 4, MoodNeutral, ImpactNeutral, ImpactNeutral},
			{"Last-minute urgent request from client", 8, MoodNegative, ImpactDecrease, ImpactIncrease},
		}
	}
}

func socialTemplates(hour int) []EventTemplate {
	switch {
	case hour < 10:
		return []EventTemplate{
			{"Quick text exchange with {friend} about weekend plans", 2, MoodPositive, ImpactNeutral, ImpactNeutral},
			{"Brief call with family member", 4, MoodPositive, ImpactIncrease, ImpactNeutral},
		}
	case hour <= 12:
		return []EventTemplate{
			{"Coffee break chat with {colleague} about life", 4, MoodPositive, ImpactIncrease, ImpactDecrease},
			{"Quick social media check and friend interactions", 3, MoodPositive, ImpactNeutral, ImpactNeutral},
			{"Lunch plans discussion with work friends", 5, MoodPositive, ImpactIncrease, ImpactNeutral},
		}
	case hour <= 14:
		return []EventTemplate{
			{"Lunch with {friend} at a new restaurant", 6, MoodPositive, ImpactIncrease, ImpactDecrease},
			{"Group lunch with colleagues", 5, MoodPositive, ImpactIncrease, ImpactNeutral},
			{"Video call with family during lunch break", 4, MoodPositive, ImpactNeutral, ImpactDecrease},
		}
	case hour >= 17 && hour <= 20:
		return []EventTemplate{
			{"Happy hour drinks with work friends", 7, MoodPositive, ImpactIncrease, ImpactDecrease},
			{"Dinner with {friend} to catch up", 6, MoodPositive, ImpactNeutral, ImpactDecrease},
			{"Group activity with friends - {activity}", 8, MoodPositive, ImpactIncrease, ImpactDecrease},
			{"Networking event for professional development", 6, MoodNeutral, ImpactNeutral, ImpactIncrease},
		}
	default: // 15-16 and late evening 21-23
		return []EventTemplate{
			{"Long phone conversation with {friend}", 5, MoodPositive, ImpactNeutral, ImpactDecrease},
			{"Online gaming session with friends", 6, MoodPositive, ImpactIncrease, ImpactDecrease},
			{"Video chat with family member", 4, MoodPositive, ImpactNeutral, ImpactDecrease},
		}
	}
}

func personalTemplates(hour int) []EventTemplate {
	switch {
	case hour < 7:
		return []EventTemplate{
			{"Woke up unusually early, couldn't get back to sleep", 3, MoodNegative, ImpactDecrease, ImpactIncrease},
			{"Early morning meditation session", 4, MoodPositive, ImpactIncrease, ImpactDecrease},
		}
	case hour <= 9:
		return []EventTemplate{
			{"Morning {exercise} routine", 5, MoodPositive, ImpactIncrease, ImpactDecrease},
			{"Peaceful {meal} while reading the news", 3, MoodNeutral, ImpactIncrease, ImpactNeutral},
			{"Morning shower and self-care routine", 3, MoodPositive, ImpactIncrease, ImpactDecrease},
			{"Quick {hobby} session before work", 4, MoodPositive, ImpactNeutral, ImpactDecrease},
		}
	case hour >= 12 && hour <= 14:
		return []EventTemplate{
			{"Quiet {meal} break and personal reflection", 3, MoodNeutral, ImpactIncrease, ImpactDecrease},
			{"Quick walk outside during lunch break", 4, MoodPositive, ImpactIncrease, ImpactDecrease},
			{"Personal errands during lunch break", 4, MoodNeutral, ImpactNeutral, ImpactNeutral},
		}
	case hour >= 18 && hour <= 21:
		return []EventTemplate{
			{"Evening {exercise} session", 5, MoodPositive, ImpactNeutral, ImpactDecrease},
			{"Cooking a nice {meal} at home", 4, MoodPositive, ImpactNeutral, ImpactDecrease},
			{"Relaxing with {hobby} after work", 5, MoodPositive, ImpactNeutral, ImpactDecrease},
			{"Personal shopping and errands", 4, MoodNeutral, ImpactDecrease, ImpactNeutral},
			{"Home organization and cleaning", 4, MoodNeutral, ImpactDecrease, ImpactNeutral},
		}
	default: // mid-morning/afternoon gaps and late evening wind-down
		return []EventTemplate{
			{"Evening wind-down routine and relaxation", 3, MoodPositive, ImpactDecrease, ImpactDecrease},
			{"Reading before bed", 3, MoodPositive, ImpactDecrease, ImpactDecrease},
			{"Gentle stretching and preparation for sleep", 2, MoodPositive, ImpactDecrease, ImpactDecrease},
			{"Journaling about the day", 3, MoodNeutral, ImpactNeutral, ImpactDecrease},
		}
	}
}

// placeholderOptions maps each template placeholder to its fill choices.
// Kept as one table so the vocabulary can change without touching the
// fill logic.
var placeholderOptions = map[string][]string{
	"{colleague}": {"Sarah", "Mike", "Jessica", "David", "Emily", "Alex"},
	"{project}":   {"quarterly report", "client presentation", "budget review", "team meeting", "project update"},
	"{friend}":    {"Emma", "Jake", "Lisa", "Ryan", "Sophie", "Chris"},
	"{activity}":  {"coffee", "lunch", "shopping", "movie", "walk", "chat"},
	"{meal}":      {"breakfast", "lunch", "dinner", "snack"},
	"{exercise}":  {"yoga", "running", "gym workout", "stretching", "walk"},
	"{hobby}":     {"reading", "painting", "music", "writing", "cooking", "gardening"},
}

// placeholderOrder fixes the substitution sequence so a seeded RNG
// produces the same fill every time.
var placeholderOrder = []string{
	"{colleague}", "{project}", "{friend}", "{activity}", "{meal}", "{exercise}", "{hobby}",
}

// fillPlaceholders substitutes each known placeholder in summary with a
// uniform random choice from its option list.
func fillPlaceholders(summary string, rng *rand.Rand) string {
	result := summary
	for _, ph := range placeholderOrder {
		if strings.Contains(result, ph) {
			options := placeholderOptions[ph]
			result = strings.ReplaceAll(result, ph, options[rng.Intn(len(options))])
		}
	}
	return result
}
