package innerlife

import (
	"math/rand"
	"strings"
	"testing"
)

func TestTemplatesForCoversAllCategoriesAndHours(t *testing.T) {
	for _, category := range []EventCategory{CategoryWork, CategorySocial, CategoryPersonal} {
		for hour := 0; hour < 24; hour++ {
			templates, err := TemplatesFor(category, hour)
			if err != nil {
				t.Fatalf("%s hour %d: %v", category, hour, err)
			}
			if len(templates) == 0 {
				t.Fatalf("%s hour %d: empty template list without error", category, hour)
			}
			for _, tpl := range templates {
				if tpl.Summary == "" {
					t.Fatalf("%s hour %d: template with empty summary", category, hour)
				}
			}
		}
	}
}

func TestTemplatesForUnknownCategory(t *testing.T) {
	if _, err := TemplatesFor(EventCategory("cosmic"), 12); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestFillPlaceholdersReplacesAllMarkers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	summary := "Lunch with {colleague} about {project}, then {activity} with {friend}"
	filled := fillPlaceholders(summary, rng)
	if strings.ContainsAny(filled, "{}") {
		t.Fatalf("unfilled placeholder remains: %q", filled)
	}
}

func TestFillPlaceholdersDeterministicUnderSeed(t *testing.T) {
	summary := "Coffee with {friend} before {activity}"
	a := fillPlaceholders(summary, rand.New(rand.NewSource(3)))
	b := fillPlaceholders(summary, rand.New(rand.NewSource(3)))
	if a != b {
		t.Fatalf("same seed produced %q and %q", a, b)
	}
}
