package innerlife

import "testing"

func TestDefaultTraitCatalog(t *testing.T) {
	catalog := DefaultTraitCatalog()
	if catalog.Len() != 6 {
		t.Fatalf("expected 6 traits, got %d", catalog.Len())
	}

	wantDefaults := map[string]float64{
		TraitStress:              50,
		TraitEnergy:              70,
		TraitMood:                60,
		TraitSocialSatisfaction:  60,
		TraitWorkSatisfaction:    65,
		TraitPersonalFulfillment: 55,
	}
	for name, want := range wantDefaults {
		def, ok := catalog.Lookup(name)
		if !ok {
			t.Fatalf("trait %s missing from catalog", name)
		}
		if def.Default != want {
			t.Errorf("trait %s default = %v, want %v", name, def.Default, want)
		}
		if def.Min != 0 || def.Max != 100 {
			t.Errorf("trait %s bounds = [%v,%v], want [0,100]", name, def.Min, def.Max)
		}
	}
}

func TestTraitClamp(t *testing.T) {
	def := DefaultTraitCatalog().MustLookup(TraitStress)
	if got := def.Clamp(150); got != 100 {
		t.Errorf("Clamp(150) = %v, want 100", got)
	}
	if got := def.Clamp(-10); got != 0 {
		t.Errorf("Clamp(-10) = %v, want 0", got)
	}
	if got := def.Clamp(42.5); got != 42.5 {
		t.Errorf("Clamp(42.5) = %v, want 42.5", got)
	}
}

func TestMustLookupPanicsOnUnknownTrait(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown trait")
		}
	}()
	DefaultTraitCatalog().MustLookup("charisma")
}
