package innerlife

import "fmt"

// TraitDefinition is the static description of one tracked trait:
// its bounds and the value it starts from before any event touched it.
type TraitDefinition struct {
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// Clamp bounds v to the trait's [Min, Max] range.
func (d TraitDefinition) Clamp(v float64) float64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

// Trait names tracked by the engine.
const (
	TraitStress              = "stress"
	TraitEnergy              = "energy"
	TraitMood                = "mood"
	TraitSocialSatisfaction  = "social_satisfaction"
	TraitWorkSatisfaction    = "work_satisfaction"
	TraitPersonalFulfillment = "personal_fulfillment"
)

// TraitCatalog is the read-only set of trait definitions, loaded once per
// process. Iteration order is stable so that repeated operations touch
// traits in the same sequence.
type TraitCatalog struct {
	order []string
	defs  map[string]TraitDefinition
}

// DefaultTraitCatalog returns the catalog of the six core traits.
func DefaultTraitCatalog() *TraitCatalog {
	c := &TraitCatalog{defs: make(map[string]TraitDefinition)}
	for _, d := range []TraitDefinition{
		{Name: TraitStress, Min: 0, Max: 100, Default: 50},
		{Name: TraitEnergy, Min: 0, Max: 100, Default: 70},
		{Name: TraitMood, Min: 0, Max: 100, Default: 60},
		{Name: TraitSocialSatisfaction, Min: 0, Max: 100, Default: 60},
		{Name: TraitWorkSatisfaction, Min: 0, Max: 100, Default: 65},
		{Name: TraitPersonalFulfillment, Min: 0, Max: 100, Default: 55},
	} {
		c.order = append(c.order, d.Name)
		c.defs[d.Name] = d
	}
	return c
}

// Lookup returns the definition for name.
func (c *TraitCatalog) Lookup(name string) (TraitDefinition, bool) {
	d, ok := c.defs[name]
	return d, ok
}

// MustLookup returns the definition for name or panics. A trait name that
// is not in the catalog is a configuration bug, not a runtime condition.
func (c *TraitCatalog) MustLookup(name string) TraitDefinition {
	d, ok := c.defs[name]
	if !ok {
		panic(fmt.Sprintf("innerlife: unknown trait %q", name))
	}
	return d
}

// Names returns all trait names in catalog order.
func (c *TraitCatalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of defined traits.
func (c *TraitCatalog) Len() int {
	return len(c.order)
}
