package pricing

import "fmt"

// RateSource prices one activity and tier. It is fixed when a location is loaded.
type RateSource interface {
	Rate(a Activity, t Tier) float64
	Kind() SourceKind
}

type SourceKind string

const (
	SourceMatrix SourceKind = "matrix"
	SourceLegacy SourceKind = "legacy"
)

type legacySource struct {
	legacy LegacyPricing
}

func (s legacySource) Kind() SourceKind { return SourceLegacy }

func (s legacySource) Rate(a Activity, t Tier) float64 {
	rate := s.legacy.BasePrice
	if t != TierSmall {
		rate += s.legacy.TierSurcharges[t]
	}
	if mod, ok := s.legacy.ActivityModifiers[a]; ok && mod > 0 {
		rate *= 1 + mod/100
	}
	if rate < 0 {
		return 0
	}
	return rate
}

// matrixSource prefers the rate table and falls back to legacy per entry.
type matrixSource struct {
	table  RateTable
	legacy legacySource
}

func (s matrixSource) Kind() SourceKind { return SourceMatrix }

func (s matrixSource) Rate(a Activity, t Tier) float64 {
	if rate, ok := s.table.Lookup(a, t); ok {
		return rate
	}
	return s.legacy.Rate(a, t)
}

// Resolver answers rate questions for a single location.
type Resolver struct {
	source    RateSource
	tiers     []Tier
	enabled   []Activity
	activeSet map[Activity]bool
}

func NewResolver(p Pricing) *Resolver {
	legacy := legacySource{legacy: p.Legacy}
	r := &Resolver{tiers: p.Tiers()}
	if len(p.RateTable) > 0 {
		r.source = matrixSource{table: p.RateTable, legacy: legacy}
		r.enabled = matrixActivities(p.RateTable, r.tiers)
	} else {
		r.source = legacy
		r.enabled = legacyActivities(legacy, p.Legacy, r.tiers)
	}
	r.activeSet = make(map[Activity]bool, len(r.enabled))
	for _, a := range r.enabled {
		r.activeSet[a] = true
	}
	return r
}

func (r *Resolver) Source() SourceKind { return r.source.Kind() }

// ResolveRate never returns a negative rate. Zero means the pair cannot be priced.
func (r *Resolver) ResolveRate(a Activity, t Tier) float64 {
	return r.source.Rate(a, t)
}

// EnabledActivities is ordered like AllActivities.
func (r *Resolver) EnabledActivities() []Activity {
	return append([]Activity(nil), r.enabled...)
}

func (r *Resolver) EnabledTiers() []Tier {
	return append([]Tier(nil), r.tiers...)
}

func (r *Resolver) TierEnabled(t Tier) bool {
	for _, enabled := range r.tiers {
		if enabled == t {
			return true
		}
	}
	return false
}

// Rate validates the pair and returns its positive hourly rate.
func (r *Resolver) Rate(a Activity, t Tier) (float64, error) {
	if !a.IsValid() || !r.activeSet[a] {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedActivity, a)
	}
	if !t.IsValid() || !r.TierEnabled(t) {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedTier, t)
	}
	rate := r.source.Rate(a, t)
	if rate <= 0 {
		return 0, fmt.Errorf("%w: %q has no rate for tier %q", ErrUnsupportedActivity, a, t)
	}
	return rate, nil
}

func matrixActivities(table RateTable, tiers []Tier) []Activity {
	var out []Activity
	for _, a := range AllActivities {
		for _, t := range tiers {
			if _, ok := table.Lookup(a, t); ok {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func legacyActivities(src legacySource, legacy LegacyPricing, tiers []Tier) []Activity {
	allowed := make(map[Activity]bool, len(legacy.AllowedActivities))
	for _, a := range legacy.AllowedActivities {
		allowed[a] = true
	}
	var filter map[Activity]bool
	if len(legacy.EnabledActivities) > 0 {
		filter = make(map[Activity]bool, len(legacy.EnabledActivities))
		for _, a := range legacy.EnabledActivities {
			filter[a] = true
		}
	}
	var out []Activity
	for _, a := range AllActivities {
		if !allowed[a] || (filter != nil && !filter[a]) {
			continue
		}
		for _, t := range tiers {
			if src.Rate(a, t) > 0 {
				out = append(out, a)
				break
			}
		}
	}
	return out
}
