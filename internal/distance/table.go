package distance

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/booking-pricing/internal/obs"
	"github.com/noah-isme/booking-pricing/internal/pricing"
)

// Source identifies which tier list produced an addon.
type Source string

const (
	SourceVariant Source = "variant"
	SourceGlobal  Source = "global"
	SourceNone    Source = "none"
)

// Result is the outcome of a distance lookup.
type Result struct {
	Addon  pricing.Money `json:"addon"`
	Source Source        `json:"source"`
}

// Table holds per-variant tiers and the global fallback tiers.
type Table struct {
	Variants map[string][]Tier `yaml:"variants" json:"variants,omitempty"`
	Global   []Tier            `yaml:"global" json:"global,omitempty"`
}

type ratesDocument struct {
	Distance Table `yaml:"distance"`
}

// ParseTable reads the `distance` section of a rates YAML document.
func ParseTable(data []byte) (*Table, error) {
	var doc ratesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse distance tiers: %w", err)
	}
	t := doc.Distance
	for variant, tiers := range t.Variants {
		if err := checkTiers(tiers); err != nil {
			return nil, fmt.Errorf("parse distance tiers: variant %s: %w", variant, err)
		}
	}
	if err := checkTiers(t.Global); err != nil {
		return nil, fmt.Errorf("parse distance tiers: global: %w", err)
	}
	return &t, nil
}

func checkTiers(tiers []Tier) error {
	for i, tier := range tiers {
		lo, hi := tier.Bounds()
		if lo < 0 || hi < lo {
			return fmt.Errorf("tier %d has invalid range [%v, %v]", i, lo, hi)
		}
		if tier.Addition != nil && tier.Addition.IsNegative() {
			return fmt.Errorf("tier %d has negative addition", i)
		}
		if tier.Multiplier != nil && tier.Multiplier.IsNegative() {
			return fmt.Errorf("tier %d has negative multiplier", i)
		}
	}
	return nil
}

// Compute finds the addon for km on base. Variant tiers are consulted before the
// global ones and the first active tier containing km wins. A matched tier that
// prices nothing falls through to the next list. A zero distance adds nothing.
func (t *Table) Compute(variantID string, km float64, base pricing.Money) (Result, error) {
	if km < 0 || math.IsNaN(km) || math.IsInf(km, 0) {
		return Result{}, fmt.Errorf("%w: km must be a finite non-negative number", ErrInvalidInput)
	}
	if base.IsNegative() {
		return Result{}, fmt.Errorf("%w: base must not be negative", ErrInvalidInput)
	}
	res := Result{Addon: pricing.Zero, Source: SourceNone}
	if t != nil && km > 0 {
		if variantID = strings.TrimSpace(variantID); variantID != "" {
			if addon, ok := lookup(t.Variants[variantID], km, base); ok {
				res = Result{Addon: addon, Source: SourceVariant}
			}
		}
		if res.Source == SourceNone {
			if addon, ok := lookup(t.Global, km, base); ok {
				res = Result{Addon: addon, Source: SourceGlobal}
			}
		}
	}
	obs.ObserveDistance(string(res.Source))
	return res, nil
}

func lookup(tiers []Tier, km float64, base pricing.Money) (pricing.Money, bool) {
	for _, tier := range tiers {
		if tier.Enabled() && tier.Contains(km) {
			return tier.Resolve(base)
		}
	}
	return pricing.Zero, false
}
