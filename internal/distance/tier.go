package distance

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/booking-pricing/internal/pricing"
)

// ErrInvalidInput is returned for negative distances or base amounts.
var ErrInvalidInput = errors.New("distance: invalid input")

// Tier prices one kilometre band. A missing lower bound is 0 and a missing upper
// bound is unbounded; both ends are inclusive.
type Tier struct {
	MinKm      *float64         `yaml:"minKm" json:"minKm,omitempty"`
	MaxKm      *float64         `yaml:"maxKm" json:"maxKm,omitempty"`
	Addition   *pricing.Money   `yaml:"addition" json:"addition,omitempty"`
	Multiplier *decimal.Decimal `yaml:"multiplier" json:"multiplier,omitempty"`
	Active     *bool            `yaml:"active" json:"active,omitempty"`
}

// Enabled reports whether the tier takes part in lookups. Tiers are active unless
// explicitly switched off.
func (t Tier) Enabled() bool {
	return t.Active == nil || *t.Active
}

// Bounds returns the inclusive kilometre range of the tier.
func (t Tier) Bounds() (float64, float64) {
	lo, hi := 0.0, math.Inf(1)
	if t.MinKm != nil {
		lo = *t.MinKm
	}
	if t.MaxKm != nil {
		hi = *t.MaxKm
	}
	return lo, hi
}

// Contains reports whether km falls within the tier.
func (t Tier) Contains(km float64) bool {
	lo, hi := t.Bounds()
	return km >= lo && km <= hi
}

// Addon returns the surcharge for base, or zero when the tier prices nothing.
func (t Tier) Addon(base pricing.Money) pricing.Money {
	addon, _ := t.Resolve(base)
	return addon
}

// Resolve returns the surcharge for base and whether the tier prices one. A fixed
// addition (zero included) wins over a multiplier; multipliers at or below 1 price nothing.
func (t Tier) Resolve(base pricing.Money) (pricing.Money, bool) {
	if t.Addition != nil {
		return t.Addition.ClampZero(), true
	}
	if t.Multiplier != nil && t.Multiplier.GreaterThan(decimal.NewFromInt(1)) {
		return base.MulRate(t.Multiplier.Sub(decimal.NewFromInt(1))).ClampZero(), true
	}
	return pricing.Zero, false
}
