// Package rates loads the coupon catalog and distance tiers from one YAML file.
package rates

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/noah-isme/booking-pricing/internal/coupon"
	"github.com/noah-isme/booking-pricing/internal/distance"
)

// ErrNotLoaded is reported by readiness checks when a configured file failed to load.
var ErrNotLoaded = errors.New("rates not loaded")

// Set is the parsed content of a rates file.
type Set struct {
	Path     string
	Coupons  *coupon.Catalog
	Distance *distance.Table
}

// Empty returns a set with no coupons and no distance tiers.
func Empty() *Set {
	return &Set{Coupons: coupon.NewCatalog(), Distance: &distance.Table{}}
}

// Parse reads coupons and distance tiers from a YAML document.
func Parse(data []byte) (*Set, error) {
	catalog, err := coupon.ParseCatalog(data)
	if err != nil {
		return nil, err
	}
	table, err := distance.ParseTable(data)
	if err != nil {
		return nil, err
	}
	return &Set{Coupons: catalog, Distance: table}, nil
}

// Load reads path. An empty path yields Empty.
func Load(path string) (*Set, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates file: %w", err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	set.Path = path
	return set, nil
}

// Ready reports ErrNotLoaded when s is missing.
func (s *Set) Ready() error {
	if s == nil || s.Coupons == nil || s.Distance == nil {
		return ErrNotLoaded
	}
	return nil
}
