package coupon

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store looks coupon rules up by code.
type Store interface {
	Find(ctx context.Context, code string) (Rule, error)
}

// Catalog is an in-memory Store keyed by normalised code. It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewCatalog builds a catalog from rules; later duplicates of a code replace earlier ones.
func NewCatalog(rules ...Rule) *Catalog {
	c := &Catalog{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		c.Put(r)
	}
	return c
}

type ratesDocument struct {
	Coupons []Rule `yaml:"coupons"`
}

// ParseCatalog reads the `coupons` section of a rates YAML document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc ratesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse coupons: %w", err)
	}
	for i := range doc.Coupons {
		r := &doc.Coupons[i]
		if NormalizeCode(r.Code) == "" {
			return nil, fmt.Errorf("parse coupons: entry %d has no code", i)
		}
		r.Kind = Kind(strings.ToLower(strings.TrimSpace(string(r.Kind))))
		switch r.Kind {
		case KindPercentage, KindFlat, KindFreeShipping:
		default:
			return nil, fmt.Errorf("parse coupons: %s has unknown kind %q", r.Code, r.Kind)
		}
		if r.Value.IsNegative() {
			return nil, fmt.Errorf("parse coupons: %s has negative value", r.Code)
		}
	}
	return NewCatalog(doc.Coupons...), nil
}

// Put inserts or replaces a rule.
func (c *Catalog) Put(r Rule) {
	r.Code = NormalizeCode(r.Code)
	c.mu.Lock()
	c.rules[r.Code] = r
	c.mu.Unlock()
}

// Find implements Store.
func (c *Catalog) Find(_ context.Context, code string) (Rule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rules[NormalizeCode(code)]
	if !ok {
		return Rule{}, ErrNotFound
	}
	return r, nil
}

// Len reports the number of rules held.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rules)
}
