// Package tariff provides tariff rate resolution.
// A tariff is a published, reusable rate card keyed by item code,
// independent of any single transaction line.
package tariff

import (
	"context"

	"freight-rating/core/types"
)

// Resolver resolves candidate tariff rates for a (tariff, item) pair.
// A miss returns an empty slice and no error; the rating engine turns
// that into a zero amount with an explanatory note.
type Resolver interface {
	// Resolve returns matching rates, best match first
	Resolve(ctx context.Context, tariffID, itemCode string) ([]types.TariffRate, error)
}

// Selector picks the effective rate when several records match the same
// (tariff, item) pair. The source system applied "first match wins"
// with no documented tie-break; the strategy is pluggable so a
// deployment can impose date-range or specificity precedence instead.
type Selector func(rates []types.TariffRate) *types.TariffRate

// FirstMatch is the default selector
func FirstMatch(rates []types.TariffRate) *types.TariffRate {
	if len(rates) == 0 {
		return nil
	}
	return &rates[0]
}

// Service wraps a Resolver with a selection strategy
type Service struct {
	resolver Resolver
	selector Selector
}

// NewService creates a service with the given resolver and selector.
// A nil selector defaults to FirstMatch.
func NewService(resolver Resolver, selector Selector) *Service {
	if selector == nil {
		selector = FirstMatch
	}
	return &Service{resolver: resolver, selector: selector}
}

// Pick resolves and selects the effective rate for a (tariff, item)
// pair. Returns nil on a resolution miss.
func (s *Service) Pick(ctx context.Context, tariffID, itemCode string) (*types.TariffRate, error) {
	rates, err := s.resolver.Resolve(ctx, tariffID, itemCode)
	if err != nil {
		return nil, err
	}
	return s.selector(rates), nil
}
