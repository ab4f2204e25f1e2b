// Package breaks provides the break table boundary: ordered tier sets
// attached to one side of a rate line, validated before any rating math
// sees them.
package breaks

import (
	"context"
	"sort"

	"freight-rating/core/types"
	"freight-rating/internal/errors"
)

// Table is a validated, sorted break table for one (line, side) pair.
// Tiers are ordered by ascending breakpoint and contain no duplicates.
type Table struct {
	// LineRef is the owning rate line identifier
	LineRef string

	// Side is the half of the line the table prices
	Side types.Side

	// Basis resolves whether the selected tier rate applies per unit
	// or once per shipment
	Basis types.RateBasis

	// Tiers are the threshold tiers, ascending by breakpoint
	Tiers []types.BreakPoint

	// Minimum is the optional charge-floor tier
	Minimum *types.BreakPoint
}

// Currency returns the table currency: the first tier that declares one.
// Quantity-break tiers carry their own currency tag.
func (t *Table) Currency() types.Currency {
	for _, tier := range t.Tiers {
		if tier.Currency != "" {
			return tier.Currency
		}
	}
	return ""
}

// Build validates raw break points and assembles a Table. Duplicate
// breakpoints and negative thresholds are invalid input, rejected here
// before reaching the calculation engine. An empty point set yields a
// nil table, which callers treat as a resolution miss.
func Build(lineRef string, side types.Side, basis types.RateBasis, points []types.BreakPoint) (*Table, error) {
	if len(points) == 0 {
		return nil, nil
	}
	if basis == "" {
		basis = types.BasisPerUnit
	}

	table := &Table{
		LineRef: lineRef,
		Side:    side,
		Basis:   basis,
	}

	for _, p := range points {
		if p.Breakpoint.IsNegative() {
			return nil, errors.BreakTable("negative breakpoint").
				WithContext("line_ref", lineRef).
				WithContext("breakpoint", p.Breakpoint.String())
		}
		if p.RateType == types.RateTypeMinimum {
			if table.Minimum != nil {
				return nil, errors.BreakTable("multiple minimum tiers").
					WithContext("line_ref", lineRef)
			}
			min := p
			table.Minimum = &min
			continue
		}
		table.Tiers = append(table.Tiers, p)
	}

	sort.SliceStable(table.Tiers, func(i, j int) bool {
		return table.Tiers[i].Breakpoint.LessThan(table.Tiers[j].Breakpoint)
	})

	for i := 1; i < len(table.Tiers); i++ {
		if table.Tiers[i].Breakpoint.Equal(table.Tiers[i-1].Breakpoint) {
			return nil, errors.BreakTable("duplicate breakpoint").
				WithContext("line_ref", lineRef).
				WithContext("breakpoint", table.Tiers[i].Breakpoint.String())
		}
	}

	if len(table.Tiers) == 0 && table.Minimum == nil {
		return nil, nil
	}
	return table, nil
}

// Source reads break tables for persisted rate lines. Returns (nil, nil)
// when no table exists for the pair; the engine treats that as a
// resolution miss, not an error.
type Source interface {
	Table(ctx context.Context, lineRef string, side types.Side) (*Table, error)
}
