// Package rating - Break tier selection
package rating

import (
	"fmt"

	"github.com/shopspring/decimal"

	"freight-rating/core/breaks"
	"freight-rating/core/types"
)

// SelectTier picks the tier whose breakpoint is the largest value not
// exceeding qty. A quantity below every breakpoint selects the lowest
// tier, which acts as the floor. A quantity exactly on a breakpoint
// selects that tier, not the next one down. Returns false only for an
// empty tier list.
func SelectTier(tiers []types.BreakPoint, qty decimal.Decimal) (types.BreakPoint, bool) {
	if len(tiers) == 0 {
		return types.BreakPoint{}, false
	}

	selected := tiers[0]
	for _, tier := range tiers[1:] {
		if tier.Breakpoint.GreaterThan(qty) {
			break
		}
		selected = tier
	}
	return selected, true
}

// tableAmount computes the pre-floor amount for a selected tier under
// the table's rate basis.
func tableAmount(table *breaks.Table, tier types.BreakPoint, qty decimal.Decimal) (decimal.Decimal, string) {
	if table.Basis == types.BasisPerShipment {
		note := fmt.Sprintf("break tier %s at %s: flat %s",
			tier.Breakpoint, tier.UnitRate, tier.UnitRate)
		return tier.UnitRate, note
	}

	amount := tier.UnitRate.Mul(qty)
	note := fmt.Sprintf("break tier %s at %s: %s x %s = %s",
		tier.Breakpoint, tier.UnitRate, qty, tier.UnitRate, amount)
	return amount, note
}
