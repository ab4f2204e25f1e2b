// Package rating - Revenue composition stage
package rating

import "github.com/shopspring/decimal"

// Composition is the revenue-side combination of the base amount with
// discount, surcharge and tax. The cost side intentionally has no
// analogous stage: cost is reported as its post-clamp base amount.
type Composition struct {
	// BaseAmount is the revenue base fed into the composition
	BaseAmount decimal.Decimal

	// DiscountAmount is BaseAmount x discount percentage / 100
	DiscountAmount decimal.Decimal

	// TotalAmount is max(0, base - discount + surcharge + tax)
	TotalAmount decimal.Decimal
}

// Compose applies the fixed arithmetic order to a revenue base amount.
// All outputs are rounded to the given number of places; intermediate
// values stay unrounded. Rounding is half away from zero.
func Compose(base, discountPct, surcharge, tax decimal.Decimal, places int32) Composition {
	discount := base.Mul(discountPct).Div(hundred)
	total := base.Sub(discount).Add(surcharge).Add(tax)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Composition{
		BaseAmount:     base.Round(places),
		DiscountAmount: discount.Round(places),
		TotalAmount:    total.Round(places),
	}
}
