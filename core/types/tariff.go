// Package types - Tariff and break table types
package types

import "github.com/shopspring/decimal"

// TariffRate is one published rate record on a tariff card, keyed by
// item code and independent of any single transaction line.
type TariffRate struct {
	// TariffID is the tariff card this rate belongs to
	TariffID string `json:"tariff_id"`

	// ItemCode identifies the charge item
	ItemCode string `json:"item_code"`

	// Method is how the rate is applied
	Method CalculationMethod `json:"calculation_method"`

	// Rate is the unit rate
	Rate decimal.Decimal `json:"rate"`

	// UnitType is the billing unit label (e.g. "kg", "cbm", "shipment")
	UnitType string `json:"unit_type"`

	// Currency is the tariff currency, authoritative over the line's
	// declared currency when they disagree
	Currency Currency `json:"currency"`

	// MinimumQuantity is the quantity below which MinimumCharge floors
	// the amount
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`

	// MinimumCharge is the charge floor applied on minimum-quantity breach
	MinimumCharge decimal.Decimal `json:"minimum_charge"`

	// MaximumCharge caps the amount when positive
	MaximumCharge decimal.Decimal `json:"maximum_charge"`

	// BaseAmount is a flat amount added by some rate cards
	BaseAmount decimal.Decimal `json:"base_amount"`

	// UOM is the unit of measure label
	UOM string `json:"uom"`
}

// BreakPoint is one threshold/rate pair within a break table. It belongs
// to exactly one rate line and one side of it.
type BreakPoint struct {
	// LineRef is the persisted identifier of the owning rate line.
	// Break points cannot be attached to a transient line.
	LineRef string `json:"line_ref"`

	// Type is the side of the line the point belongs to
	Type Side `json:"type"`

	// RateType classifies the point (Normal, Minimum, Weight/Qty Break)
	RateType RateType `json:"rate_type"`

	// Breakpoint is the weight or quantity threshold
	Breakpoint decimal.Decimal `json:"breakpoint"`

	// UnitRate is the rate applied when this tier is selected
	UnitRate decimal.Decimal `json:"unit_rate"`

	// Currency is set for quantity-break tiers
	Currency Currency `json:"currency,omitempty"`
}
