// Package types - Rate line input/output records
package types

import "github.com/shopspring/decimal"

// SideFields carries the manual inputs, clamps and data-source flag for
// one side of a rate line. The revenue and cost halves are fully
// independent of each other.
type SideFields struct {
	// UseTariff routes this side's amount through the tariff resolver
	// instead of the manual fields
	UseTariff bool `json:"use_tariff"`

	// Method is the manual calculation method
	Method CalculationMethod `json:"calculation_method"`

	// Quantity is the observed quantity (weight, volume or count)
	Quantity decimal.Decimal `json:"quantity"`

	// UnitRate is the manual unit rate
	UnitRate decimal.Decimal `json:"unit_rate"`

	// UnitType is the billing unit label
	UnitType string `json:"unit_type"`

	// UOM is the unit of measure label
	UOM string `json:"uom"`

	// Currency is the declared currency for this side
	Currency Currency `json:"currency"`

	// MinimumQuantity is the quantity below which MinimumCharge floors
	// the amount
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`

	// MinimumCharge is the charge floor on minimum-quantity breach
	MinimumCharge decimal.Decimal `json:"minimum_charge"`

	// MaximumCharge caps the amount when positive
	MaximumCharge decimal.Decimal `json:"maximum_charge"`

	// BaseAmount, when positive on the manual path, overrides the
	// computed amount entirely
	BaseAmount decimal.Decimal `json:"base_amount"`
}

// RateLineInput is one chargeable entry on a quote, shipment or job,
// as supplied by the editing surface.
type RateLineInput struct {
	// LineID is the persisted line identifier. Empty for transient
	// lines, which therefore cannot carry break tables.
	LineID string `json:"line_id"`

	// ItemCode identifies the charge item
	ItemCode string `json:"item_code"`

	// ItemName is the display name of the charge item
	ItemName string `json:"item_name,omitempty"`

	// Tariff references the tariff card shared by both sides
	Tariff string `json:"tariff,omitempty"`

	// ChargeableWeight is the greater of actual and volumetric weight,
	// used as the percentage-calculation base when present
	ChargeableWeight *decimal.Decimal `json:"chargeable_weight,omitempty"`

	// Weight is the actual weight, the percentage fallback base
	Weight *decimal.Decimal `json:"weight,omitempty"`

	// Revenue carries the selling-side inputs
	Revenue SideFields `json:"revenue"`

	// Cost carries the cost-side inputs
	Cost SideFields `json:"cost"`

	// DiscountPercentage applies to the revenue side only
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`

	// SurchargeAmount applies to the revenue side only
	SurchargeAmount decimal.Decimal `json:"surcharge_amount"`

	// TaxAmount applies to the revenue side only
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// ChargeableValue returns the percentage-calculation base: chargeable
// weight if present, else weight, else zero.
func (in *RateLineInput) ChargeableValue() decimal.Decimal {
	if in.ChargeableWeight != nil {
		return *in.ChargeableWeight
	}
	if in.Weight != nil {
		return *in.Weight
	}
	return decimal.Zero
}

// RateLineResult carries the computed output fields for one rate line
type RateLineResult struct {
	// LineID echoes the input line identifier
	LineID string `json:"line_id"`

	// BaseAmount is the revenue-side base before discount/surcharge/tax
	BaseAmount decimal.Decimal `json:"base_amount"`

	// DiscountAmount is BaseAmount x DiscountPercentage / 100
	DiscountAmount decimal.Decimal `json:"discount_amount"`

	// TotalAmount is the final revenue total, never negative
	TotalAmount decimal.Decimal `json:"total_amount"`

	// EstimatedRevenue is the revenue-side base amount post-clamp
	EstimatedRevenue decimal.Decimal `json:"estimated_revenue"`

	// EstimatedCost is the cost-side base amount post-clamp; no
	// discount/surcharge/tax composition exists on the cost side
	EstimatedCost decimal.Decimal `json:"estimated_cost"`

	// RevenueCurrency is the currency the revenue amount is expressed in
	RevenueCurrency Currency `json:"revenue_currency,omitempty"`

	// CostCurrency is the currency the cost amount is expressed in
	CostCurrency Currency `json:"cost_currency,omitempty"`

	// RevenueCalcNotes explains which rule fired on the revenue side
	RevenueCalcNotes string `json:"revenue_calc_notes"`

	// CostCalcNotes explains which rule fired on the cost side
	CostCalcNotes string `json:"cost_calc_notes"`

	// Quantity is set when quantity itself was recomputed upstream and
	// passed through (package aggregation is an external concern)
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
}
