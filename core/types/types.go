// Package types defines core rating domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import "fmt"

// Currency represents a currency code.
// The rating engine never converts between currencies; a currency is an
// opaque tag compared for equality only.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// Side identifies which half of a rate line an amount belongs to
type Side string

const (
	// SideSelling is the revenue half billed to the customer
	SideSelling Side = "Selling"

	// SideCost is the cost half paid to a supplier or carrier
	SideCost Side = "Cost"
)

// String returns the string representation
func (s Side) String() string {
	return string(s)
}

// ParseSide validates a side tag
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideSelling, SideCost:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown side: %q", s)
}

// CalculationMethod is the closed set of charge calculation methods.
// Unknown values are rejected at input validation, never silently ignored.
type CalculationMethod string

const (
	// MethodPerKg charges unit rate per kilogram
	MethodPerKg CalculationMethod = "Per kg"

	// MethodPerCBM charges unit rate per cubic meter
	MethodPerCBM CalculationMethod = "Per m3"

	// MethodPerPackage charges unit rate per package
	MethodPerPackage CalculationMethod = "Per package"

	// MethodPerShipment charges the unit rate once, quantity ignored
	MethodPerShipment CalculationMethod = "Per Shipment"

	// MethodFixed is an alias of MethodPerShipment kept for rate cards
	// that spell it out
	MethodFixed CalculationMethod = "Fixed amount"

	// MethodPercentage charges unit rate percent of the chargeable value
	MethodPercentage CalculationMethod = "Percentage"
)

// ParseCalculationMethod validates a method tag against the closed set
func ParseCalculationMethod(s string) (CalculationMethod, error) {
	switch CalculationMethod(s) {
	case MethodPerKg, MethodPerCBM, MethodPerPackage,
		MethodPerShipment, MethodFixed, MethodPercentage:
		return CalculationMethod(s), nil
	}
	return "", fmt.Errorf("unknown calculation method: %q", s)
}

// IsPerUnit reports whether the method multiplies unit rate by quantity
func (m CalculationMethod) IsPerUnit() bool {
	switch m {
	case MethodPerKg, MethodPerCBM, MethodPerPackage:
		return true
	}
	return false
}

// IsFlat reports whether the method charges the unit rate once per shipment
func (m CalculationMethod) IsFlat() bool {
	return m == MethodPerShipment || m == MethodFixed
}

// String returns the string representation
func (m CalculationMethod) String() string {
	return string(m)
}

// RateType classifies a break point within a break table
type RateType string

const (
	// RateTypeNormal is a plain tier entry
	RateTypeNormal RateType = "Normal"

	// RateTypeMinimum defines a charge floor compared against the
	// tier-selected amount
	RateTypeMinimum RateType = "Minimum"

	// RateTypeWeightBreak is a weight-threshold tier
	RateTypeWeightBreak RateType = "Weight Break"

	// RateTypeQtyBreak is a quantity-threshold tier
	RateTypeQtyBreak RateType = "Qty Break"
)

// RateBasis resolves how a selected break tier's unit rate is applied.
// Weight-break tables multiply by quantity; some quantity-break tables
// treat the tier rate as a flat per-shipment amount. The basis is
// configured per table rather than guessed globally.
type RateBasis string

const (
	// BasisPerUnit multiplies the selected tier rate by quantity
	BasisPerUnit RateBasis = "per_unit"

	// BasisPerShipment applies the selected tier rate once
	BasisPerShipment RateBasis = "per_shipment"
)
