// Package rating implements the charge calculation engine: method
// dispatch, break tier selection, clamping and revenue composition.
// Everything in this package is a pure function over its inputs.
package rating

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"freight-rating/core/breaks"
	"freight-rating/core/types"
	"freight-rating/internal/errors"
)

var hundred = decimal.NewFromInt(100)

// SourceKind tags the data source feeding one side's amount
type SourceKind int

const (
	// SourceManual computes from the line's manual fields
	SourceManual SourceKind = iota

	// SourceTariff computes from a resolved tariff rate
	SourceTariff

	// SourceBreakTable computes from a resolved break table
	SourceBreakTable
)

// Source is the single data source for one side of a rate line.
// Exactly one variant is populated per kind, so the engine can never
// read manual fields and tariff fields for the same side at once.
type Source struct {
	// Kind selects the variant
	Kind SourceKind

	// Manual is set for SourceManual
	Manual *ManualInput

	// Rate is the selected tariff record for SourceTariff.
	// nil means the resolution missed.
	Rate *types.TariffRate

	// TariffID is the tariff reference that was resolved
	TariffID string

	// Table is the resolved break table for SourceBreakTable.
	// nil means no break points were found.
	Table *breaks.Table

	// Quantity is the observed quantity for the tariff and break paths
	Quantity decimal.Decimal

	// ChargeableValue is the percentage-calculation base
	ChargeableValue decimal.Decimal

	// Currency is the line's declared currency for this side, used for
	// mismatch warnings and as the fallback result currency
	Currency types.Currency
}

// ManualInput carries the manual-path fields for one side
type ManualInput struct {
	Method          types.CalculationMethod
	Quantity        decimal.Decimal
	UnitRate        decimal.Decimal
	ChargeableValue decimal.Decimal
	MinimumQuantity decimal.Decimal
	MinimumCharge   decimal.Decimal
	MaximumCharge   decimal.Decimal
	BaseOverride    decimal.Decimal
	Currency        types.Currency
}

// Outcome is one side's computed base amount with its audit note.
// The amount is post-clamp and unrounded; rounding happens once at the
// final output fields.
type Outcome struct {
	Amount   decimal.Decimal
	Currency types.Currency
	Note     string
}

// methodAmount computes the raw base amount for one calculation method
type methodAmount func(in ManualInput) (decimal.Decimal, string)

// dispatch is the strategy table over the closed method enumeration.
// Unknown methods never reach it; validation rejects them first.
var dispatch = map[types.CalculationMethod]methodAmount{
	types.MethodPerKg:       perUnitAmount,
	types.MethodPerCBM:      perUnitAmount,
	types.MethodPerPackage:  perUnitAmount,
	types.MethodPerShipment: flatAmount,
	types.MethodFixed:       flatAmount,
	types.MethodPercentage:  percentageAmount,
}

func perUnitAmount(in ManualInput) (decimal.Decimal, string) {
	amount := in.UnitRate.Mul(in.Quantity)
	note := fmt.Sprintf("%s: %s x %s = %s", in.Method, in.Quantity, in.UnitRate, amount)
	return amount, note
}

func flatAmount(in ManualInput) (decimal.Decimal, string) {
	return in.UnitRate, fmt.Sprintf("%s: flat %s", in.Method, in.UnitRate)
}

func percentageAmount(in ManualInput) (decimal.Decimal, string) {
	if in.ChargeableValue.IsZero() {
		return decimal.Zero, "Percentage: no chargeable value, amount is 0"
	}
	amount := in.UnitRate.Mul(in.ChargeableValue).Div(hundred)
	note := fmt.Sprintf("Percentage: %s%% of %s = %s", in.UnitRate, in.ChargeableValue, amount)
	return amount, note
}

// Validate rejects invalid manual inputs before any math runs
func (in ManualInput) Validate() error {
	if _, err := types.ParseCalculationMethod(string(in.Method)); err != nil {
		return errors.Input(err.Error())
	}
	if in.Quantity.IsNegative() {
		return errors.Inputf("negative quantity: %s", in.Quantity)
	}
	if in.MaximumCharge.IsPositive() && in.MaximumCharge.LessThan(in.MinimumCharge) {
		return errors.Inputf("maximum charge %s below minimum charge %s",
			in.MaximumCharge, in.MinimumCharge)
	}
	return nil
}

// Compute maps one side's data source to its base amount and note.
// Resolution misses degrade to a zero amount with an explanatory note;
// only invalid input returns an error.
func Compute(src Source) (Outcome, error) {
	switch src.Kind {
	case SourceManual:
		if src.Manual == nil {
			return Outcome{}, errors.Internal("manual source without fields", nil)
		}
		return computeManual(*src.Manual)
	case SourceTariff:
		return computeTariff(src)
	case SourceBreakTable:
		return computeBreaks(src)
	}
	return Outcome{}, errors.Internal(fmt.Sprintf("unknown source kind %d", src.Kind), nil)
}

func computeManual(in ManualInput) (Outcome, error) {
	if err := in.Validate(); err != nil {
		return Outcome{}, err
	}

	// An explicit base amount wins over the computed amount entirely,
	// clamps included.
	if in.BaseOverride.IsPositive() {
		return Outcome{
			Amount:   in.BaseOverride,
			Currency: in.Currency,
			Note:     fmt.Sprintf("base amount override: %s", in.BaseOverride),
		}, nil
	}

	amount, note := dispatch[in.Method](in)
	amount, clampNotes := applyClamps(amount, in.Quantity, in.MinimumQuantity, in.MinimumCharge, in.MaximumCharge)
	if len(clampNotes) > 0 {
		note += "; " + strings.Join(clampNotes, "; ")
	}

	return Outcome{Amount: amount, Currency: in.Currency, Note: note}, nil
}

func computeTariff(src Source) (Outcome, error) {
	if src.Rate == nil {
		return Outcome{
			Amount:   decimal.Zero,
			Currency: src.Currency,
			Note:     "no matching tariff found",
		}, nil
	}

	rate := src.Rate
	// The resolved record drives the same dispatch as the manual path,
	// with its own method, rate and clamps.
	out, err := computeManual(ManualInput{
		Method:          rate.Method,
		Quantity:        src.Quantity,
		UnitRate:        rate.Rate,
		ChargeableValue: src.ChargeableValue,
		MinimumQuantity: rate.MinimumQuantity,
		MinimumCharge:   rate.MinimumCharge,
		MaximumCharge:   rate.MaximumCharge,
		BaseOverride:    rate.BaseAmount,
		Currency:        rate.Currency,
	})
	if err != nil {
		return Outcome{}, err
	}

	out.Note = fmt.Sprintf("tariff %s/%s: %s", rate.TariffID, rate.ItemCode, out.Note)
	if out.Currency == "" {
		out.Currency = src.Currency
	}

	// The engine does not convert currencies; the tariff currency is
	// authoritative and a mismatch is only warned about.
	if src.Currency != "" && rate.Currency != "" && src.Currency != rate.Currency {
		out.Note += fmt.Sprintf("; warning: line currency %s differs from tariff currency %s, tariff currency used",
			src.Currency, rate.Currency)
	}
	return out, nil
}

func computeBreaks(src Source) (Outcome, error) {
	if src.Table == nil {
		return Outcome{
			Amount:   decimal.Zero,
			Currency: src.Currency,
			Note:     "no break points found",
		}, nil
	}
	if src.Quantity.IsNegative() {
		return Outcome{}, errors.Inputf("negative quantity: %s", src.Quantity)
	}

	table := src.Table
	amount := decimal.Zero
	note := "no break tiers"
	if tier, ok := SelectTier(table.Tiers, src.Quantity); ok {
		amount, note = tableAmount(table, tier, src.Quantity)
	}

	if table.Minimum != nil && amount.LessThan(table.Minimum.UnitRate) {
		amount = table.Minimum.UnitRate
		note += fmt.Sprintf("; minimum tier %s applied", table.Minimum.UnitRate)
	}

	currency := table.Currency()
	if currency == "" {
		currency = src.Currency
	}
	return Outcome{Amount: amount, Currency: currency, Note: note}, nil
}

// applyClamps enforces the quantity/charge clamps after base-amount
// computation. The minimum-charge floor fires only when a minimum
// quantity is set and breached; the maximum-charge cap fires whenever
// it is positive.
func applyClamps(amount, qty, minQty, minCharge, maxCharge decimal.Decimal) (decimal.Decimal, []string) {
	var notes []string

	if minQty.IsPositive() && qty.LessThan(minQty) && amount.LessThan(minCharge) {
		notes = append(notes, fmt.Sprintf("minimum charge %s applied (quantity %s below minimum %s)",
			minCharge, qty, minQty))
		amount = minCharge
	}

	if maxCharge.IsPositive() && amount.GreaterThan(maxCharge) {
		notes = append(notes, fmt.Sprintf("capped at maximum charge %s", maxCharge))
		amount = maxCharge
	}

	return amount, notes
}
