// Package api - Request mapping
// ToLineInput is the only place the flat editor contract meets the core
// types; it also rejects unknown calculation methods up front instead
// of letting them no-op downstream.
package api

import (
	"github.com/shopspring/decimal"

	"freight-rating/core/types"
	"freight-rating/internal/errors"
)

// ToLineInput maps one editor request into the core input record
func ToLineInput(req *RateLineRequest) (types.RateLineInput, error) {
	var method types.CalculationMethod
	// The manual method matters only when a side actually reads manual
	// fields; tariff-driven sides carry the tariff record's own method.
	if !req.UseTariffInRevenue || !req.UseTariffInCost {
		parsed, err := types.ParseCalculationMethod(req.CalculationMethod)
		if err != nil {
			return types.RateLineInput{}, errors.Input(err.Error())
		}
		method = parsed
	}

	in := types.RateLineInput{
		LineID:   req.LineID,
		ItemCode: req.ItemCode,
		ItemName: req.ItemName,
		Tariff:   req.Tariff,
		Revenue: types.SideFields{
			UseTariff:       req.UseTariffInRevenue,
			Method:          method,
			Quantity:        decimal.NewFromFloat(req.Quantity),
			UnitRate:        decimal.NewFromFloat(req.UnitRate),
			UnitType:        req.UnitType,
			UOM:             req.UOM,
			Currency:        types.Currency(req.Currency),
			MinimumQuantity: decimal.NewFromFloat(req.MinimumQuantity),
			MinimumCharge:   decimal.NewFromFloat(req.MinimumCharge),
			MaximumCharge:   decimal.NewFromFloat(req.MaximumCharge),
			BaseAmount:      decimal.NewFromFloat(req.BaseAmount),
		},
		Cost: types.SideFields{
			UseTariff:       req.UseTariffInCost,
			Method:          method,
			Quantity:        decimal.NewFromFloat(req.CostQuantity),
			UnitRate:        decimal.NewFromFloat(req.UnitCost),
			UnitType:        req.CostUnitType,
			UOM:             req.CostUOM,
			Currency:        types.Currency(req.CostCurrency),
			MinimumQuantity: decimal.NewFromFloat(req.CostMinimumQuantity),
			MinimumCharge:   decimal.NewFromFloat(req.CostMinimumCharge),
			MaximumCharge:   decimal.NewFromFloat(req.CostMaximumCharge),
			BaseAmount:      decimal.NewFromFloat(req.CostBaseAmount),
		},
		DiscountPercentage: decimal.NewFromFloat(req.DiscountPercentage),
		SurchargeAmount:    decimal.NewFromFloat(req.SurchargeAmount),
		TaxAmount:          decimal.NewFromFloat(req.TaxAmount),
	}

	if req.ChargeableWeight != nil {
		d := decimal.NewFromFloat(*req.ChargeableWeight)
		in.ChargeableWeight = &d
	}
	if req.Weight != nil {
		d := decimal.NewFromFloat(*req.Weight)
		in.Weight = &d
	}

	return in, nil
}

// ToLineResponse maps a computed result back to the wire shape
func ToLineResponse(result *types.RateLineResult) *RateLineResponse {
	return &RateLineResponse{
		LineID:           result.LineID,
		BaseAmount:       result.BaseAmount,
		DiscountAmount:   result.DiscountAmount,
		TotalAmount:      result.TotalAmount,
		EstimatedRevenue: result.EstimatedRevenue,
		EstimatedCost:    result.EstimatedCost,
		RevenueCurrency:  result.RevenueCurrency.String(),
		CostCurrency:     result.CostCurrency.String(),
		RevenueCalcNotes: result.RevenueCalcNotes,
		CostCalcNotes:    result.CostCalcNotes,
	}
}
