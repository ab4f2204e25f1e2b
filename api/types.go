// Package api - Request/response types
// Field names follow the rate line contract of the consuming document
// editors; the mapper translates them into core types.
package api

import (
	"github.com/shopspring/decimal"

	"freight-rating/core/orchestrator"
	"freight-rating/core/types"
)

// RateLineRequest is one chargeable line as posted by an editor.
// Revenue-side and cost-side fields are fully independent.
type RateLineRequest struct {
	LineID   string `json:"line_id"`
	ItemCode string `json:"item_code"`
	ItemName string `json:"item_name,omitempty"`

	CalculationMethod string `json:"calculation_method"`

	// Revenue-side manual inputs
	Quantity float64 `json:"quantity"`
	UnitRate float64 `json:"unit_rate"`
	UnitType string  `json:"unit_type,omitempty"`
	UOM      string  `json:"uom,omitempty"`
	Currency string  `json:"currency,omitempty"`

	// Cost-side manual inputs
	CostQuantity float64 `json:"cost_quantity"`
	UnitCost     float64 `json:"unit_cost"`
	CostUnitType string  `json:"cost_unit_type,omitempty"`
	CostUOM      string  `json:"cost_uom,omitempty"`
	CostCurrency string  `json:"cost_currency,omitempty"`

	// Revenue-side clamps and override
	MinimumQuantity float64 `json:"minimum_quantity"`
	MinimumCharge   float64 `json:"minimum_charge"`
	MaximumCharge   float64 `json:"maximum_charge"`
	BaseAmount      float64 `json:"base_amount"`

	// Cost-side clamps and override
	CostMinimumQuantity float64 `json:"cost_minimum_quantity"`
	CostMinimumCharge   float64 `json:"cost_minimum_charge"`
	CostMaximumCharge   float64 `json:"cost_maximum_charge"`
	CostBaseAmount      float64 `json:"cost_base_amount"`

	// Revenue-side adjustments
	DiscountPercentage float64 `json:"discount_percentage"`
	SurchargeAmount    float64 `json:"surcharge_amount"`
	TaxAmount          float64 `json:"tax_amount"`

	// Data-source flags and shared tariff reference
	UseTariffInRevenue bool   `json:"use_tariff_in_revenue"`
	UseTariffInCost    bool   `json:"use_tariff_in_cost"`
	Tariff             string `json:"tariff,omitempty"`

	// Percentage-calculation bases
	ChargeableWeight *float64 `json:"chargeable_weight,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
}

// RateLineResponse carries the computed fields for one line
type RateLineResponse struct {
	LineID           string            `json:"line_id"`
	BaseAmount       decimal.Decimal   `json:"base_amount"`
	DiscountAmount   decimal.Decimal   `json:"discount_amount"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	EstimatedRevenue decimal.Decimal   `json:"estimated_revenue"`
	EstimatedCost    decimal.Decimal   `json:"estimated_cost"`
	RevenueCurrency  string            `json:"revenue_currency,omitempty"`
	CostCurrency     string            `json:"cost_currency,omitempty"`
	RevenueCalcNotes string            `json:"revenue_calc_notes"`
	CostCalcNotes    string            `json:"cost_calc_notes"`
	Metadata         *ResponseMetadata `json:"metadata,omitempty"`
}

// ResponseMetadata describes how a response was produced
type ResponseMetadata struct {
	RequestID     string `json:"request_id"`
	InputHash     string `json:"input_hash"`
	EngineVersion string `json:"engine_version"`
	DurationMs    int64  `json:"duration_ms"`
}

// DocumentRequest recalculates every line of one document
type DocumentRequest struct {
	Lines []RateLineRequest `json:"lines"`
}

// DocumentLineResult is one line's outcome within a document response.
// A failed line carries its error and no result; siblings are computed
// regardless.
type DocumentLineResult struct {
	LineID string            `json:"line_id"`
	Result *RateLineResponse `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// DocumentResponse carries per-line outcomes and the snapshot summary
type DocumentResponse struct {
	Lines    []DocumentLineResult         `json:"lines"`
	Summary  orchestrator.DocumentSummary `json:"summary"`
	Metadata *ResponseMetadata            `json:"metadata,omitempty"`
}

// TariffResponse lists the rates of one tariff card
type TariffResponse struct {
	TariffID string             `json:"tariff_id"`
	Rates    []types.TariffRate `json:"rates"`
}
