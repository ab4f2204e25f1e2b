// Package orchestrator drives one rate line through resolution,
// calculation and composition. Each invocation is stateless; lines are
// independent of each other and safe to recompute in parallel.
package orchestrator

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freight-rating/core/breaks"
	"freight-rating/core/rating"
	"freight-rating/core/tariff"
	"freight-rating/core/types"
	"freight-rating/internal/logging"
)

// Orchestrator resolves data sources and invokes the rating engine
// once per side of a line
type Orchestrator struct {
	tariffs  *tariff.Service
	breaks   breaks.Source
	rounding int32
	logger   *zap.Logger
}

// New creates an orchestrator. breakSource may be nil when no break
// tables exist in the deployment.
func New(tariffs *tariff.Service, breakSource breaks.Source, rounding int32) *Orchestrator {
	return &Orchestrator{
		tariffs:  tariffs,
		breaks:   breakSource,
		rounding: rounding,
		logger:   logging.Named("orchestrator"),
	}
}

// ComputeLine computes both sides of a rate line and composes the
// revenue total. Resolution misses degrade to zero amounts with notes;
// an error is returned only for invalid input on this line, leaving
// sibling lines unaffected and any previous result for this line
// intact at the caller.
func (o *Orchestrator) ComputeLine(ctx context.Context, in types.RateLineInput) (*types.RateLineResult, error) {
	revSrc, err := o.sourceFor(ctx, &in, types.SideSelling, in.Revenue)
	if err != nil {
		return nil, err
	}
	costSrc, err := o.sourceFor(ctx, &in, types.SideCost, in.Cost)
	if err != nil {
		return nil, err
	}

	revenue, err := rating.Compute(revSrc)
	if err != nil {
		return nil, err
	}
	cost, err := rating.Compute(costSrc)
	if err != nil {
		return nil, err
	}

	comp := rating.Compose(revenue.Amount, in.DiscountPercentage, in.SurchargeAmount, in.TaxAmount, o.rounding)

	result := &types.RateLineResult{
		LineID:           in.LineID,
		BaseAmount:       comp.BaseAmount,
		DiscountAmount:   comp.DiscountAmount,
		TotalAmount:      comp.TotalAmount,
		EstimatedRevenue: revenue.Amount.Round(o.rounding),
		EstimatedCost:    cost.Amount.Round(o.rounding),
		RevenueCurrency:  revenue.Currency,
		CostCurrency:     cost.Currency,
		RevenueCalcNotes: revenue.Note,
		CostCalcNotes:    cost.Note,
	}

	o.logger.Debug("line computed",
		zap.String("line_id", in.LineID),
		zap.String("item_code", in.ItemCode),
		zap.String("total_amount", result.TotalAmount.String()),
		zap.String("estimated_cost", result.EstimatedCost.String()))
	return result, nil
}

// sourceFor picks the single data source for one side: the tariff flag
// wins, then a persisted break table, then the manual fields.
func (o *Orchestrator) sourceFor(ctx context.Context, in *types.RateLineInput, side types.Side, fields types.SideFields) (rating.Source, error) {
	if fields.UseTariff {
		rate, err := o.tariffs.Pick(ctx, in.Tariff, in.ItemCode)
		if err != nil {
			// Lookup failures degrade to a miss; only input errors
			// are fatal for a line.
			o.logger.Warn("tariff lookup failed",
				zap.String("tariff", in.Tariff),
				zap.String("item_code", in.ItemCode),
				zap.Error(err))
			rate = nil
		}
		return rating.Source{
			Kind:            rating.SourceTariff,
			Rate:            rate,
			TariffID:        in.Tariff,
			Quantity:        fields.Quantity,
			ChargeableValue: in.ChargeableValue(),
			Currency:        fields.Currency,
		}, nil
	}

	// Break tables attach to persisted lines only
	if o.breaks != nil && in.LineID != "" {
		table, err := o.breaks.Table(ctx, in.LineID, side)
		if err != nil {
			// Inconsistent break point data is invalid input,
			// rejected before the engine runs.
			return rating.Source{}, err
		}
		if table != nil {
			return rating.Source{
				Kind:            rating.SourceBreakTable,
				Table:           table,
				Quantity:        fields.Quantity,
				ChargeableValue: in.ChargeableValue(),
				Currency:        fields.Currency,
			}, nil
		}
	}

	return rating.Source{
		Kind: rating.SourceManual,
		Manual: &rating.ManualInput{
			Method:          fields.Method,
			Quantity:        fields.Quantity,
			UnitRate:        fields.UnitRate,
			ChargeableValue: in.ChargeableValue(),
			MinimumQuantity: fields.MinimumQuantity,
			MinimumCharge:   fields.MinimumCharge,
			MaximumCharge:   fields.MaximumCharge,
			BaseOverride:    fields.BaseAmount,
			Currency:        fields.Currency,
		},
	}, nil
}

// LineOutcome pairs one line's result with its per-line error
type LineOutcome struct {
	Result *types.RateLineResult
	Err    error
}

// ComputeDocument recomputes every line of a document concurrently.
// Lines never block each other and one line's failure never aborts its
// siblings. The returned slice is index-aligned with the input.
func (o *Orchestrator) ComputeDocument(ctx context.Context, lines []types.RateLineInput) []LineOutcome {
	outcomes := make([]LineOutcome, len(lines))

	var wg sync.WaitGroup
	for i, line := range lines {
		wg.Add(1)
		go func(i int, line types.RateLineInput) {
			defer wg.Done()
			result, err := o.ComputeLine(ctx, line)
			outcomes[i] = LineOutcome{Result: result, Err: err}
		}(i, line)
	}
	wg.Wait()

	return outcomes
}

// DocumentSummary is the consolidation view over settled lines: sums of
// already-computed totals, grouped by currency since currencies are
// opaque tags that cannot be converted or mixed.
type DocumentSummary struct {
	// Lines is the number of successfully computed lines
	Lines int `json:"lines"`

	// RevenueTotals sums total_amount per revenue currency
	RevenueTotals map[types.Currency]decimal.Decimal `json:"revenue_totals"`

	// CostTotals sums estimated_cost per cost currency
	CostTotals map[types.Currency]decimal.Decimal `json:"cost_totals"`
}

// Summarize reads a snapshot of computed line results and sums their
// totals. It never recomputes rating logic.
func Summarize(results []*types.RateLineResult) DocumentSummary {
	summary := DocumentSummary{
		RevenueTotals: make(map[types.Currency]decimal.Decimal),
		CostTotals:    make(map[types.Currency]decimal.Decimal),
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		summary.Lines++
		summary.RevenueTotals[r.RevenueCurrency] = summary.RevenueTotals[r.RevenueCurrency].Add(r.TotalAmount)
		summary.CostTotals[r.CostCurrency] = summary.CostTotals[r.CostCurrency].Add(r.EstimatedCost)
	}
	return summary
}
