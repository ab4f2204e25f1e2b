package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"freight-rating/core/breaks"
	"freight-rating/core/tariff"
	"freight-rating/core/types"
	"freight-rating/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testOrchestrator() (*Orchestrator, *tariff.MemoryStore, *breaks.MemorySource) {
	store := tariff.NewMemoryStore()
	store.Add(types.TariffRate{
		TariffID: "AIR-EXPORT-2024",
		ItemCode: "FREIGHT",
		Method:   types.MethodPerKg,
		Rate:     dec("4"),
		Currency: types.CurrencyUSD,
	})

	breakSource := breaks.NewMemorySource()
	orch := New(tariff.NewService(store, nil), breakSource, 2)
	return orch, store, breakSource
}

func manualLine(lineID string) types.RateLineInput {
	return types.RateLineInput{
		LineID:   lineID,
		ItemCode: "FREIGHT",
		Revenue: types.SideFields{
			Method:   types.MethodPerKg,
			Quantity: dec("100"),
			UnitRate: dec("2.5"),
			Currency: types.CurrencyUSD,
		},
		Cost: types.SideFields{
			Method:   types.MethodPerKg,
			Quantity: dec("100"),
			UnitRate: dec("1.8"),
			Currency: types.CurrencyUSD,
		},
	}
}

func TestComputeLineManual(t *testing.T) {
	orch, _, _ := testOrchestrator()

	in := manualLine("")
	in.DiscountPercentage = dec("10")
	in.SurchargeAmount = dec("50")
	in.TaxAmount = dec("20")

	result, err := orch.ComputeLine(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.EstimatedRevenue.Equal(dec("250")) {
		t.Errorf("expected revenue 250, got %s", result.EstimatedRevenue)
	}
	if !result.EstimatedCost.Equal(dec("180")) {
		t.Errorf("expected cost 180, got %s", result.EstimatedCost)
	}
	if !result.DiscountAmount.Equal(dec("25")) {
		t.Errorf("expected discount 25, got %s", result.DiscountAmount)
	}
	// 250 - 25 + 50 + 20
	if !result.TotalAmount.Equal(dec("295")) {
		t.Errorf("expected total 295, got %s", result.TotalAmount)
	}
	if result.RevenueCurrency != types.CurrencyUSD || result.CostCurrency != types.CurrencyUSD {
		t.Errorf("unexpected currencies: %s / %s", result.RevenueCurrency, result.CostCurrency)
	}
}

// TestComputeLineSidesIndependent proves changing a cost field never
// moves the revenue outputs
func TestComputeLineSidesIndependent(t *testing.T) {
	orch, _, _ := testOrchestrator()
	ctx := context.Background()

	before, err := orch.ComputeLine(ctx, manualLine(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edited := manualLine("")
	edited.Cost.UnitRate = dec("9.99")
	edited.Cost.Quantity = dec("40")

	after, err := orch.ComputeLine(ctx, edited)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !after.EstimatedRevenue.Equal(before.EstimatedRevenue) ||
		!after.TotalAmount.Equal(before.TotalAmount) {
		t.Errorf("cost edit moved revenue: %s -> %s",
			before.EstimatedRevenue, after.EstimatedRevenue)
	}
	if after.EstimatedCost.Equal(before.EstimatedCost) {
		t.Error("cost edit did not move cost")
	}
}

func TestComputeLineTariffPath(t *testing.T) {
	orch, _, _ := testOrchestrator()

	in := manualLine("")
	in.Tariff = "AIR-EXPORT-2024"
	in.Revenue.UseTariff = true
	// Manual rate fields on a tariff-driven side are ignored
	in.Revenue.UnitRate = dec("999")

	result, err := orch.ComputeLine(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.EstimatedRevenue.Equal(dec("400")) {
		t.Errorf("expected tariff rate 4 x 100 = 400, got %s", result.EstimatedRevenue)
	}
	if !strings.Contains(result.RevenueCalcNotes, "tariff AIR-EXPORT-2024/FREIGHT") {
		t.Errorf("notes %q do not name the tariff", result.RevenueCalcNotes)
	}
	// The cost side stays manual
	if !result.EstimatedCost.Equal(dec("180")) {
		t.Errorf("expected manual cost 180, got %s", result.EstimatedCost)
	}
}

func TestComputeLineTariffMiss(t *testing.T) {
	orch, _, _ := testOrchestrator()

	in := manualLine("")
	in.Tariff = "SEA-IMPORT-2024"
	in.Revenue.UseTariff = true

	result, err := orch.ComputeLine(context.Background(), in)
	if err != nil {
		t.Fatalf("a resolution miss must not be an error, got %v", err)
	}
	if !result.EstimatedRevenue.IsZero() {
		t.Errorf("expected zero revenue on a miss, got %s", result.EstimatedRevenue)
	}
	if result.RevenueCalcNotes != "no matching tariff found" {
		t.Errorf("unexpected notes: %q", result.RevenueCalcNotes)
	}
}

func TestComputeLineBreakTablePath(t *testing.T) {
	orch, _, breakSource := testOrchestrator()

	breakSource.Save("line-7", types.SideSelling, types.BasisPerUnit, []types.BreakPoint{
		{RateType: types.RateTypeWeightBreak, Breakpoint: dec("0"), UnitRate: dec("10"), Currency: types.CurrencyUSD},
		{RateType: types.RateTypeWeightBreak, Breakpoint: dec("100"), UnitRate: dec("8"), Currency: types.CurrencyUSD},
		{RateType: types.RateTypeWeightBreak, Breakpoint: dec("500"), UnitRate: dec("6"), Currency: types.CurrencyUSD},
	})

	in := manualLine("line-7")
	in.Revenue.Quantity = dec("150")

	result, err := orch.ComputeLine(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.EstimatedRevenue.Equal(dec("1200")) {
		t.Errorf("expected break tier amount 1200, got %s", result.EstimatedRevenue)
	}
	if !strings.Contains(result.RevenueCalcNotes, "break tier 100") {
		t.Errorf("notes %q do not name the selected tier", result.RevenueCalcNotes)
	}
	// No cost-side table saved, so the cost side falls back to manual
	if !result.EstimatedCost.Equal(dec("180")) {
		t.Errorf("expected manual cost 180, got %s", result.EstimatedCost)
	}
}

func TestComputeLineTransientLineSkipsBreakTables(t *testing.T) {
	orch, _, breakSource := testOrchestrator()

	breakSource.Save("", types.SideSelling, types.BasisPerUnit, []types.BreakPoint{
		{RateType: types.RateTypeWeightBreak, Breakpoint: dec("0"), UnitRate: dec("99")},
	})

	result, err := orch.ComputeLine(context.Background(), manualLine(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.EstimatedRevenue.Equal(dec("250")) {
		t.Errorf("transient line must use manual fields, got %s", result.EstimatedRevenue)
	}
}

func TestComputeLineInvalidInput(t *testing.T) {
	orch, _, _ := testOrchestrator()

	in := manualLine("")
	in.Revenue.Method = types.CalculationMethod("Per lightyear")

	_, err := orch.ComputeLine(context.Background(), in)
	if err == nil {
		t.Fatal("expected an input error")
	}
	if !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected INPUT_ERROR, got %v", err)
	}
}

// TestComputeDocument proves sibling isolation: one bad line reports
// its own error while the rest settle normally
func TestComputeDocument(t *testing.T) {
	orch, _, _ := testOrchestrator()

	bad := manualLine("line-2")
	bad.Revenue.Quantity = dec("-1")

	lines := []types.RateLineInput{manualLine("line-1"), bad, manualLine("line-3")}
	outcomes := orch.ComputeDocument(context.Background(), lines)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Errorf("sibling lines must not fail: %v / %v", outcomes[0].Err, outcomes[2].Err)
	}
	if outcomes[1].Err == nil {
		t.Error("the invalid line must fail")
	}
	if outcomes[0].Result == nil || outcomes[0].Result.LineID != "line-1" {
		t.Errorf("outcomes must stay index-aligned, got %+v", outcomes[0].Result)
	}
}

func TestSummarize(t *testing.T) {
	results := []*types.RateLineResult{
		{TotalAmount: dec("100"), EstimatedCost: dec("60"), RevenueCurrency: types.CurrencyUSD, CostCurrency: types.CurrencyUSD},
		{TotalAmount: dec("250"), EstimatedCost: dec("90"), RevenueCurrency: types.CurrencyUSD, CostCurrency: types.CurrencyEUR},
		nil,
		{TotalAmount: dec("40"), EstimatedCost: dec("10"), RevenueCurrency: types.CurrencyEUR, CostCurrency: types.CurrencyEUR},
	}

	summary := Summarize(results)

	if summary.Lines != 3 {
		t.Errorf("expected 3 settled lines, got %d", summary.Lines)
	}
	if !summary.RevenueTotals[types.CurrencyUSD].Equal(dec("350")) {
		t.Errorf("expected USD revenue 350, got %s", summary.RevenueTotals[types.CurrencyUSD])
	}
	if !summary.RevenueTotals[types.CurrencyEUR].Equal(dec("40")) {
		t.Errorf("expected EUR revenue 40, got %s", summary.RevenueTotals[types.CurrencyEUR])
	}
	if !summary.CostTotals[types.CurrencyEUR].Equal(dec("100")) {
		t.Errorf("expected EUR cost 100, got %s", summary.CostTotals[types.CurrencyEUR])
	}
}
