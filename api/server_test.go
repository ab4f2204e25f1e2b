package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"freight-rating/core/breaks"
	"freight-rating/core/orchestrator"
	"freight-rating/core/tariff"
	"freight-rating/core/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testServer() *Server {
	store := tariff.NewMemoryStore()
	store.Add(types.TariffRate{
		TariffID: "AIR-EXPORT-2024",
		ItemCode: "FREIGHT",
		Method:   types.MethodPerKg,
		Rate:     dec("4"),
		Currency: types.CurrencyUSD,
	})

	orch := orchestrator.New(tariff.NewService(store, nil), breaks.NewMemorySource(), 2)
	return NewServer("test", orch, store)
}

func postJSON(t *testing.T, s *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHandleRateLine(t *testing.T) {
	s := testServer()

	rec := postJSON(t, s, "/rate", RateLineRequest{
		LineID:             "line-1",
		ItemCode:           "FREIGHT",
		CalculationMethod:  "Per kg",
		Quantity:           100,
		UnitRate:           2.5,
		Currency:           "USD",
		CostQuantity:       100,
		UnitCost:           1.8,
		CostCurrency:       "USD",
		DiscountPercentage: 10,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RateLineResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	if !resp.EstimatedRevenue.Equal(dec("250")) {
		t.Errorf("expected revenue 250, got %s", resp.EstimatedRevenue)
	}
	if !resp.DiscountAmount.Equal(dec("25")) {
		t.Errorf("expected discount 25, got %s", resp.DiscountAmount)
	}
	if !resp.TotalAmount.Equal(dec("225")) {
		t.Errorf("expected total 225, got %s", resp.TotalAmount)
	}
	if !resp.EstimatedCost.Equal(dec("180")) {
		t.Errorf("expected cost 180, got %s", resp.EstimatedCost)
	}
	if resp.Metadata == nil || resp.Metadata.RequestID == "" || resp.Metadata.InputHash == "" {
		t.Errorf("expected populated metadata, got %+v", resp.Metadata)
	}
}

func TestHandleRateLineTariff(t *testing.T) {
	s := testServer()

	rec := postJSON(t, s, "/rate", RateLineRequest{
		LineID:             "line-1",
		ItemCode:           "FREIGHT",
		CalculationMethod:  "Per kg",
		Quantity:           100,
		Currency:           "USD",
		CostQuantity:       100,
		UnitCost:           1,
		CostCurrency:       "USD",
		UseTariffInRevenue: true,
		Tariff:             "AIR-EXPORT-2024",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp RateLineResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.EstimatedRevenue.Equal(dec("400")) {
		t.Errorf("expected tariff revenue 400, got %s", resp.EstimatedRevenue)
	}
}

func TestHandleRateLineValidation(t *testing.T) {
	s := testServer()

	t.Run("unknown method is 400", func(t *testing.T) {
		rec := postJSON(t, s, "/rate", RateLineRequest{
			CalculationMethod: "Per furlong",
			Quantity:          1,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("negative quantity is 400", func(t *testing.T) {
		rec := postJSON(t, s, "/rate", RateLineRequest{
			CalculationMethod: "Per kg",
			Quantity:          -5,
			UnitRate:          2,
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed JSON is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/rate", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestHandleRateDocument(t *testing.T) {
	s := testServer()

	good := RateLineRequest{
		LineID:            "line-1",
		ItemCode:          "FREIGHT",
		CalculationMethod: "Per kg",
		Quantity:          100,
		UnitRate:          2.5,
		Currency:          "USD",
		CostQuantity:      100,
		UnitCost:          1.8,
		CostCurrency:      "USD",
	}
	bad := good
	bad.LineID = "line-2"
	bad.CalculationMethod = "Per furlong"
	second := good
	second.LineID = "line-3"
	second.UnitRate = 1

	rec := postJSON(t, s, "/rate/document", DocumentRequest{
		Lines: []RateLineRequest{good, bad, second},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Lines) != 3 {
		t.Fatalf("expected 3 line outcomes, got %d", len(resp.Lines))
	}

	if resp.Lines[0].Result == nil || !resp.Lines[0].Result.TotalAmount.Equal(dec("250")) {
		t.Errorf("unexpected first line: %+v", resp.Lines[0])
	}
	if resp.Lines[1].Error == "" || resp.Lines[1].Result != nil {
		t.Errorf("the invalid line must carry an error only, got %+v", resp.Lines[1])
	}
	if resp.Lines[2].Result == nil || !resp.Lines[2].Result.TotalAmount.Equal(dec("100")) {
		t.Errorf("unexpected third line: %+v", resp.Lines[2])
	}

	if resp.Summary.Lines != 2 {
		t.Errorf("expected 2 settled lines in the summary, got %d", resp.Summary.Lines)
	}
	if !resp.Summary.RevenueTotals[types.CurrencyUSD].Equal(dec("350")) {
		t.Errorf("expected USD revenue 350, got %s", resp.Summary.RevenueTotals[types.CurrencyUSD])
	}
}

func TestHandleTariff(t *testing.T) {
	s := testServer()

	t.Run("known tariff lists its rates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tariffs/AIR-EXPORT-2024", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp TariffResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if len(resp.Rates) != 1 || resp.Rates[0].ItemCode != "FREIGHT" {
			t.Errorf("unexpected rates: %+v", resp.Rates)
		}
	})

	t.Run("unknown tariff is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tariffs/NOPE", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestHandleHealth(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
