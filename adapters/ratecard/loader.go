// Package ratecard loads tariff rate cards authored as HCL files.
// A card declares one or more tariffs, each with rate blocks keyed by
// item code:
//
//	tariff "AIR-EXPORT-2024" {
//	  currency = "USD"
//
//	  rate "FREIGHT" {
//	    method           = "Per kg"
//	    rate             = 2.5
//	    minimum_quantity = 45
//	    minimum_charge   = 120
//	  }
//	}
package ratecard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"freight-rating/core/types"
	"freight-rating/internal/errors"
)

// Extension is the rate card file suffix
const Extension = ".tariff.hcl"

var cardSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "tariff", LabelNames: []string{"id"}},
	},
}

var tariffSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "currency"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "rate", LabelNames: []string{"item_code"}},
	},
}

var rateSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "method", Required: true},
		{Name: "rate", Required: true},
		{Name: "unit_type"},
		{Name: "uom"},
		{Name: "currency"},
		{Name: "minimum_quantity"},
		{Name: "minimum_charge"},
		{Name: "maximum_charge"},
		{Name: "base_amount"},
	},
}

// Loader parses rate card files
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a loader
func NewLoader() *Loader {
	return &Loader{
		parser: hclparse.NewParser(),
	}
}

// LoadDir loads every rate card under dir. A missing directory yields
// no rates and no error so deployments without file-backed tariffs
// work unconfigured.
func (l *Loader) LoadDir(dir string) ([]types.TariffRate, error) {
	var rates []types.TariffRate

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, Extension) {
			return nil
		}
		fileRates, err := l.LoadFile(path)
		if err != nil {
			return err
		}
		rates = append(rates, fileRates...)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	return rates, nil
}

// LoadFile loads one rate card file
func (l *Loader) LoadFile(path string) ([]types.TariffRate, error) {
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.TypeRateCard, fmt.Sprintf("parse %s", path), diags)
	}

	content, diags := file.Body.Content(cardSchema)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.TypeRateCard, fmt.Sprintf("decode %s", path), diags)
	}

	var rates []types.TariffRate
	for _, block := range content.Blocks {
		tariffRates, err := l.decodeTariff(block)
		if err != nil {
			return nil, err
		}
		rates = append(rates, tariffRates...)
	}
	return rates, nil
}

func (l *Loader) decodeTariff(block *hcl.Block) ([]types.TariffRate, error) {
	tariffID := block.Labels[0]

	content, diags := block.Body.Content(tariffSchema)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.TypeRateCard, fmt.Sprintf("decode tariff %q", tariffID), diags)
	}

	var cardCurrency types.Currency
	if attr, ok := content.Attributes["currency"]; ok {
		s, err := stringValue(attr)
		if err != nil {
			return nil, err
		}
		cardCurrency = types.Currency(s)
	}

	var rates []types.TariffRate
	for _, rateBlock := range content.Blocks {
		rate, err := l.decodeRate(tariffID, cardCurrency, rateBlock)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func (l *Loader) decodeRate(tariffID string, cardCurrency types.Currency, block *hcl.Block) (types.TariffRate, error) {
	rate := types.TariffRate{
		TariffID: tariffID,
		ItemCode: block.Labels[0],
		Currency: cardCurrency,
	}

	content, diags := block.Body.Content(rateSchema)
	if diags.HasErrors() {
		return rate, errors.Wrap(errors.TypeRateCard,
			fmt.Sprintf("decode rate %q on tariff %q", rate.ItemCode, tariffID), diags)
	}

	for name, attr := range content.Attributes {
		switch name {
		case "method":
			s, err := stringValue(attr)
			if err != nil {
				return rate, err
			}
			method, err := types.ParseCalculationMethod(s)
			if err != nil {
				return rate, errors.Wrap(errors.TypeRateCard,
					fmt.Sprintf("rate %q on tariff %q", rate.ItemCode, tariffID), err)
			}
			rate.Method = method
		case "rate":
			d, err := decimalValue(attr)
			if err != nil {
				return rate, err
			}
			rate.Rate = d
		case "unit_type":
			s, err := stringValue(attr)
			if err != nil {
				return rate, err
			}
			rate.UnitType = s
		case "uom":
			s, err := stringValue(attr)
			if err != nil {
				return rate, err
			}
			rate.UOM = s
		case "currency":
			s, err := stringValue(attr)
			if err != nil {
				return rate, err
			}
			rate.Currency = types.Currency(s)
		case "minimum_quantity":
			d, err := decimalValue(attr)
			if err != nil {
				return rate, err
			}
			rate.MinimumQuantity = d
		case "minimum_charge":
			d, err := decimalValue(attr)
			if err != nil {
				return rate, err
			}
			rate.MinimumCharge = d
		case "maximum_charge":
			d, err := decimalValue(attr)
			if err != nil {
				return rate, err
			}
			rate.MaximumCharge = d
		case "base_amount":
			d, err := decimalValue(attr)
			if err != nil {
				return rate, err
			}
			rate.BaseAmount = d
		}
	}

	return rate, nil
}

func stringValue(attr *hcl.Attribute) (string, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return "", errors.Wrap(errors.TypeRateCard, fmt.Sprintf("attribute %q", attr.Name), diags)
	}
	if val.Type() != cty.String {
		return "", errors.Newf(errors.TypeRateCard, "attribute %q must be a string", attr.Name)
	}
	return val.AsString(), nil
}

func decimalValue(attr *hcl.Attribute) (decimal.Decimal, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return decimal.Zero, errors.Wrap(errors.TypeRateCard, fmt.Sprintf("attribute %q", attr.Name), diags)
	}
	if val.Type() != cty.Number {
		return decimal.Zero, errors.Newf(errors.TypeRateCard, "attribute %q must be a number", attr.Name)
	}

	d, err := decimal.NewFromString(val.AsBigFloat().Text('f', -1))
	if err != nil {
		return decimal.Zero, errors.Wrap(errors.TypeRateCard, fmt.Sprintf("attribute %q", attr.Name), err)
	}
	return d, nil
}
