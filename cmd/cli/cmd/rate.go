// Package cmd - rate command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"freight-rating/adapters/ratecard"
	"freight-rating/api"
	"freight-rating/core/breaks"
	"freight-rating/core/orchestrator"
	"freight-rating/core/tariff"
	"freight-rating/internal/config"
)

var (
	tariffDir    string
	outputFormat string
)

// rateCmd represents the rate command
var rateCmd = &cobra.Command{
	Use:   "rate [lines.json]",
	Short: "Compute estimated revenue and cost for rate lines",
	Long: `Read a JSON file of rate lines, compute each line and print the
results. Lines use the same fields as the /rate API endpoint.

Examples:
  freight-rating rate lines.json
  freight-rating rate --tariff-dir ./tariffs --format json lines.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRate,
}

func init() {
	rateCmd.Flags().StringVarP(&tariffDir, "tariff-dir", "t", "", "directory of *.tariff.hcl rate cards")
	rateCmd.Flags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")
}

func runRate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read lines file: %w", err)
	}

	var reqs []api.RateLineRequest
	if err := json.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("parse lines file: %w", err)
	}

	orch, _, err := buildOrchestrator()
	if err != nil {
		return err
	}

	var results []*api.RateLineResponse
	for i := range reqs {
		in, err := api.ToLineInput(&reqs[i])
		if err != nil {
			fmt.Fprintf(os.Stderr, "line %s rejected: %v\n", reqs[i].LineID, err)
			continue
		}
		result, err := orch.ComputeLine(ctx, in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "line %s rejected: %v\n", reqs[i].LineID, err)
			continue
		}
		results = append(results, api.ToLineResponse(result))
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		fmt.Printf("%-12s revenue %s %s  cost %s %s  total %s\n",
			r.LineID, r.RevenueCurrency, r.EstimatedRevenue,
			r.CostCurrency, r.EstimatedCost, r.TotalAmount)
		fmt.Printf("             revenue: %s\n", r.RevenueCalcNotes)
		fmt.Printf("             cost:    %s\n", r.CostCalcNotes)
	}
	return nil
}

// buildOrchestrator wires an orchestrator from the CLI flags and the
// loaded configuration
func buildOrchestrator() (*orchestrator.Orchestrator, *tariff.MemoryStore, error) {
	cfg := config.Get()

	dir := cfg.Tariffs.RateCardDir
	if tariffDir != "" {
		dir = tariffDir
	}

	store := tariff.NewMemoryStore()
	rates, err := ratecard.NewLoader().LoadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load rate cards: %w", err)
	}
	store.Add(rates...)

	orch := orchestrator.New(tariff.NewService(store, nil), breaks.NewMemorySource(), cfg.Rating.RoundingPlaces)
	return orch, store, nil
}
