// Package cmd - tariff commands
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// tariffCmd groups tariff inspection commands
var tariffCmd = &cobra.Command{
	Use:   "tariff",
	Short: "Inspect tariff rate cards",
}

var tariffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded tariffs",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := buildOrchestrator()
		if err != nil {
			return err
		}

		ids := store.Tariffs()
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Printf("%s (%d rates)\n", id, len(store.Rates(id)))
		}
		return nil
	},
}

var tariffShowCmd = &cobra.Command{
	Use:   "show [tariff-id]",
	Short: "Show the rates of one tariff",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := buildOrchestrator()
		if err != nil {
			return err
		}

		rates := store.Rates(args[0])
		if len(rates) == 0 {
			return fmt.Errorf("tariff not found: %s", args[0])
		}

		for _, r := range rates {
			fmt.Printf("%-16s %-14s rate %s %s", r.ItemCode, r.Method, r.Rate, r.Currency)
			if r.MinimumCharge.IsPositive() {
				fmt.Printf("  min %s", r.MinimumCharge)
			}
			if r.MaximumCharge.IsPositive() {
				fmt.Printf("  max %s", r.MaximumCharge)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	tariffCmd.AddCommand(tariffListCmd)
	tariffCmd.AddCommand(tariffShowCmd)
	tariffCmd.PersistentFlags().StringVarP(&tariffDir, "tariff-dir", "t", "", "directory of *.tariff.hcl rate cards")
}
