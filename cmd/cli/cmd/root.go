// Package cmd provides the CLI commands for freight-rating.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"freight-rating/internal/config"
	"freight-rating/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "freight-rating",
	Short: "Rate freight charge lines against tariffs and break tables",
	Long: `freight-rating computes estimated revenue and cost for freight
charge lines: tariff resolution, weight/quantity break tier selection,
min/max clamping and discount/surcharge/tax composition.

Examples:
  freight-rating rate lines.json
  freight-rating rate --tariff-dir ./tariffs lines.json
  freight-rating tariff list --tariff-dir ./tariffs`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.freight-rating.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Add subcommands
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(tariffCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("freight-rating version 1.0.0")
	},
}
