// Package cmd - serve command
package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"freight-rating/api"
	"freight-rating/core/orchestrator"
	"freight-rating/core/tariff"
	"freight-rating/db"
	"freight-rating/internal/config"
)

var serveAddr string

// serveCmd runs the rating API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rating API server",
	Long: `Start the HTTP API. Tariffs come from the configured Postgres store
when a DSN is set, otherwise from the rate card directory.

Examples:
  freight-rating serve
  freight-rating serve --addr :9090 --tariff-dir ./tariffs`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVarP(&tariffDir, "tariff-dir", "t", "", "directory of *.tariff.hcl rate cards")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	var (
		orch     *orchestrator.Orchestrator
		memStore *tariff.MemoryStore
	)

	if cfg.Tariffs.PostgresDSN != "" {
		store, err := db.Open(cfg.Tariffs.PostgresDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.EnsureSchema(context.Background()); err != nil {
			return err
		}
		orch = orchestrator.New(tariff.NewService(store, nil), store, cfg.Rating.RoundingPlaces)
	} else {
		var err error
		orch, memStore, err = buildOrchestrator()
		if err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", api.NewServer("1.0.0", orch, memStore)))

	fmt.Printf("freight-rating listening on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}
