// Package main - Entry point for the freight rating server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"freight-rating/adapters/ratecard"
	"freight-rating/api"
	"freight-rating/core/breaks"
	"freight-rating/core/orchestrator"
	"freight-rating/core/tariff"
	"freight-rating/db"
	"freight-rating/internal/config"
	"freight-rating/internal/logging"
)

const version = "1.0.0"

func main() {
	addr := flag.String("addr", "", "Server address (overrides config)")
	cfgFile := flag.String("config", "", "Config file path")
	flag.Parse()

	cfg := config.Get()
	if *cfgFile != "" {
		loaded, err := config.Load(*cfgFile)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		config.Set(loaded)
		cfg = loaded
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		log.Fatalf("init logging: %v", err)
	}
	defer logging.Sync()

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}

	var (
		resolver    tariff.Resolver
		breakSource breaks.Source
		memStore    *tariff.MemoryStore
	)

	if cfg.Tariffs.PostgresDSN != "" {
		store, err := db.Open(cfg.Tariffs.PostgresDSN)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("ensure schema: %v", err)
		}
		resolver = store
		breakSource = store
	} else {
		memStore = tariff.NewMemoryStore()
		rates, err := ratecard.NewLoader().LoadDir(cfg.Tariffs.RateCardDir)
		if err != nil {
			log.Fatalf("load rate cards: %v", err)
		}
		memStore.Add(rates...)
		resolver = memStore
		breakSource = breaks.NewMemorySource()
	}

	orch := orchestrator.New(tariff.NewService(resolver, nil), breakSource, cfg.Rating.RoundingPlaces)
	apiServer := api.NewServer(version, orch, memStore)

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiServer))

	fmt.Printf("freight-rating server v%s listening on %s\n", version, listenAddr)
	if err := http.ListenAndServe(listenAddr, mux); err != nil {
		log.Fatal(err)
	}
}
