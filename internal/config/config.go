// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"freight-rating/core/types"
	"freight-rating/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Rating contains rating engine settings
	Rating RatingConfig `json:"rating"`

	// Tariffs contains tariff store settings
	Tariffs TariffConfig `json:"tariffs"`

	// Server contains API server settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// RatingConfig contains rating engine settings
type RatingConfig struct {
	// DefaultCurrency is assumed when a line declares none
	DefaultCurrency types.Currency `json:"default_currency"`

	// RoundingPlaces is the scale applied to final amounts only,
	// never mid-computation
	RoundingPlaces int32 `json:"rounding_places"`
}

// TariffConfig contains tariff store settings
type TariffConfig struct {
	// RateCardDir is a directory of *.tariff.hcl rate cards loaded
	// into the in-memory store at startup
	RateCardDir string `json:"rate_card_dir,omitempty"`

	// PostgresDSN, when set, backs tariffs and break points with
	// Postgres instead of the in-memory store
	PostgresDSN string `json:"postgres_dsn,omitempty"`
}

// ServerConfig contains API server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	cardDir := filepath.Join(homeDir, ".freight-rating", "tariffs")

	return &Config{
		Version: "1.0",
		Rating: RatingConfig{
			DefaultCurrency: types.CurrencyUSD,
			RoundingPlaces:  2,
		},
		Tariffs: TariffConfig{
			RateCardDir: cardDir,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
