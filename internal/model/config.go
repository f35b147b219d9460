package model

import "runtime"

// Config is the complete pipeline configuration
type Config struct {
	Extraction  ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Fallback    FallbackConfig    `yaml:"fallback" mapstructure:"fallback"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// ExtractionConfig tunes the deterministic extractors
type ExtractionConfig struct {
	// RentalPriceThreshold: with no lexical cue, prices below it are rentals
	RentalPriceThreshold float64 `yaml:"rental_price_threshold" mapstructure:"rental_price_threshold"`
	DefaultCurrency      string  `yaml:"default_currency" mapstructure:"default_currency"`
}

// FallbackConfig configures the inference fallback
type FallbackConfig struct {
	Enabled        bool         `yaml:"enabled" mapstructure:"enabled"`
	CheckProviders bool         `yaml:"check_providers" mapstructure:"check_providers"` // Skip tiers that fail a startup availability check
	Fields         []string     `yaml:"fields" mapstructure:"fields"`                   // Fields eligible for inference
	Tiers          []TierConfig `yaml:"tiers" mapstructure:"tiers"`                     // Escalation order
}

// TierConfig describes one escalation tier
type TierConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"-" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig selects the fallback cache backend
type CacheConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // disk, sqlite, memory
	Dir     string `yaml:"dir" mapstructure:"dir"`         // disk backend directory
	Path    string `yaml:"path" mapstructure:"path"`       // sqlite database file
}

// MetricsConfig selects where fallback metrics are appended
type MetricsConfig struct {
	Sink string `yaml:"sink" mapstructure:"sink"` // csv, sqlite, none
	Path string `yaml:"path" mapstructure:"path"`
}

// ScoringConfig holds the tunable plausibility thresholds
type ScoringConfig struct {
	MinPrice                float64 `yaml:"min_price" mapstructure:"min_price"`
	MaxPrice                float64 `yaml:"max_price" mapstructure:"max_price"`
	MaxBathrooms            int     `yaml:"max_bathrooms" mapstructure:"max_bathrooms"`
	MaxBedrooms             int     `yaml:"max_bedrooms" mapstructure:"max_bedrooms"`
	MaxConstructionLotRatio float64 `yaml:"max_construction_lot_ratio" mapstructure:"max_construction_lot_ratio"`
	MinArea                 float64 `yaml:"min_area" mapstructure:"min_area"`
	MaxArea                 float64 `yaml:"max_area" mapstructure:"max_area"`
	SuspicionThreshold      int     `yaml:"suspicion_threshold" mapstructure:"suspicion_threshold"`
}

// ConcurrencyConfig bounds the worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls where partitions are written
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultFallbackFields are the fields inference may fill by default.
// Boolean amenities are never eligible.
var DefaultFallbackFields = []string{
	FieldBedrooms,
	FieldBathrooms,
	FieldLevels,
	FieldOperationType,
	FieldPropertyType,
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			RentalPriceThreshold: 200_000,
			DefaultCurrency:      CurrencyMXN,
		},
		Fallback: FallbackConfig{
			Enabled:        false, // Requires an API key
			CheckProviders: true,
			Fields:         append([]string(nil), DefaultFallbackFields...),
			Tiers: []TierConfig{
				{Provider: "openai", Model: "gpt-4o-mini", Timeout: 30, MaxTokens: 200, RequestsPerSecond: 5, Burst: 5},
				{Provider: "openai", Model: "gpt-4o", Timeout: 60, MaxTokens: 200, RequestsPerSecond: 2, Burst: 2},
			},
		},
		Cache: CacheConfig{
			Backend: "disk",
			Dir:     ".inmueble/cache",
			Path:    ".inmueble/inmueble.db",
		},
		Metrics: MetricsConfig{
			Sink: "csv",
			Path: ".inmueble/metrics.csv",
		},
		Scoring: ScoringConfig{
			MinPrice:                10_000,
			MaxPrice:                100_000_000,
			MaxBathrooms:            10,
			MaxBedrooms:             20,
			MaxConstructionLotRatio: 5,
			MinArea:                 10,
			MaxArea:                 200_000,
			SuspicionThreshold:      2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		Output: OutputConfig{
			Dir: "./inmueble-output",
		},
	}
}
