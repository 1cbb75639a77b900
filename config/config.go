package config

import (
	"fmt"
	"time"
)

// Config holds anchor extraction configuration.
type Config struct {
	Brands          BrandDirectory
	Brand           string // brand to extract for, or AllBrands
	UserAgent       string
	Timeout         time.Duration
	MaxBatchSize    int
	CacheSize       int
	PerBrandColumns bool
	OutputFile      string
	OutputFormat    string // csv, json, or dual
	MetricsAddr     string
	Verbose         bool
}

// DefaultConfig returns conservative defaults for interactive use.
func DefaultConfig() *Config {
	return &Config{
		Brands:          DefaultBrands(),
		Brand:           AllBrands,
		UserAgent:       "Mozilla/5.0",
		Timeout:         10 * time.Second,
		MaxBatchSize:    100,
		CacheSize:       128,
		PerBrandColumns: false,
		OutputFile:      "anchor_text_results.csv",
		OutputFormat:    "csv",
		MetricsAddr:     "",
		Verbose:         false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := c.Brands.Validate(); err != nil {
		return fmt.Errorf("brand directory: %w", err)
	}
	if c.Brand != AllBrands {
		if _, ok := c.Brands.DomainFor(c.Brand); !ok {
			return fmt.Errorf("unknown brand %q", c.Brand)
		}
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	return nil
}
