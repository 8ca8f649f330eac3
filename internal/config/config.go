// Package config holds the tunable settings for the reconciliation
// pipeline and the environment plumbing that loads them.
package config

import (
	"fmt"
	"runtime"

	"github.com/customer-recon/internal/model"
)

// Config contains all tunable parameters for a reconciliation run.
type Config struct {
	// MinTokenSimilarity is the per-token similarity floor. Token pairs
	// scoring below this are treated as non-matches. Range 0.0-1.0.
	MinTokenSimilarity float64

	// MinMatchRatio is the fraction of tokens that must find a matching
	// partner for two names to be merged. Range 0.0-1.0.
	MinMatchRatio float64

	// StripGeoTerms controls whether recognized geographic terms are
	// removed during normalization so city or state suffixes do not keep
	// otherwise identical names apart.
	StripGeoTerms bool

	// IgnoreWords are corporate suffixes and glue words removed during
	// normalization (LLC, INC, AND, ...). Keys are uppercase.
	IgnoreWords map[string]bool

	// GeoTerms are geographic tokens removed when StripGeoTerms is set.
	// Keys are uppercase.
	GeoTerms map[string]bool

	// SourcePriority orders sources for representative tie-breaking,
	// highest priority first.
	SourcePriority []model.Source

	// Workers is the number of goroutines used for parallel
	// normalization and pair scoring.
	Workers int

	// MaxRowsPerFile caps the number of data rows written to a single
	// output CSV before the export is split into parts.
	MaxRowsPerFile int
}

// DefaultConfig returns the standard production configuration.
func DefaultConfig() *Config {
	return &Config{
		MinTokenSimilarity: 0.85,
		MinMatchRatio:      0.70,
		StripGeoTerms:      true,
		IgnoreWords:        WordSet(DefaultIgnoreWords()),
		GeoTerms:           WordSet(DefaultGeoTerms()),
		SourcePriority:     model.Sources(),
		Workers:            runtime.NumCPU(),
		MaxRowsPerFile:     10000,
	}
}

// Validate checks the configuration for values that would make a run
// meaningless. It is called by the engine before any work starts.
func (c *Config) Validate() error {
	if c.MinTokenSimilarity < 0.0 || c.MinTokenSimilarity > 1.0 {
		return fmt.Errorf("min token similarity %.3f out of range [0.0, 1.0]", c.MinTokenSimilarity)
	}
	if c.MinMatchRatio < 0.0 || c.MinMatchRatio > 1.0 {
		return fmt.Errorf("min match ratio %.3f out of range [0.0, 1.0]", c.MinMatchRatio)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxRowsPerFile < 1 {
		return fmt.Errorf("max rows per file must be at least 1, got %d", c.MaxRowsPerFile)
	}
	seen := make(map[model.Source]bool)
	for _, s := range c.SourcePriority {
		if !s.Valid() {
			return fmt.Errorf("source priority contains unknown source %q", s)
		}
		if seen[s] {
			return fmt.Errorf("source priority lists %q twice", s)
		}
		seen[s] = true
	}
	return nil
}

// SourceRank returns the priority rank of a source, lower is higher
// priority. Sources missing from SourcePriority rank below all listed
// ones.
func (c *Config) SourceRank(s model.Source) int {
	for i, p := range c.SourcePriority {
		if p == s {
			return i
		}
	}
	return len(c.SourcePriority)
}

// FromEnv builds a configuration from defaults overlaid with RECON_*
// environment variables. Word list files referenced by environment
// variables replace the built-in lists entirely.
func FromEnv() (*Config, error) {
	cfg := DefaultConfig()

	cfg.MinTokenSimilarity = GetEnvFloat("RECON_MIN_TOKEN_SIMILARITY", cfg.MinTokenSimilarity)
	cfg.MinMatchRatio = GetEnvFloat("RECON_MIN_MATCH_RATIO", cfg.MinMatchRatio)
	cfg.StripGeoTerms = GetEnvBool("RECON_STRIP_GEO_TERMS", cfg.StripGeoTerms)
	cfg.Workers = GetEnvInt("RECON_WORKERS", cfg.Workers)
	cfg.MaxRowsPerFile = GetEnvInt("RECON_MAX_ROWS_PER_FILE", cfg.MaxRowsPerFile)

	if path := GetEnv("RECON_IGNORE_WORDS_FILE", ""); path != "" {
		words, err := LoadWordList(path)
		if err != nil {
			return nil, fmt.Errorf("loading ignore words: %w", err)
		}
		cfg.IgnoreWords = WordSet(words)
	}
	if path := GetEnv("RECON_GEO_TERMS_FILE", ""); path != "" {
		words, err := LoadWordList(path)
		if err != nil {
			return nil, fmt.Errorf("loading geo terms: %w", err)
		}
		cfg.GeoTerms = WordSet(words)
	}

	return cfg, nil
}
