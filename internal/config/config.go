package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config controls a run. All knobs have documented defaults; a missing
// config file is not an error.
type Config struct {
	Corpus struct {
		Includes []string `yaml:"includes"`
		Ignores  []string `yaml:"ignores"`
	} `yaml:"corpus"`

	Dedup struct {
		// SimilarityThreshold is the word-overlap ratio above which two
		// same-category candidates merge. Range (0, 1].
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
		// ConflictPolicy is "most-restrictive" (default) or "first-seen".
		ConflictPolicy string `yaml:"conflict_policy"`
	} `yaml:"dedup"`

	Matchers struct {
		// Workers bounds the parallel matcher fan-out.
		Workers int `yaml:"workers"`
		// Timeout is the per-document matcher budget.
		Timeout time.Duration `yaml:"timeout"`
		// Mode is "explicit" or "comprehensive".
		Mode string `yaml:"mode"`
	} `yaml:"matchers"`

	// Variables feeds the placeholder substitution table.
	Variables map[string]string `yaml:"variables"`
}

// Default returns the documented default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Dedup.SimilarityThreshold = 0.9
	cfg.Dedup.ConflictPolicy = "most-restrictive"
	cfg.Matchers.Workers = 4
	cfg.Matchers.Timeout = 5 * time.Second
	cfg.Matchers.Mode = "explicit"
	return cfg
}

// Load reads the YAML config at path, overlaying defaults, then applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	// Load .env if present.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.Dedup.SimilarityThreshold <= 0 || cfg.Dedup.SimilarityThreshold > 1 {
		cfg.Dedup.SimilarityThreshold = 0.9
	}
	if cfg.Matchers.Workers <= 0 {
		cfg.Matchers.Workers = 4
	}
	if cfg.Matchers.Timeout <= 0 {
		cfg.Matchers.Timeout = 5 * time.Second
	}
	switch cfg.Matchers.Mode {
	case "explicit", "comprehensive":
	default:
		cfg.Matchers.Mode = "explicit"
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("NORMSCAN_MODE"); v != "" {
		cfg.Matchers.Mode = v
	}
	if v := os.Getenv("NORMSCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Matchers.Workers = n
		}
	}
	if v := os.Getenv("NORMSCAN_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Dedup.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("NORMSCAN_CONFLICT_POLICY"); v != "" {
		cfg.Dedup.ConflictPolicy = v
	}
}
